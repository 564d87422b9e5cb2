// Package customerio provides HTTP clients for the Customer.io Track and
// App APIs: tracking events and entities, managing people, objects and
// devices, triggering transactional messages, and validating webhook
// signatures.
//
// The clients wrap [github.com/go-resty/resty/v2] with automatic retries,
// configurable connection pooling, and pluggable logging.
//
// # Basic Usage
//
//	c := customerio.NewTrackClient("site-id", "api-key",
//	    customerio.WithRegion(customerio.RegionEU),
//	    customerio.WithRetryCount(5),
//	)
//	defer c.Close()
//
//	if err := c.Identify(ctx, "42", map[string]any{"email": "x@example.com"}); err != nil {
//	    log.Fatal(err)
//	}
//
// The App API (transactional email, push and SMS) uses a separate client:
//
//	api := customerio.NewAPIClient("app-api-key")
//	defer api.Close()
//
//	req := customerio.NewSendEmailRequest()
//	req.TransactionalMessageID = "3"
//	req.To = "x@example.com"
//	req.Identifiers = customerio.PersonIdentifiers{ID: "42"}
//
//	if _, err := api.SendEmail(ctx, req); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// All configuration is supplied as [Option] functions passed to the
// constructors. Invalid values are silently ignored and the default is
// retained. The underlying connection pool is created lazily on the first
// request and recreated transparently after [TrackClient.Close]; many
// concurrent calls multiplex over the one shared pool.
//
// # Errors
//
// Every failure surfaces as one of three error types. An
// [InvalidArgumentError] is returned before any network call when a
// precondition fails. A [RetryableError] signals a transport failure or an
// HTTP 429/502/503/504 response; retrying the whole operation later is
// reasonable. An [APIError] carries any other non-2xx status together with
// the response body, or wraps an unexpected failure; retrying it will not
// help.
//
// # Retry Behaviour
//
// [DefaultRetryPolicy] retries on HTTP 429 (rate limit) and 502/503/504
// gateway errors, and on transient connection errors. Context cancellation,
// deadline exceeded, and DNS resolution errors are never retried. Supply a
// custom function via [WithRetryPolicy] to override this behaviour. The
// retry loop itself is delegated to resty, driven by [WithRetryCount].
//
// # Webhooks
//
// [ValidateSignature] verifies the X-CIO-Timestamp and X-CIO-Signature
// headers on reporting webhook requests against your webhook signing key.
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger] to
// integrate with your logging library; [NewHCLogAdapter] adapts a
// hashicorp/go-hclog logger directly. The default [NoopLogger] discards all
// log output. Ensure your implementation redacts credentials from request
// and response bodies before persisting logs.
package customerio
