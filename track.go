package customerio

import (
	"context"
	"fmt"
	"strings"
)

// IdentifierType names the kind of value used to reference a person in
// merge operations: "id", "email" or "cio_id".
type IdentifierType string

const (
	IdentifierID    IdentifierType = "id"
	IdentifierEmail IdentifierType = "email"
	IdentifierCIOID IdentifierType = "cio_id"
)

func (t IdentifierType) valid() bool {
	switch t {
	case IdentifierID, IdentifierEmail, IdentifierCIOID:
		return true
	}
	return false
}

const trackAPIPrefix = "/api/v1"
const trackAPIV2Prefix = "/api/v2"

// TrackClient talks to the Customer.io Track API (v1) using a site ID and
// API key. Every request carries HTTP basic auth with those credentials.
//
// The v2 Track API is reached through [TrackClient.V2]; it shares this
// client's connection pool, credentials and retry configuration.
type TrackClient struct {
	*baseClient

	siteID  string
	apiKey  string
	baseURL string
	host    string
	port    int
}

// NewTrackClient creates a Track API client. The regional track hostname is
// used unless overridden with [WithHost]; the URL prefix defaults to
// "/api/v1" and can be overridden with [WithURLPrefix].
func NewTrackClient(siteID, apiKey string, opts ...Option) *TrackClient {
	options := newClientOptions()
	for _, opt := range opts {
		opt(options)
	}

	host := options.host
	if host == "" {
		host = options.region.TrackHost
	}

	prefix := options.urlPrefix
	if prefix == "" {
		prefix = trackAPIPrefix
	}

	return &TrackClient{
		baseClient: newBaseClient(options),
		siteID:     siteID,
		apiKey:     apiKey,
		baseURL:    setupBaseURL(host, options.port, prefix),
		host:       host,
		port:       options.port,
	}
}

// V2 returns a client for the Track API v2 entity and batch endpoints,
// sharing this client's pool, credentials and retry configuration.
func (c *TrackClient) V2() *TrackV2 {
	return &TrackV2{client: c}
}

// setupBaseURL assembles the base URL, dropping the port when it is the
// default 443. HTTPS is assumed; an explicit http:// prefix on the host is
// honoured so local endpoints can be targeted.
func setupBaseURL(host string, port int, prefix string) string {
	scheme := "https"
	if i := strings.Index(host, "://"); i >= 0 {
		if host[:i] == "http" {
			scheme = "http"
		}
		host = host[i+3:]
	}
	host = strings.Trim(host, "/")
	prefix = strings.Trim(prefix, "/")

	if port == 443 {
		return fmt.Sprintf("%s://%s/%s", scheme, host, prefix)
	}
	return fmt.Sprintf("%s://%s:%d/%s", scheme, host, port, prefix)
}

func (c *TrackClient) send(ctx context.Context, method, url string, payload map[string]any) error {
	_, err := c.sendRequest(ctx, method, url, payload, nil, &basicAuth{username: c.siteID, password: c.apiKey})
	return err
}

// Identify creates or updates a single customer profile by its unique id
// (an id, email address or cio_id depending on workspace settings), and
// optionally sets attributes on it.
func (c *TrackClient) Identify(ctx context.Context, identifier string, attrs map[string]any) error {
	if identifier == "" {
		return invalidArgumentf("identifier cannot be blank in Identify")
	}

	return c.send(ctx, "PUT", pathJoin(c.baseURL, "customers", identifier), sanitize(attrs))
}

// Track records an event for the given customer. name is how the event is
// referenced in campaigns and segments.
func (c *TrackClient) Track(ctx context.Context, customerID, name string, data map[string]any) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in Track")
	}

	payload := map[string]any{"name": name, "data": sanitize(data)}
	return c.send(ctx, "POST", pathJoin(c.baseURL, "customers", customerID, "events"), payload)
}

// TrackAnonymous records an event for a person you haven't identified yet.
func (c *TrackClient) TrackAnonymous(ctx context.Context, anonymousID, name string, data map[string]any) error {
	payload := map[string]any{"name": name, "data": sanitize(data)}
	if anonymousID != "" {
		payload["anonymous_id"] = anonymousID
	}

	return c.send(ctx, "POST", pathJoin(c.baseURL, "events"), payload)
}

// Pageview records a page view event for the given customer.
func (c *TrackClient) Pageview(ctx context.Context, customerID, page string, data map[string]any) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in Pageview")
	}

	payload := map[string]any{"type": "page", "name": page, "data": sanitize(data)}
	return c.send(ctx, "POST", pathJoin(c.baseURL, "customers", customerID, "events"), payload)
}

// Backfill records an event in the past. timestamp accepts a time.Time or
// an integer of Unix seconds; anything else fails with an invalid-argument
// error before any network call.
func (c *TrackClient) Backfill(ctx context.Context, customerID, name string, timestamp any, data map[string]any) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in Backfill")
	}

	ts, err := unixTimestamp(timestamp)
	if err != nil {
		return err
	}

	payload := map[string]any{"name": name, "data": sanitize(data), "timestamp": ts}
	return c.send(ctx, "POST", pathJoin(c.baseURL, "customers", customerID, "events"), payload)
}

// Delete removes a customer profile and all of its information.
func (c *TrackClient) Delete(ctx context.Context, customerID string) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in Delete")
	}

	return c.send(ctx, "DELETE", pathJoin(c.baseURL, "customers", customerID), nil)
}

// AddDevice adds or updates a device on a customer profile. platform is
// "ios" or "android".
func (c *TrackClient) AddDevice(ctx context.Context, customerID, deviceID, platform string, attrs map[string]any) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in AddDevice")
	}
	if deviceID == "" {
		return invalidArgumentf("device_id cannot be blank in AddDevice")
	}
	if platform == "" {
		return invalidArgumentf("platform cannot be blank in AddDevice")
	}

	device := map[string]any{"id": deviceID, "platform": platform}
	for k, v := range attrs {
		device[k] = v
	}

	payload := map[string]any{"device": device}
	return c.send(ctx, "PUT", pathJoin(c.baseURL, "customers", customerID, "devices"), payload)
}

// DeleteDevice removes a device from a customer profile.
func (c *TrackClient) DeleteDevice(ctx context.Context, customerID, deviceID string) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in DeleteDevice")
	}
	if deviceID == "" {
		return invalidArgumentf("device_id cannot be blank in DeleteDevice")
	}

	return c.send(ctx, "DELETE", pathJoin(c.baseURL, "customers", customerID, "devices", deviceID), nil)
}

// Suppress deletes a customer profile and prevents the identifier from
// being re-added to the workspace.
func (c *TrackClient) Suppress(ctx context.Context, customerID string) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in Suppress")
	}

	return c.send(ctx, "POST", pathJoin(c.baseURL, "customers", customerID, "suppress"), nil)
}

// Unsuppress makes a previously suppressed identifier available again. It
// does not recreate the suppressed profile.
func (c *TrackClient) Unsuppress(ctx context.Context, customerID string) error {
	if customerID == "" {
		return invalidArgumentf("customer_id cannot be blank in Unsuppress")
	}

	return c.send(ctx, "POST", pathJoin(c.baseURL, "customers", customerID, "unsuppress"), nil)
}

// AddToSegment adds people to a manual segment. IDs may be strings or
// integers; integers are converted to their string form before sending.
func (c *TrackClient) AddToSegment(ctx context.Context, segmentID string, customerIDs []any) error {
	if segmentID == "" {
		return invalidArgumentf("segment_id cannot be blank in AddToSegment")
	}
	if len(customerIDs) == 0 {
		return invalidArgumentf("customer_ids cannot be empty in AddToSegment")
	}

	ids, err := stringifyIDs(customerIDs)
	if err != nil {
		return err
	}

	return c.send(ctx, "POST", pathJoin(c.baseURL, "segments", segmentID, "add_customers"), map[string]any{"ids": ids})
}

// RemoveFromSegment removes people from a manual segment.
func (c *TrackClient) RemoveFromSegment(ctx context.Context, segmentID string, customerIDs []any) error {
	if segmentID == "" {
		return invalidArgumentf("segment_id cannot be blank in RemoveFromSegment")
	}
	if len(customerIDs) == 0 {
		return invalidArgumentf("customer_ids cannot be empty in RemoveFromSegment")
	}

	ids, err := stringifyIDs(customerIDs)
	if err != nil {
		return err
	}

	return c.send(ctx, "POST", pathJoin(c.baseURL, "segments", segmentID, "remove_customers"), map[string]any{"ids": ids})
}

// MergeCustomers merges two customer profiles. The primary profile remains
// after the merge and the secondary is deleted; this is not reversible.
func (c *TrackClient) MergeCustomers(ctx context.Context, primaryType IdentifierType, primaryID string, secondaryType IdentifierType, secondaryID string) error {
	if !primaryType.valid() {
		return invalidArgumentf("invalid primary id type %q", primaryType)
	}
	if !secondaryType.valid() {
		return invalidArgumentf("invalid secondary id type %q", secondaryType)
	}
	if primaryID == "" {
		return invalidArgumentf("primary customer_id cannot be blank")
	}
	if secondaryID == "" {
		return invalidArgumentf("secondary customer_id cannot be blank")
	}

	payload := map[string]any{
		"primary":   map[string]any{string(primaryType): primaryID},
		"secondary": map[string]any{string(secondaryType): secondaryID},
	}
	return c.send(ctx, "POST", pathJoin(c.baseURL, "merge_customers"), payload)
}
