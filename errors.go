package customerio

import "fmt"

// statusPageMessage is appended to errors where the API may be experiencing
// an outage, pointing the caller at the Customer.io status page.
const statusPageMessage = "check system status at https://status.customer.io"

// InvalidArgumentError reports a caller-supplied argument that fails a
// precondition (blank identifier, invalid timestamp value, oversized batch).
// It is always returned before any network call is made and retrying with
// the same input will never succeed.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return e.Reason
}

func invalidArgumentf(format string, args ...any) error {
	return &InvalidArgumentError{Reason: fmt.Sprintf(format, args...)}
}

// RetryableError reports a failure where the same request may succeed if
// attempted again later: transport-level errors (connection refused, DNS
// failure, timeouts) and HTTP 429/502/503/504 responses. Retries is the
// retry count the client was configured with; all of those attempts have
// already been exhausted by the time this error is returned.
type RetryableError struct {
	Retries    int
	StatusCode int // zero when the failure happened before a response was received
	Err        error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("failed to receive valid response after %d retries, %s: last caught error -- %T: %v",
		e.Retries, statusPageMessage, e.Err, e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// APIError reports a non-retryable failure. When the API answered with a
// non-2xx status outside the retryable set, StatusCode and Body carry the
// response; for unexpected failures (malformed response body and the like)
// Err carries the cause, StatusCode may be zero and Retries reports the
// retry count the client was configured with.
type APIError struct {
	StatusCode int
	Body       string
	Retries    int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected error after %d retries, %s: last caught error -- %T: %v",
		e.Retries, statusPageMessage, e.Err, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
