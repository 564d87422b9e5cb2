package customerio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Version is the library version reported in the User-Agent header.
const Version = "1.0.0"

type basicAuth struct {
	username string
	password string
}

// Response is the outcome of a successful API call. JSON holds the decoded
// body when the response declared a JSON content type; it is an empty map
// for empty bodies (e.g. 204) and nil for non-JSON bodies.
type Response struct {
	StatusCode int
	Body       []byte
	JSON       map[string]any
}

// Text returns the raw response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// baseClient owns the pooled HTTP transport shared by the domain clients and
// implements the send pipeline: header merging, payload sanitization, retry
// configuration and terminal error classification.
type baseClient struct {
	options *Options

	mu     sync.Mutex
	http   *resty.Client
	closed bool
}

func newBaseClient(options *Options) *baseClient {
	return &baseClient{options: options}
}

// httpClient returns the shared pooled client, creating it on first use and
// transparently recreating it if the previous handle was closed. At most one
// handle is live at a time; concurrent first use cannot create two pools.
func (c *baseClient) httpClient() *resty.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.http == nil || c.closed {
		c.http = c.newPooledClient()
		c.closed = false
	}

	return c.http
}

func (c *baseClient) newPooledClient() *resty.Client {
	timeout := c.options.requestTimeout
	limits := c.options.requestLimits

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout.Connect,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxConnsPerHost:       limits.MaxConnections,
		MaxIdleConns:          limits.MaxKeepaliveConnections,
		MaxIdleConnsPerHost:   limits.MaxKeepaliveConnections,
		IdleConnTimeout:       limits.KeepaliveExpiry,
		ResponseHeaderTimeout: timeout.Read,
		TLSHandshakeTimeout:   timeout.Connect,
	}

	return resty.NewWithClient(&http.Client{Transport: transport}).
		SetTimeout(timeout.Connect + timeout.Read + timeout.Write + timeout.Pool).
		SetRetryCount(c.options.retryCount).
		SetRetryWaitTime(c.options.retryWaitTime).
		SetRetryMaxWaitTime(c.options.retryMaxWaitTime).
		AddRetryCondition(c.options.retryPolicy)
}

// Close releases the pooled connections. The client remains usable: the next
// request transparently creates a fresh pool. In-flight requests keep their
// connection; cancelling or closing never corrupts the shared transport.
func (c *baseClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.http != nil {
		c.http.GetClient().CloseIdleConnections()
	}

	c.closed = true
}

// prepareHeaders builds the default header set for a single request. The
// request ID is fresh per call so retries of one logical request share it.
func (c *baseClient) prepareHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"X-Request-Id": uuid.NewString(),
		"X-Timestamp":  time.Now().UTC().Format(time.RFC3339),
		"User-Agent":   "customerio-go-client/" + Version,
	}
}

// sendRequest executes a single logical API call. The payload, when present,
// is sanitized before serialization. Caller-supplied headers win over the
// defaults. Retry looping is delegated to the underlying transport, driven
// by the configured retry count; sendRequest classifies the terminal
// outcome into Response, RetryableError or APIError.
func (c *baseClient) sendRequest(ctx context.Context, method, targetURL string, payload map[string]any, headers map[string]string, auth *basicAuth) (*Response, error) {
	merged := c.prepareHeaders()
	for k, v := range c.options.requestHeaders {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}

	req := c.httpClient().R().
		SetContext(ctx).
		SetHeaders(merged)

	if payload != nil {
		req.SetBody(sanitize(payload))
	}

	if auth != nil {
		req.SetBasicAuth(auth.username, auth.password)
	}

	c.options.requestLogger.Debugf("requesting method=%s url=%s", method, targetURL)

	resp, err := req.Execute(method, targetURL)
	if err != nil {
		return nil, c.classifyError(err)
	}

	c.options.requestLogger.Debugf("response status=%d elapsed=%s", resp.StatusCode(), resp.Time())

	return c.classifyResponse(resp)
}

// classifyError partitions request errors: anything that happened at the
// transport level (connection refused, DNS failure, read/write errors,
// timeouts before a response arrived) is retryable; everything else is an
// unexpected fatal failure.
func (c *baseClient) classifyError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		c.options.requestLogger.Warnf("transport failure: %v", err)
		return &RetryableError{Retries: c.options.retryCount, Err: err}
	}

	c.options.requestLogger.Errorf("unexpected request failure: %v", err)
	return &APIError{Retries: c.options.retryCount, Err: err}
}

func (c *baseClient) classifyResponse(resp *resty.Response) (*Response, error) {
	code := resp.StatusCode()
	body := resp.Body()

	if resp.IsSuccess() {
		out := &Response{StatusCode: code, Body: body}

		if len(body) == 0 {
			out.JSON = map[string]any{}
			return out, nil
		}

		if strings.Contains(resp.Header().Get("Content-Type"), "json") {
			if err := json.Unmarshal(body, &out.JSON); err != nil {
				c.options.requestLogger.Errorf("malformed JSON response: %v", err)
				return nil, &APIError{Retries: c.options.retryCount, Err: err}
			}
		}

		return out, nil
	}

	if retryableStatus(code) {
		c.options.requestLogger.Warnf("retryable status=%d body=%s", code, body)
		return nil, &RetryableError{
			Retries:    c.options.retryCount,
			StatusCode: code,
			Err:        fmt.Errorf("HTTP %d: %s", code, body),
		}
	}

	c.options.requestLogger.Errorf("request failed status=%d body=%s", code, body)
	return nil, &APIError{StatusCode: code, Body: string(body)}
}
