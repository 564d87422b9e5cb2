package customerio

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Option func(*Options)

// RequestTimeout holds the per-phase timeouts applied to every request.
// Connect bounds connection establishment and Read bounds the wait for
// response headers; Write and Pool contribute to the overall per-request
// deadline (Go's transport has no separate write or pool-acquire timeout).
type RequestTimeout struct {
	Connect time.Duration
	Read    time.Duration
	Write   time.Duration
	Pool    time.Duration
}

// RequestLimits controls the size of the shared connection pool.
type RequestLimits struct {
	MaxConnections          int
	MaxKeepaliveConnections int
	KeepaliveExpiry         time.Duration
}

// DefaultRequestTimeout and DefaultRequestLimits match the defaults used by
// the Customer.io clients in other languages.
var (
	DefaultRequestTimeout = RequestTimeout{
		Connect: 5 * time.Second,
		Read:    5 * time.Second,
		Write:   5 * time.Second,
		Pool:    5 * time.Second,
	}

	DefaultRequestLimits = RequestLimits{
		MaxConnections:          100,
		MaxKeepaliveConnections: 20,
		KeepaliveExpiry:         5 * time.Second,
	}
)

type Options struct {
	retryCount       int
	retryWaitTime    time.Duration
	retryMaxWaitTime time.Duration
	requestLogger    RequestLogger
	retryPolicy      func(*resty.Response, error) bool
	requestHeaders   map[string]string
	requestTimeout   RequestTimeout
	requestLimits    RequestLimits
	region           Region
	host             string
	port             int
	urlPrefix        string
}

func newClientOptions() *Options {
	return &Options{
		retryCount:       3,
		retryWaitTime:    500 * time.Millisecond,
		retryMaxWaitTime: 3 * time.Second,
		requestLogger:    &NoopLogger{},
		retryPolicy:      DefaultRetryPolicy,
		requestHeaders:   map[string]string{},
		requestTimeout:   DefaultRequestTimeout,
		requestLimits:    DefaultRequestLimits,
		region:           RegionUS,
		port:             443,
	}
}

func WithRetryCount(count int) Option {
	return func(o *Options) {
		if count >= 0 {
			o.retryCount = count
		}
	}
}

func WithRetryWaitTime(waitTime time.Duration) Option {
	return func(o *Options) {
		if waitTime >= 100*time.Millisecond {
			o.retryWaitTime = waitTime
		}
	}
}

func WithRetryMaxWaitTime(maxWaitTime time.Duration) Option {
	return func(o *Options) {
		if maxWaitTime >= 100*time.Millisecond {
			o.retryMaxWaitTime = maxWaitTime
		}
	}
}

func WithRequestLogger(logger RequestLogger) Option {
	return func(o *Options) {
		if logger != nil {
			o.requestLogger = logger
		}
	}
}

func WithRetryPolicy(policy func(*resty.Response, error) bool) Option {
	return func(o *Options) {
		if policy != nil {
			o.retryPolicy = policy
		}
	}
}

func WithRequestHeader(header, value string) Option {
	return func(o *Options) {
		header = strings.TrimSpace(header)

		if header == "" || strings.EqualFold(header, "Content-Type") || strings.EqualFold(header, "Authorization") {
			return
		}

		o.requestHeaders[header] = value
	}
}

func WithRequestTimeout(timeout RequestTimeout) Option {
	return func(o *Options) {
		if timeout.Connect <= 0 || timeout.Read <= 0 || timeout.Write <= 0 || timeout.Pool <= 0 {
			return
		}

		o.requestTimeout = timeout
	}
}

func WithRequestLimits(limits RequestLimits) Option {
	return func(o *Options) {
		if limits.MaxConnections <= 0 || limits.MaxKeepaliveConnections <= 0 || limits.KeepaliveExpiry <= 0 {
			return
		}

		o.requestLimits = limits
	}
}

func WithRegion(region Region) Option {
	return func(o *Options) {
		if region.valid() {
			o.region = region
		}
	}
}

// WithHost overrides the regional hostname. HTTPS is assumed; an explicit
// http:// prefix on the host is honoured so local endpoints can be
// targeted.
func WithHost(host string) Option {
	return func(o *Options) {
		if host != "" {
			o.host = host
		}
	}
}

func WithPort(port int) Option {
	return func(o *Options) {
		if port > 0 && port <= 65535 {
			o.port = port
		}
	}
}

func WithURLPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.urlPrefix = prefix
		}
	}
}
