package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jonwraymond/guidelinely/observe"
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

// UserAgent identifies this client to the service.
const UserAgent = "guidelinely-go/" + Version

// APIKeyHeader carries the credential.
const APIKeyHeader = "X-API-KEY"

// APIKeyTransport sets the User-Agent and, when APIKey is non-empty, the
// X-API-KEY header on every outgoing request.
type APIKeyTransport struct {
	Base      http.RoundTripper
	APIKey    string
	UserAgent string
}

// RoundTrip implements http.RoundTripper. The caller's request is not
// modified.
func (t *APIKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	ua := t.UserAgent
	if ua == "" {
		ua = UserAgent
	}
	out.Header.Set("User-Agent", ua)
	if t.APIKey != "" {
		out.Header.Set(APIKeyHeader, t.APIKey)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(out)
}

// HTTPConfig configures NewHTTPClient.
type HTTPConfig struct {
	// APIKey is sent in the X-API-KEY header when non-empty.
	APIKey string

	// Retries is the number of transport-level retries on connection errors,
	// 429 and 5xx (except 501). Default: 0
	Retries int

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	// Default: 1s and 10s
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// Transport is the innermost transport.
	// Default: a pooled transport instrumented with OpenTelemetry
	Transport http.RoundTripper

	// Logger receives retry diagnostics.
	Logger observe.Logger
}

// NewHTTPClient builds the client used by Client: credentials outside,
// retryablehttp in the middle, an instrumented pooled transport inside.
// After the last retry the final response is returned as is, so status
// codes still reach the caller.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = time.Second
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 10 * time.Second
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Transport == nil {
		cfg.Transport = otelhttp.NewTransport(cleanhttp.DefaultPooledTransport())
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{Transport: cfg.Transport}
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryablehttp.LeveledLogger(leveledLogger{inner: cfg.Logger})

	return &http.Client{
		Transport: &APIKeyTransport{
			Base:   &retryablehttp.RoundTripper{Client: retryClient},
			APIKey: cfg.APIKey,
		},
	}
}

// leveledLogger adapts observe.Logger to retryablehttp. Request errors are
// logged at warn because a retry usually follows.
type leveledLogger struct {
	inner observe.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(context.Background(), msg, fields(keysAndValues)...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(context.Background(), msg, fields(keysAndValues)...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.inner.Info(context.Background(), msg, fields(keysAndValues)...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(context.Background(), msg, fields(keysAndValues)...)
}

func fields(kv []any) []observe.Field {
	out := make([]observe.Field, 0, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			out = append(out, observe.Field{Key: "extra", Value: key})
			break
		}
		value := kv[i+1]
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		out = append(out, observe.Field{Key: key, Value: value})
	}
	return out
}
