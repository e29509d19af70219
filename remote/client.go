package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/guidelinely/calc"
	"github.com/jonwraymond/guidelinely/observe"
	"github.com/jonwraymond/guidelinely/resilience"
)

// DefaultBaseURL is the public guideline service.
const DefaultBaseURL = "https://guidelines.1681248.com/api/v1"

// DefaultTimeout bounds each call when Config.Timeout is not positive.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 32 << 20

// defaultFaultMessage is used when an error body carries no message.
const defaultFaultMessage = "API request failed"

// Errors returned by New.
var (
	ErrInvalidBaseURL = errors.New("remote: invalid base URL")
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	// Default: DefaultBaseURL
	BaseURL string

	// APIKey is sent in the X-API-KEY header when non-empty.
	APIKey string

	// Timeout bounds each call, retries included.
	// Default: 30 seconds
	Timeout time.Duration

	// Retries enables transport-level retries. Ignored when HTTPClient is set.
	// Default: 0
	Retries int

	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// HTTPClient replaces the default client. Its transport is wrapped with
	// APIKeyTransport.
	HTTPClient *http.Client

	// Logger receives request diagnostics.
	Logger observe.Logger
}

// Client talks to the guideline service over HTTP.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: failures are *calc.RemoteFault, *calc.TimeoutFault or
//     *calc.ConnectionFault; caller cancellation is returned wrapped.
type Client struct {
	base    string
	http    *http.Client
	timeout *resilience.Timeout
	logger  observe.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}

	var hc *http.Client
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		copied.Transport = &APIKeyTransport{Base: cfg.HTTPClient.Transport, APIKey: cfg.APIKey}
		hc = &copied
	} else {
		hc = NewHTTPClient(HTTPConfig{
			APIKey:       cfg.APIKey,
			Retries:      cfg.Retries,
			RetryWaitMin: cfg.RetryWaitMin,
			RetryWaitMax: cfg.RetryWaitMax,
			Logger:       cfg.Logger,
		})
	}

	return &Client{
		base:    base,
		http:    hc,
		timeout: resilience.NewTimeout(resilience.TimeoutConfig{Timeout: cfg.Timeout}),
		logger:  cfg.Logger,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.base }

// Invoke posts req to its endpoint and returns the raw response payload.
func (c *Client) Invoke(ctx context.Context, req *calc.Request) ([]byte, error) {
	if req == nil {
		return nil, &calc.ValidationError{Field: "request", Reason: "must not be nil"}
	}
	body, err := encodeBody(req)
	if err != nil {
		return nil, fmt.Errorf("remote: encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/"+string(req.Endpoint), nil, body)
}

// do performs one call within the client timeout. The response body is
// returned for 2xx statuses only.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	err := c.timeout.Execute(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return err
		}
		httpReq.Header.Set("Accept", "application/json")
		if body != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}
		c.logger.Debug(ctx, "remote response",
			observe.Field{Key: "method", Value: method},
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "status", Value: resp.StatusCode},
		)
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &calc.RemoteFault{StatusCode: resp.StatusCode, Message: faultMessage(data)}
		}
		payload = data
		return nil
	})
	if err != nil {
		return nil, c.classify(ctx, path, err)
	}
	return payload, nil
}

// classify maps a failed call onto the calc fault taxonomy.
func (c *Client) classify(ctx context.Context, path string, err error) error {
	var fault *calc.RemoteFault
	if errors.As(err, &fault) {
		return fault
	}

	var netErr net.Error
	switch {
	case errors.Is(err, resilience.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		c.logger.Warn(ctx, "remote call timed out",
			observe.Field{Key: "path", Value: path},
			observe.Field{Key: "error", Value: err},
		)
		return &calc.TimeoutFault{Err: err}
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("remote: %s: %w", path, err)
	default:
		return &calc.ConnectionFault{Err: err}
	}
}

// faultMessage extracts the service's explanation from an error body:
// "detail" first, then "message". Non-string values are returned as JSON.
func faultMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return defaultFaultMessage
	}
	for _, key := range []string{"detail", "message"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				return s
			}
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, trimmed); err == nil {
			return compact.String()
		}
		return string(trimmed)
	}
	return defaultFaultMessage
}

// Ensure Client implements calc.Adapter
var _ calc.Adapter = (*Client)(nil)
