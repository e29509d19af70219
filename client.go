package guidelinely

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonwraymond/guidelinely/cache"
	"github.com/jonwraymond/guidelinely/calc"
	"github.com/jonwraymond/guidelinely/config"
	"github.com/jonwraymond/guidelinely/health"
	"github.com/jonwraymond/guidelinely/observe"
	"github.com/jonwraymond/guidelinely/remote"
	"github.com/jonwraymond/guidelinely/resilience"
)

// Names of the checks reported by Client.Health.
const (
	CheckAPI   = "api"
	CheckReady = "ready"
	CheckCache = "cache"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("guidelinely: client closed")

// Client is the composition root: one remote adapter, one cache store and
// one calculator, plus health checks and optional telemetry.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: see calc for the calculation taxonomy; metadata calls return
//     the same remote faults, uncached.
//   - Lifecycle: Close releases the cache store (when the client opened
//     it) and flushes telemetry.
type Client struct {
	cfg        config.Config
	remote     *remote.Client
	calculator *calc.Calculator
	store      cache.Cache
	ownsStore  bool
	health     *health.Aggregator
	observer   observe.Observer
	logger     observe.Logger

	closeOnce sync.Once
	closeErr  error
	mu        sync.RWMutex
	closed    bool
}

type options struct {
	store      cache.Cache
	httpClient *http.Client
	retry      *resilience.Retry
	warn       calc.WarningHandler
	logger     observe.Logger
	coalesce   bool
}

// Option configures a Client.
type Option func(*options)

// WithCache uses store instead of opening the disk cache in cfg.CacheDir.
// The caller keeps ownership of store.
func WithCache(store cache.Cache) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithHTTPClient sends requests through hc. Credentials are still added.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithRetryPolicy retries calculation calls that fail with a transient
// fault. Retries happen below the cache, so a retried call is still
// written once.
func WithRetryPolicy(r *resilience.Retry) Option {
	return func(o *options) {
		o.retry = r
	}
}

// WithWarningHandler receives cache storage faults.
func WithWarningHandler(h calc.WarningHandler) Option {
	return func(o *options) {
		o.warn = h
	}
}

// WithLogger replaces the logger implied by cfg.LogLevel.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithCoalescing collapses concurrent identical calculations in this
// process.
func WithCoalescing() Option {
	return func(o *options) {
		o.coalesce = true
	}
}

// New builds a Client from cfg.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{cfg: cfg}

	var (
		tracer  observe.Tracer
		metrics observe.Metrics
	)
	c.logger = observe.NopLogger()
	if cfg.Telemetry() {
		obs, err := observe.NewObserver(ctx, cfg.Observe())
		if err != nil {
			return nil, fmt.Errorf("guidelinely: telemetry: %w", err)
		}
		c.observer = obs
		c.logger = obs.Logger()
		tracer = observe.NewTracer(obs.Tracer())
		if metrics, err = observe.NewMetrics(obs.Meter()); err != nil {
			c.shutdown(ctx)
			return nil, fmt.Errorf("guidelinely: telemetry: %w", err)
		}
	}
	if o.logger != nil {
		c.logger = o.logger
	}

	rc, err := remote.New(remote.Config{
		BaseURL:    cfg.APIBase,
		APIKey:     cfg.APIKey,
		Timeout:    cfg.Timeout,
		Retries:    cfg.Retries,
		HTTPClient: o.httpClient,
		Logger:     c.logger,
	})
	if err != nil {
		c.shutdown(ctx)
		return nil, err
	}
	c.remote = rc

	var adapter calc.Adapter = rc
	if o.retry != nil {
		adapter = remote.Guard(rc, resilience.NewExecutor(resilience.WithRetry(o.retry)))
	}

	if o.store != nil {
		c.store = o.store
	} else {
		disk, err := cache.OpenDisk(ctx, cache.DiskConfig{Dir: cfg.CacheDir})
		if err != nil {
			c.shutdown(ctx)
			return nil, err
		}
		c.store = disk
		c.ownsStore = true
	}

	calcOpts := []calc.Option{
		calc.WithSinglePolicy(cache.Policy{DefaultTTL: cfg.CacheTTL}),
		calc.WithBatchPolicy(cache.Policy{DefaultTTL: cfg.BatchCacheTTL}),
		calc.WithInstrumentation(observe.NewMiddleware(tracer, metrics, c.logger)),
		calc.WithLogger(c.logger),
	}
	if o.warn != nil {
		calcOpts = append(calcOpts, calc.WithWarningHandler(o.warn))
	}
	if o.coalesce {
		calcOpts = append(calcOpts, calc.WithCoalescing())
	}
	c.calculator, err = calc.NewCalculator(adapter, c.store, calcOpts...)
	if err != nil {
		c.shutdown(ctx)
		return nil, err
	}

	c.health = health.NewAggregator(health.AggregatorConfig{Timeout: cfg.Timeout})
	c.health.Register(health.NewProbeChecker(CheckAPI, rc.Health))
	c.health.Register(health.NewProbeChecker(CheckReady, rc.Ready))
	if p, ok := c.store.(health.Pinger); ok {
		c.health.Register(health.NewPingChecker(CheckCache, p))
	}

	c.logger.Debug(ctx, "client ready",
		observe.Field{Key: "api_base", Value: cfg.APIBase},
		observe.Field{Key: "cache_dir", Value: cfg.CacheDir},
		observe.Field{Key: "authenticated", Value: cfg.APIKey != ""},
	)
	return c, nil
}

// Config returns the settings the client was built with.
func (c *Client) Config() config.Config { return c.cfg }

// Calculate computes guidelines for one parameter in one medium.
func (c *Client) Calculate(ctx context.Context, parameter, media string, in calc.ContextInput, targetUnit string) (*calc.Result, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.calculator.Calculate(ctx, parameter, media, in, targetUnit)
}

// CalculateBatch computes guidelines for up to calc.MaxBatchParameters
// parameters in one call.
func (c *Client) CalculateBatch(ctx context.Context, parameters []calc.ParameterInput, media string, in calc.ContextInput) (*calc.Result, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.calculator.CalculateBatch(ctx, parameters, media, in)
}

// ListParameters returns every parameter name the service knows.
func (c *Client) ListParameters(ctx context.Context) ([]string, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.remote.ListParameters(ctx)
}

// SearchParameters returns parameter names containing q.
func (c *Client) SearchParameters(ctx context.Context, q string, filter remote.SearchFilter) ([]string, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.remote.SearchParameters(ctx, q, filter)
}

// ListMedia maps media identifiers to display names.
func (c *Client) ListMedia(ctx context.Context) (map[string]string, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.remote.ListMedia(ctx)
}

// ListSources returns the issuing authorities and their documents.
func (c *Client) ListSources(ctx context.Context) ([]remote.Source, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.remote.ListSources(ctx)
}

// Stats returns database totals.
func (c *Client) Stats(ctx context.Context) (*remote.Stats, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.remote.Stats(ctx)
}

// Health checks the service, its database and the cache store.
func (c *Client) Health(ctx context.Context) (health.Report, error) {
	if err := c.live(); err != nil {
		return health.Report{}, err
	}
	return c.health.CheckAll(ctx), nil
}

// ClearCache removes every cached calculation.
func (c *Client) ClearCache(ctx context.Context) error {
	if err := c.live(); err != nil {
		return err
	}
	return c.calculator.ClearCache(ctx)
}

// SweepCache deletes expired entries from a store that implements
// cache.Sweeper and reports how many were removed. Other stores expire
// lazily and report 0.
func (c *Client) SweepCache(ctx context.Context) (int64, error) {
	if err := c.live(); err != nil {
		return 0, err
	}
	s, ok := c.store.(cache.Sweeper)
	if !ok {
		return 0, nil
	}
	return s.Sweep(ctx)
}

// Close releases the cache store if the client opened it and flushes
// telemetry. Later calls return ErrClosed.
func (c *Client) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		var errs []error
		if c.ownsStore {
			if disk, ok := c.store.(*cache.DiskCache); ok {
				if err := disk.Close(); err != nil {
					errs = append(errs, fmt.Errorf("close cache: %w", err))
				}
			}
		}
		if c.observer != nil {
			if err := c.observer.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

func (c *Client) live() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Client) shutdown(ctx context.Context) {
	if c.observer != nil {
		_ = c.observer.Shutdown(ctx)
	}
}
