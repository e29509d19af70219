package calc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/guidelinely/cache"
	"github.com/jonwraymond/guidelinely/observe"
)

// Adapter performs one remote calculation and returns the raw response
// payload. Failures are reported as *RemoteFault, *TimeoutFault or
// *ConnectionFault.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation and deadlines.
// - Errors: must not retry on the caller's behalf unless configured to.
type Adapter interface {
	Invoke(ctx context.Context, req *Request) ([]byte, error)
}

// AdapterFunc adapts a function to the Adapter interface.
type AdapterFunc func(ctx context.Context, req *Request) ([]byte, error)

// Invoke calls f.
func (f AdapterFunc) Invoke(ctx context.Context, req *Request) ([]byte, error) {
	return f(ctx, req)
}

// WarningHandler receives non-fatal faults such as cache storage errors.
type WarningHandler func(ctx context.Context, err error)

// Calculator runs calculation requests through validation, the cache and the
// remote adapter.
//
// Contract:
//   - Ordering: validate, canonicalize, cache lookup, remote call, cache
//     write, assemble. Validation failures reach neither the cache nor the
//     adapter.
//   - Errors: remote faults are returned unchanged and never cached. Cache
//     storage faults are reported to the WarningHandler and never fail a call.
//   - Concurrency: safe for concurrent use.
type Calculator struct {
	adapter Adapter
	store   cache.Cache

	singlePolicy cache.Policy
	batchPolicy  cache.Policy
	single       *cache.Middleware
	batch        *cache.Middleware

	obs      *observe.Middleware
	logger   observe.Logger
	warn     WarningHandler
	coalesce bool
	group    singleflight.Group
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithSinglePolicy sets the cache policy for single-parameter calls.
// Default: cache.SinglePolicy()
func WithSinglePolicy(p cache.Policy) Option {
	return func(c *Calculator) {
		c.singlePolicy = p
	}
}

// WithBatchPolicy sets the cache policy for batch calls.
// Default: cache.BatchPolicy()
func WithBatchPolicy(p cache.Policy) Option {
	return func(c *Calculator) {
		c.batchPolicy = p
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l observe.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

// WithInstrumentation wraps every call with tracing, metrics and logging.
func WithInstrumentation(mw *observe.Middleware) Option {
	return func(c *Calculator) {
		c.obs = mw
	}
}

// WithWarningHandler receives cache storage faults.
func WithWarningHandler(h WarningHandler) Option {
	return func(c *Calculator) {
		c.warn = h
	}
}

// WithCoalescing collapses concurrent identical requests inside this process
// into one cache lookup and at most one remote call. The shared call runs
// detached from any single caller's cancellation.
func WithCoalescing() Option {
	return func(c *Calculator) {
		c.coalesce = true
	}
}

// NewCalculator creates a Calculator. A nil store disables caching.
func NewCalculator(adapter Adapter, store cache.Cache, opts ...Option) (*Calculator, error) {
	if adapter == nil {
		return nil, ErrNilAdapter
	}

	c := &Calculator{
		adapter:      adapter,
		store:        store,
		singlePolicy: cache.SinglePolicy(),
		batchPolicy:  cache.BatchPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.obs == nil {
		c.obs = observe.NopMiddleware()
	}
	if c.logger == nil {
		c.logger = c.obs.Logger()
	}

	c.single = cache.NewMiddleware(store, c.singlePolicy, c.storageFault)
	c.batch = cache.NewMiddleware(store, c.batchPolicy, c.storageFault)
	return c, nil
}

// Calculate computes guidelines for one parameter.
func (c *Calculator) Calculate(ctx context.Context, parameter, media string, in ContextInput, targetUnit string) (*Result, error) {
	req, err := NewSingleRequest(parameter, media, in, targetUnit)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// CalculateBatch computes guidelines for up to MaxBatchParameters parameters
// in one remote call.
func (c *Calculator) CalculateBatch(ctx context.Context, parameters []ParameterInput, media string, in ContextInput) (*Result, error) {
	req, err := NewBatchRequest(parameters, media, in)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Do runs a request built by NewSingleRequest or NewBatchRequest.
func (c *Calculator) Do(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || len(req.Parameters) == 0 || len(req.Contexts) == 0 {
		return nil, &ValidationError{Field: "request", Reason: "must be built by NewSingleRequest or NewBatchRequest"}
	}

	op := opMeta(req)
	out, err := c.obs.Wrap(func(ctx context.Context, op observe.OpMeta) (any, error) {
		return c.run(ctx, req, op)
	})(ctx, op)
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}

func opMeta(req *Request) observe.OpMeta {
	name := "calculate"
	if req.Endpoint == EndpointBatch {
		name = "calculate_batch"
	}
	return observe.OpMeta{
		Name:       name,
		Endpoint:   string(req.Endpoint),
		Media:      req.Media,
		Parameters: len(req.Parameters),
		Contexts:   len(req.Contexts),
	}
}

type outcome struct {
	raw []byte
	hit bool
}

func (c *Calculator) run(ctx context.Context, req *Request, op observe.OpMeta) (*Result, error) {
	key, err := Canonicalize(req)
	if err != nil {
		return nil, fmt.Errorf("calc: canonicalize request: %w", err)
	}

	mw := c.middlewareFor(req.Endpoint)
	got, err := c.lookup(ctx, mw, key, req)
	if err != nil {
		return nil, err
	}
	c.obs.RecordCache(ctx, op, got.hit)
	logger := c.logger.WithOp(op)
	if got.hit {
		logger.Debug(ctx, "cache hit", observe.Field{Key: "cache_key", Value: key})
	} else {
		logger.Debug(ctx, "cache miss", observe.Field{Key: "cache_key", Value: key})
	}

	res, err := assemble(req, got.raw, got.hit)
	if err == nil {
		return res, nil
	}
	if !got.hit {
		return nil, err
	}

	// A cached payload that no longer decodes is dropped and refetched.
	c.storageFault(ctx, fmt.Errorf("calc: discarding unreadable cache entry %s: %w", key, err))
	mw.Invalidate(ctx, key)
	got, err = c.lookup(ctx, mw, key, req)
	if err != nil {
		return nil, err
	}
	return assemble(req, got.raw, got.hit)
}

func (c *Calculator) lookup(ctx context.Context, mw *cache.Middleware, key string, req *Request) (outcome, error) {
	do := func(ctx context.Context) (outcome, error) {
		raw, hit, err := mw.Execute(ctx, key, 0, func(ctx context.Context) ([]byte, error) {
			return c.fetch(ctx, req)
		})
		return outcome{raw: raw, hit: hit}, err
	}

	if !c.coalesce {
		return do(ctx)
	}

	// The shared call outlives any one caller; the adapter's own timeout
	// bounds it. Each caller still stops waiting when its ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		return do(shared)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return outcome{}, r.Err
		}
		return r.Val.(outcome), nil
	case <-ctx.Done():
		return outcome{}, abandoned(ctx)
	}
}

// abandoned maps a caller's ended ctx onto the fault taxonomy.
func abandoned(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutFault{Err: err}
	}
	return fmt.Errorf("calc: %w", err)
}

// fetch calls the adapter and rejects payloads that cannot be assembled, so
// they never reach the cache.
func (c *Calculator) fetch(ctx context.Context, req *Request) ([]byte, error) {
	raw, err := c.adapter.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("calc: decode %s response: %w", req.Endpoint, err)
	}
	return raw, nil
}

func (c *Calculator) middlewareFor(e Endpoint) *cache.Middleware {
	if e == EndpointBatch {
		return c.batch
	}
	return c.single
}

func (c *Calculator) storageFault(ctx context.Context, err error) {
	fields := []observe.Field{{Key: "error", Value: err.Error()}}
	var se *cache.StorageError
	if errors.As(err, &se) {
		fields = append(fields, observe.Field{Key: "cache_op", Value: se.Op})
	}
	c.logger.Warn(ctx, "cache storage fault", fields...)
	if c.warn != nil {
		c.warn(ctx, err)
	}
}

// ClearCache removes every cached calculation.
func (c *Calculator) ClearCache(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Clear(ctx)
}
