package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// SpanPrefix starts every span name.
const SpanPrefix = "guidelinely."

// OpMeta describes one client operation for telemetry purposes.
type OpMeta struct {
	Name       string // Operation name, e.g. "calculate" (required)
	Endpoint   string // Remote endpoint path (optional)
	Media      string // Environmental media (optional)
	Parameters int    // Number of parameters requested (optional)
	Contexts   int    // Number of contexts supplied (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: guidelinely.<name>
func (m OpMeta) SpanName() string {
	return SpanPrefix + m.Name
}

// Validate reports whether the metadata is usable.
func (m OpMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingOpName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an operation.
	StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a client span with operation metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", meta.Name),
		attribute.Bool("op.error", false),
	}
	if meta.Endpoint != "" {
		attrs = append(attrs, attribute.String("op.endpoint", meta.Endpoint))
	}
	if meta.Media != "" {
		attrs = append(attrs, attribute.String("op.media", meta.Media))
	}
	if meta.Parameters > 0 {
		attrs = append(attrs, attribute.Int("op.parameters", meta.Parameters))
	}
	if meta.Contexts > 0 {
		attrs = append(attrs, attribute.Int("op.contexts", meta.Contexts))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta OpMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
