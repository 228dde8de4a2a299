package tracer

import "context"

// NoopTracer is a tracer that does nothing.
// Used as the default when tracing is not configured, and in tests.
type NoopTracer struct{}

// NewNoop creates a new no-op tracer.
func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

// Start returns the context unchanged and a no-op span.
func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                      {}
func (noopSpan) SetAttributes(...Attribute)     {}
func (noopSpan) AddEvent(string, ...Attribute)  {}

var _ Tracer = (*NoopTracer)(nil)
