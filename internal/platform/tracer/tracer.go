// Package tracer is a thin span abstraction over OpenTelemetry so services
// and external-authority clients can be traced without importing otel directly.
package tracer

import (
	"context"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanCertifyIssue   = "authority.certify.issue"
	SpanVerifyDelegate = "authority.verify"
	SpanWalletSave     = "authority.wallet.save"
	SpanIssue          = "credential.issue"
	SpanEvaluate       = "verification.evaluate"
)

// Attribute keys.
const (
	AttrBatchID      = "batch.id"
	AttrCredentialID = "credential.id"
	AttrSigningPath  = "signing.path"
	AttrVerdict      = "verification.verdict"
	AttrHTTPStatus   = "http.status_code"
	AttrBreakerOpen  = "breaker.open"
)

// NoopTracer discards all spans.
type NoopTracer struct{}

func NewNoop() *NoopTracer {
	return &NoopTracer{}
}

func (t *NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}

var (
	_ Tracer = (*NoopTracer)(nil)
	_ Span   = noopSpan{}
)
