// Package tracer is a small tracing facade over OpenTelemetry so compliance
// and onboarding code can emit spans without importing otel directly.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span is an active trace span. End must be called exactly once.
type Span interface {
	// End completes the span and marks it failed when err is non-nil.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans. Implementations are safe for concurrent use.
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

// HashIdentity shortens an identity to a stable, non-reversible tag so
// spans can be correlated without exporting the subject.
func HashIdentity(identity string) string {
	if identity == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(identity))
	return hex.EncodeToString(sum[:8])
}

const (
	SpanComplianceCheck    = "compliance.check"
	SpanComplianceEvaluate = "compliance.evaluate"
	SpanOnboardingStep     = "onboarding.step"
	SpanOnboardingFinalize = "onboarding.finalize"
)

const (
	AttrSubject    = "subject"
	AttrTenant     = "tenant_id"
	AttrCompliant  = "compliant"
	AttrStep       = "step"
	AttrMissing    = "missing_types"
	AttrCredential = "credential_id"
)
