package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veriledger/internal/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	ctx := context.Background()
	got, span := tracer.NewNoop().Start(ctx, tracer.SpanComplianceCheck, tracer.String(tracer.AttrTenant, "acme"))
	assert.Equal(t, ctx, got)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Bool(tracer.AttrCompliant, true))
	span.AddEvent("checked", tracer.Int("credentials", 2))
	span.End(errors.New("ignored"))
}

func TestOTelTracerUsesGlobalProvider(t *testing.T) {
	_, span := tracer.NewOTel().Start(context.Background(), tracer.SpanOnboardingStep,
		tracer.String(tracer.AttrStep, "REGISTRATION"),
		tracer.Int("attempt", 1),
		tracer.Duration("elapsed", 0),
	)
	span.AddEvent("validated", tracer.String("fields", "email"))
	span.End(nil)
}

func TestHashIdentity(t *testing.T) {
	assert.Empty(t, tracer.HashIdentity(""))
	h := tracer.HashIdentity("0xinvestor")
	assert.Len(t, h, 16)
	assert.Equal(t, h, tracer.HashIdentity("0xinvestor"))
	assert.NotEqual(t, h, tracer.HashIdentity("0xother"))
}
