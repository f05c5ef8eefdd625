package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabledReturnsNoop(t *testing.T) {
	rt, err := Setup(context.Background(), "", Options{})
	require.NoError(t, err)
	require.NotNil(t, rt.Tracer)
	assert.NoError(t, rt.Shutdown(context.Background()))

	_, span := rt.Tracer.Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}
