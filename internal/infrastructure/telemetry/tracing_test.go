package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/config"
)

func TestInitTracerProvider_WithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracerProvider(context.Background(), config.TelemetryConfig{ServiceName: "storefront-test"})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := otel.Tracer("test").Start(context.Background(), "lookup")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
}
