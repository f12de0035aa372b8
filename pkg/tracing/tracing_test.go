package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"ariproxy/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	tp, err := Init(config.TracingConfig{Enabled: false}, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := StartMessageSpan(context.Background(), "StasisStart")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.False(t, span.IsRecording())
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		cfg  config.SamplerConfig
		want string
	}{
		{config.SamplerConfig{Type: "always_off"}, sdktrace.NeverSample().Description()},
		{config.SamplerConfig{Type: "traceidratio", Param: 0.25}, sdktrace.TraceIDRatioBased(0.25).Description()},
		{config.SamplerConfig{Type: "parentbased_always_on"}, sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()},
		{config.SamplerConfig{Type: "bogus"}, sdktrace.AlwaysSample().Description()},
	}

	for _, tt := range tests {
		t.Run(tt.cfg.Type, func(t *testing.T) {
			assert.Equal(t, tt.want, newSampler(tt.cfg).Description())
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty())
}

func TestShutdown_Nil(t *testing.T) {
	var tp *TracerProvider
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewExporter(t *testing.T) {
	exporter, err := newExporter(config.OTLPConfig{Endpoint: "localhost:4317", Insecure: true})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = exporter.Shutdown(ctx)
}
