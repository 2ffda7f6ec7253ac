package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(config.ProfilingConfig{}, "retail-backend", "test", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(config.ProfilingConfig{Enabled: true}, "retail-backend", "test", zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "server_address")

	_, err = NewProfiler(config.ProfilingConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, "", "test", zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "application name")
}

func TestProfilingLabelPairs(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]string
		want   []string
	}{
		{name: "nil", labels: nil, want: []string{}},
		{
			name:   "sorted and normalized",
			labels: map[string]string{"Stage": "commit", "http-route": "/api/v1/sales"},
			want:   []string{"http_route", "/api/v1/sales", "stage", "commit"},
		},
		{
			name:   "unbounded keys dropped",
			labels: map[string]string{"sale_id": "0b7c", "Request-ID": "abc", LabelOperation: "checkout"},
			want:   []string{"operation", "checkout"},
		},
		{
			name:   "empty values dropped",
			labels: map[string]string{LabelRoute: "", LabelMethod: "POST"},
			want:   []string{"method", "POST"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfilingLabelPairs(tt.labels))
		})
	}
}

func TestProfilingLabelPairs_TruncatesValues(t *testing.T) {
	pairs := ProfilingLabelPairs(map[string]string{LabelRoute: strings.Repeat("x", 500)})
	require.Len(t, pairs, 2)
	assert.Len(t, pairs[1], maxLabelValueLength)
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("labels visible inside fn", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), map[string]string{LabelStage: "reserving"}, func(ctx context.Context) {
			called = true
			v, ok := pprof.Label(ctx, "stage")
			assert.True(t, ok)
			assert.Equal(t, "reserving", v)
		})
		assert.True(t, called)
	})

	t.Run("runs fn without labels", func(t *testing.T) {
		called := false
		WithProfilingLabels(context.Background(), map[string]string{"user_id": "42"}, func(ctx context.Context) {
			called = true
			_, ok := pprof.Label(ctx, "user_id")
			assert.False(t, ok)
		})
		assert.True(t, called)
	})
}
