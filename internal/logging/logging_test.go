package logging

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelParsing(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
		{"garbage defaults to info", "not-a-level", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(Config{Level: tt.level})
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := ComponentLogger(New(Config{Level: "debug"}), "test")
	ctx := WithContext(context.Background(), logger)

	got := FromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, zerolog.DebugLevel, got.GetLevel())
}

func TestTraceID(t *testing.T) {
	t.Run("generated IDs are unique", func(t *testing.T) {
		a := NewTraceID()
		b := NewTraceID()
		assert.NotEmpty(t, a)
		assert.NotEqual(t, a, b)
	})

	t.Run("context round trip", func(t *testing.T) {
		ctx := ContextWithTraceID(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", TraceIDFromContext(ctx))
		assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", GetOrGenerateTraceID(ctx))
	})

	t.Run("missing trace ID generates one", func(t *testing.T) {
		assert.Empty(t, TraceIDFromContext(context.Background()))
		assert.NotEmpty(t, GetOrGenerateTraceID(context.Background()))
	})
}
