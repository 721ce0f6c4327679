package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		logger := New(tt.level, "text")
		assert.True(t, logger.Enabled(context.Background(), tt.want), "level %s", tt.level)
		if tt.want > slog.LevelDebug {
			assert.False(t, logger.Enabled(context.Background(), tt.want-1), "level %s", tt.level)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	logger := New("info", "json")
	assert.NotNil(t, logger)
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	logger := New("debug", "text")
	ctx := WithLogger(context.Background(), logger)
	assert.Equal(t, logger, FromContext(ctx))
}

func TestL_AttachesRequestID(t *testing.T) {
	logger := New("info", "text")
	ctx := WithLogger(context.Background(), logger)

	// Without a request ID, L returns the context logger unchanged.
	assert.Equal(t, logger, L(ctx))

	// With one, L returns a derived logger.
	ctx = WithRequestID(ctx, "req-456")
	assert.NotEqual(t, logger, L(ctx))
}
