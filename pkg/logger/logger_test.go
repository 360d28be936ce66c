package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope(t *testing.T) {
	attr := Scope("mutations")
	assert.Equal(t, "scope", attr.Key)
	assert.Equal(t, "mutations", attr.Value.String())
}

func TestError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"simple error", errors.New("statement failed")},
		{"nil error", nil},
		{"joined error", errors.Join(errors.New("outer"), errors.New("inner"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Error(tt.err)
			assert.Equal(t, "error", attr.Key)
			assert.Equal(t, tt.err, attr.Value.Any())
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		enabled  slog.Level
		disabled *slog.Level
	}{
		{"default is info", "", slog.LevelInfo, levelPtr(slog.LevelDebug)},
		{"debug", "debug", slog.LevelDebug, nil},
		{"case insensitive", "DeBuG", slog.LevelDebug, nil},
		{"warn", "warn", slog.LevelWarn, levelPtr(slog.LevelInfo)},
		{"warning alias", "warning", slog.LevelWarn, levelPtr(slog.LevelInfo)},
		{"error", "error", slog.LevelError, levelPtr(slog.LevelWarn)},
		{"invalid falls back to info", "verbose", slog.LevelInfo, levelPtr(slog.LevelDebug)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.level)
			t.Setenv("GO_ENV", "")

			log := NewLogger()
			ctx := context.Background()

			assert.True(t, log.Enabled(ctx, tt.enabled))
			if tt.disabled != nil {
				assert.False(t, log.Enabled(ctx, *tt.disabled))
			}
		})
	}
}

func TestNewLogger_Development(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("GO_ENV", "development")

	log := NewLogger()

	_, isText := log.Handler().(*slog.TextHandler)
	assert.True(t, isText, "development should use the text handler")
}

func levelPtr(l slog.Level) *slog.Level { return &l }
