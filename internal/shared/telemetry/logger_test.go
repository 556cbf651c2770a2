package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersWriteStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(prev) })

	Info("request.complete", map[string]any{"status": 200, "path": "/api/health"})
	Warn("schema.violation", nil)
	Error("save.failed", map[string]any{"error": errors.New("disk full")})

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "request.complete", entries[0].Message)
	assert.EqualValues(t, 200, entries[0].ContextMap()["status"])
	assert.Equal(t, "/api/health", entries[0].ContextMap()["path"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "disk full", entries[2].ContextMap()["error"])
}

func TestSetLoggerNilFallsBackToNop(t *testing.T) {
	prev := SetLogger(nil)
	t.Cleanup(func() { SetLogger(prev) })

	require.NotNil(t, L())
	Info("ignored", map[string]any{"k": "v"})
}
