package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", &buf)
	assert.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("re-exported ledger", zap.String("file", "main.beancount"))
	assert.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "re-exported ledger")
	assert.Contains(t, out, "main.beancount")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	lvl, err = ParseLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	assert.NotZero(t, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	assert.True(t, FromContext(ctx) == logger)
}
