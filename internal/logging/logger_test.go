package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewLevels(t *testing.T) {
	logger, err := New(Config{Level: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestFromLevel(t *testing.T) {
	assert.True(t, FromLevel("debug", false).Core().Enabled(zapcore.DebugLevel))
	assert.False(t, FromLevel("chatty", false).Core().Enabled(zapcore.DebugLevel))
	assert.True(t, FromLevel("", true).Core().Enabled(zapcore.DebugLevel))
}
