package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "json")
	assert.Error(t, err)
}

func TestNewStructured(t *testing.T) {
	l, err := NewStructured("debug", "console")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestComponentAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Component(NewZapAdapter(zap.New(core)), "chatbot")

	l.WithError(errors.New("boom")).Info("intent matched", map[string]any{"intent": "brands"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "intent matched", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "chatbot", fields["component"])
	assert.Equal(t, "brands", fields["intent"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNoOpLogger(t *testing.T) {
	l := NewNoOpLogger()
	l.Debug("ignored", nil)
	l.Warn("ignored", map[string]any{"k": 1})
	assert.NoError(t, l.Sync())
}
