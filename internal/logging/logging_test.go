package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, log.WarnLevel, l.GetLevel())

	l.Info("hidden")
	l.Warn("dropped submesh", "name", "visor")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "dropped submesh")
	assert.Contains(t, out, "visor")
	assert.Contains(t, out, Prefix)
}

func TestNewDefaultsToInfo(t *testing.T) {
	l, err := New(&bytes.Buffer{}, "")
	require.NoError(t, err)
	assert.Equal(t, log.InfoLevel, l.GetLevel())
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "chatty")
	require.Error(t, err)
}
