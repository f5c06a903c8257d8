package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New("production", "info", path)
	require.NoError(t, err)

	log.Info("dialog opened")
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"dialog opened"`)
	assert.NotContains(t, string(data), "filtered out")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("development", "loud", "")
	assert.Error(t, err)
}
