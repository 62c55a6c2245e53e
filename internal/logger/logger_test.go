package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFile_WritesToRollingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := NewWithFile("prod", &FileOptions{Path: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.With("service", "test").Info("hello", "rut", "1-9")
	log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"service":"test"`)
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info("discarded")
	log.With("k", "v").Error("discarded")
}
