package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strun.log")

	log, err := New(Options{Level: "debug", Format: FormatJSON, File: path})
	require.NoError(t, err)

	log.Debug("hello")
	log.Info("wallet ready")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"wallet ready"`)
	assert.Contains(t, string(raw), `"level":"debug"`)
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strun.log")

	log, err := New(Options{Level: "WARN", File: path})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "dropped")
	assert.Contains(t, string(raw), "kept")
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Options{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
