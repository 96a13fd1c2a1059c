package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	l := NewIsolatedLogger(path)

	l.Info("ENGINE", "state changed", map[string]interface{}{"state": "Answered"})
	l.Error("ENGINE", "query failed", map[string]interface{}{"error": "boom"})
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"module":"ENGINE"`)
	assert.Contains(t, string(data), `"message":"state changed"`)
	assert.Contains(t, string(data), `"error_ref":"boom"`)
}

func TestNopLogger_AcceptsNilDetails(t *testing.T) {
	var l ILogger = NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("X", "debug", nil)
		l.Warn("X", "warn", nil)
		l.Error("X", "error", nil)
	})
}
