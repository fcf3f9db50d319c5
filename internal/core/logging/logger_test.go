package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ragchat.log")
	logger, err := New(Options{FilePath: path})
	require.NoError(t, err)

	logger.Info("exchange failed", zap.String("session_id", "123456"))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "exchange failed", entry["message"])
	assert.Equal(t, "123456", entry["session_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestConsoleLoggerDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf, Debug: true})
	require.NoError(t, err)

	logger.Debug("files attached", zap.Int("added", 2))
	assert.Contains(t, buf.String(), "files attached")
}

func TestNoSinksIsNop(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	logger.Info("nothing happens")
}
