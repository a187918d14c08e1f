package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New(&buf, zerolog.WarnLevel)
	log.Info().Msg("hidden")
	log.Warn().Str("key", "overview").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "shown", rec["message"])
	assert.Equal(t, "overview", rec["key"])
	assert.Contains(t, rec, "time")
}

func TestOpenAppendsToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "finadmin.log")
	log, closeFn, err := Open(path, zerolog.DebugLevel)
	require.NoError(t, err)
	log.Debug().Msg("first")
	require.NoError(t, closeFn())

	log, closeFn, err = Open(path, zerolog.DebugLevel)
	require.NoError(t, err)
	log.Debug().Msg("second")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "first")
	assert.Contains(t, string(data), "second")
}

func TestOpenEmptyPathDiscards(t *testing.T) {
	t.Parallel()

	log, closeFn, err := Open("", zerolog.InfoLevel)
	require.NoError(t, err)
	log.Info().Msg("nowhere")
	assert.NoError(t, closeFn())
}
