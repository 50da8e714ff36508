package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileMode(t *testing.T) {
	var m FileMode
	require.NoError(t, m.Set(""))
	assert.Equal(t, FileModeTruncate, m)
	require.NoError(t, m.Set("rotate"))
	assert.Equal(t, FileModeRotate, m)
	assert.Error(t, m.Set("sideways"))
}

func readLines(t *testing.T, path string) []map[string]interface{} {
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestAppendAndTruncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airindex.log")
	write := func(mode FileMode, msg string) {
		l, err := New(Config{Path: path, Mode: mode, Level: zap.InfoLevel})
		require.NoError(t, err)
		l.Info(msg, zap.Int("layers", 3))
		l.Debug("dropped")
		require.NoError(t, l.Sync())
	}
	write(FileModeTruncate, "first")
	write(FileModeAppend, "second")
	recs := readLines(t, path)
	require.Len(t, recs, 2)
	assert.Equal(t, "second", recs[1]["msg"])
	assert.EqualValues(t, 3, recs[1]["layers"])

	write(FileModeTruncate, "third")
	recs = readLines(t, path)
	require.Len(t, recs, 1)
	assert.Equal(t, "third", recs[0]["msg"])
}

func TestRotateMissingDir(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope", "x.log"), FileModeRotate)
	assert.Error(t, err)
}
