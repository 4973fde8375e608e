package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.log")
	w := NewAsyncFileWriter(path, 1, 1, 100)
	require.NoError(t, w.Start())
	w.Write([]byte("hello\n"))
	w.Write([]byte("world\n"))
	w.Stop()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld\n", string(content))
	assert.Equal(t, uint64(0), w.Dropped())
}

func TestWriterDoubleStart(t *testing.T) {
	w := NewAsyncFileWriter(filepath.Join(t.TempDir(), "twice.log"), 1, 1, 10)
	require.NoError(t, w.Start())
	assert.Error(t, w.Start())
	w.Stop()
}

func TestWriterDropsWhenFull(t *testing.T) {
	w := NewAsyncFileWriter(filepath.Join(t.TempDir(), "full.log"), 1, 1, 1)
	// Not started: nothing drains the queue.
	w.Write([]byte("a"))
	w.Write([]byte("b"))
	w.Write([]byte("c"))
	assert.Equal(t, uint64(2), w.Dropped())
	w.Stop()
}

func TestWriterAsLogTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vm.log")
	w := NewAsyncFileWriter(path, 1, 1, 16)
	require.NoError(t, w.Start())

	l := NewLogger(NewTerminalHandlerWithLevel(w, LevelInfo, false))
	l.Info("Run finished", "steps", 4)
	l.Debug("hidden")
	w.Stop()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Run finished")
	assert.Contains(t, string(content), "steps=4")
	assert.NotContains(t, string(content), "hidden")
}
