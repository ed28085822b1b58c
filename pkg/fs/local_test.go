package fs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testCtx = context.Background()
)

func TestNewLocal(t *testing.T) {
	_, err := NewLocal("")
	assert.Error(t, err)

	local, err := NewLocal("/tmp/episodes")
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/episodes", local.rootDir)
}

func TestLocal_Create(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "episodes")

	stor, err := NewLocal(tmpDir)
	require.NoError(t, err)

	written, err := stor.Create(testCtx, "Show_Episode.mp3", bytes.NewBuffer([]byte{1, 5, 7, 8, 3}))
	assert.NoError(t, err)
	assert.EqualValues(t, 5, written)

	stat, err := os.Stat(filepath.Join(tmpDir, "Show_Episode.mp3"))
	assert.NoError(t, err)
	assert.EqualValues(t, 5, stat.Size())
}

func TestLocal_Size(t *testing.T) {
	stor, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = stor.Create(testCtx, "test", bytes.NewBuffer([]byte{1, 5, 7, 8, 3}))
	assert.NoError(t, err)

	sz, err := stor.Size(testCtx, "test")
	assert.NoError(t, err)
	assert.EqualValues(t, 5, sz)
}

func TestLocal_NoSize(t *testing.T) {
	stor, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = stor.Size(testCtx, "test")
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_List(t *testing.T) {
	tmpDir := t.TempDir()

	stor, err := NewLocal(filepath.Join(tmpDir, "missing"))
	require.NoError(t, err)

	names, err := stor.List(testCtx)
	assert.NoError(t, err)
	assert.Empty(t, names)

	stor, err = NewLocal(tmpDir)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "subdir"), 0755))
	_, err = stor.Create(testCtx, "b.mp3", bytes.NewBufferString("b"))
	require.NoError(t, err)
	_, err = stor.Create(testCtx, "a.mp3", bytes.NewBufferString("a"))
	require.NoError(t, err)

	names, err = stor.List(testCtx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.mp3", "b.mp3"}, names)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestLocal_copyFile(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "1")

	l := &Local{rootDir: tmpDir}
	size, err := l.copyFile(bytes.NewReader([]byte{1, 2, 4}), file)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, size)

	stat, err := os.Stat(file)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, stat.Size())

	_, err = l.copyFile(failingReader{}, filepath.Join(tmpDir, "2"))
	assert.Error(t, err)

	// Neither the target nor a temp file remain.
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
