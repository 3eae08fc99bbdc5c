package splice

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemFileSystem(t *testing.T) {
	memFS := NewMemFileSystem()
	for _, dir := range []string{"/", memFS.TempDir()} {
		info, err := memFS.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), "%s is dir", dir)
	}
	assert.Equal(t, "/", memFS.Separator())
}

func TestMemFileSystem_OpenFile(t *testing.T) {
	memFS := NewMemFileSystem()

	_, err := memFS.OpenFile("/file.txt", os.O_RDONLY, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = memFS.OpenFile("/missing/file.txt", os.O_WRONLY|os.O_CREATE, 0)
	assert.ErrorIs(t, err, os.ErrNotExist, "parent directory missing")

	f, err := memFS.OpenFile("/file.txt", os.O_RDWR|os.O_CREATE|os.O_EXCL, 0)
	require.NoError(t, err)
	_, err = memFS.OpenFile("/file.txt", os.O_RDONLY, 0)
	assert.ErrorIs(t, err, ErrFileAlreadyOpen)
	_, err = f.Write([]byte("Hello World"))
	require.NoError(t, err)
	require.NoError(t, f.Truncate(5))
	info, err := memFS.Stat("/file.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size(), "data written back on close")
	require.NoError(t, f.Close())

	data, err := memFS.ReadFile("/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(data))

	_, err = memFS.OpenFile("/file.txt", os.O_RDWR|os.O_CREATE|os.O_EXCL, 0)
	assert.ErrorIs(t, err, os.ErrExist)

	f, err = memFS.OpenFile("/file.txt", os.O_WRONLY|os.O_APPEND, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte("!"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = memFS.OpenFile("/file.txt", os.O_RDONLY, 0)
	require.NoError(t, err)
	data, err = io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", string(data))
	_, err = f.Write([]byte("x"))
	assert.Error(t, err, "read-only handle")
	require.NoError(t, f.Close())

	f, err = memFS.OpenFile("/file.txt", os.O_WRONLY|os.O_TRUNC, 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	data, err = memFS.ReadFile("/file.txt")
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMemFileSystem_MakeAllDirs(t *testing.T) {
	memFS := NewMemFileSystem()
	require.NoError(t, memFS.MakeAllDirs("/a/b/c", 0))
	require.NoError(t, memFS.MakeAllDirs("/a/b", 0), "existing dir")
	for _, dir := range []string{"/a", "/a/b", "/a/b/c"} {
		info, err := memFS.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir(), dir)
	}

	require.NoError(t, memFS.WriteFile("/a/file", nil))
	assert.Error(t, memFS.MakeAllDirs("/a/file/sub", 0), "file in path")

	assert.Error(t, memFS.Remove("/a/b"), "directory not empty")
	require.NoError(t, memFS.Remove("/a/b/c"))
	require.NoError(t, memFS.Remove("/a/b"))
	assert.ErrorIs(t, memFS.Remove("/a/b"), os.ErrNotExist)
}

func TestMemFileSystem_DirAndName(t *testing.T) {
	memFS := NewMemFileSystem()

	dir, name := memFS.DirAndName("/dir/file.txt")
	assert.Equal(t, "/dir", dir)
	assert.Equal(t, "file.txt", name)

	dir, name = memFS.DirAndName("/file.txt")
	assert.Equal(t, "/", dir)
	assert.Equal(t, "file.txt", name)

	assert.Equal(t, "/a/b", memFS.JoinCleanPath("a", "x", "..", "b"))
}
