package splice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LocalFileSystem_MakeAllDirs(t *testing.T) {
	testDir := filepath.Join(t.TempDir(), "a", "b")

	localFileSystem := LocalFileSystem{
		DefaultCreatePermissions:    UserAndGroupReadWrite,
		DefaultCreateDirPermissions: UserAndGroupReadWrite | UserExecute,
	}

	err := localFileSystem.MakeAllDirs(testDir, 0)
	require.NoError(t, err)
	info, err := localFileSystem.Stat(testDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func Test_LocalFileSystem_DirAndName(t *testing.T) {
	root := Local.Separator()

	dir, name := Local.DirAndName(root + "FileInRoot")
	assert.Equal(t, root, dir)
	assert.Equal(t, "FileInRoot", name)

	dir, name = Local.DirAndName(root + "FileInRoot" + Local.Separator())
	assert.Equal(t, root, dir)
	assert.Equal(t, "FileInRoot", name)

	dir, name = Local.DirAndName(filepath.Join(root+"dir", "file.txt"))
	assert.Equal(t, root+"dir", dir)
	assert.Equal(t, "file.txt", name)
}

func Test_LocalFileSystem_OpenFile(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "file.txt")

	_, err := Local.OpenFile(filePath, os.O_RDONLY, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	f, err := Local.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("Hello World"), 0)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(5))
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	require.NoError(t, f.Close())

	require.NoError(t, Local.Remove(filePath))
	_, err = Local.Stat(filePath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
