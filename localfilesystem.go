package splice

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Local is the local file system
var Local = &LocalFileSystem{
	DefaultCreatePermissions:    UserAndGroupReadWrite | OthersRead,
	DefaultCreateDirPermissions: UserAndGroupReadWrite | OthersRead | AllExecute,
}

var _ FileSystem = Local

// LocalFileSystem implements FileSystem for the local file system
// using the functions of package os.
type LocalFileSystem struct {
	DefaultCreatePermissions    Permissions
	DefaultCreateDirPermissions Permissions
}

func (*LocalFileSystem) Name() string {
	return "local file system"
}

func (*LocalFileSystem) Separator() string {
	return string(filepath.Separator)
}

func (*LocalFileSystem) TempDir() string {
	return os.TempDir()
}

func (*LocalFileSystem) JoinCleanPath(uriParts ...string) string {
	return filepath.Join(uriParts...)
}

func (*LocalFileSystem) DirAndName(filePath string) (dir, name string) {
	filePath = filepath.Clean(filePath)
	return filepath.Dir(filePath), filepath.Base(filePath)
}

func (*LocalFileSystem) Stat(filePath string) (fs.FileInfo, error) {
	return os.Stat(filePath)
}

func (local *LocalFileSystem) MakeAllDirs(dirPath string, perm Permissions) error {
	p := JoinPermissions(perm, local.DefaultCreateDirPermissions)
	return os.MkdirAll(dirPath, p.FileMode(false))
}

func (local *LocalFileSystem) OpenFile(filePath string, flag int, perm Permissions) (FileHandle, error) {
	p := JoinPermissions(perm, local.DefaultCreatePermissions)
	f, err := os.OpenFile(filePath, flag, p.FileMode(false))
	if err != nil {
		// Return a nil interface instead of a typed nil *os.File
		return nil, err
	}
	return f, nil
}

func (*LocalFileSystem) Chtimes(filePath string, atime, mtime time.Time) error {
	return os.Chtimes(filePath, atime, mtime)
}

func (*LocalFileSystem) Remove(filePath string) error {
	return os.Remove(filePath)
}
