package splice

import (
	"io/fs"
	"time"
)

// FileSystem is an interface that has to be implemented for
// a file system to be editable by an Engine.
//
// Paths are passed without any URL prefix
// in the style of the file system (see Separator).
type FileSystem interface {
	// Name returns the name of the FileSystem implementation
	Name() string

	Separator() string

	// TempDir returns the directory below which
	// staging files are created by default.
	TempDir() string

	// JoinCleanPath joins the uriParts into a cleaned path
	// of the file system style.
	JoinCleanPath(uriParts ...string) string

	// DirAndName returns the parent directory of filePath
	// and the name within that directory.
	DirAndName(filePath string) (dir, name string)

	Stat(filePath string) (fs.FileInfo, error)

	// MakeAllDirs creates dirPath and all missing parent directories.
	// No error is returned if dirPath already exists as directory.
	MakeAllDirs(dirPath string, perm Permissions) error

	// OpenFile opens filePath with the flags of os.OpenFile.
	// Permissions of zero mean the default permissions
	// of the file system for newly created files.
	OpenFile(filePath string, flag int, perm Permissions) (FileHandle, error)

	Chtimes(filePath string, atime, mtime time.Time) error

	// Remove deletes the file.
	Remove(filePath string) error
}
