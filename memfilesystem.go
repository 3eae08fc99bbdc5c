package splice

import (
	"errors"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ungerik/go-splice/fsimpl"
)

var _ FileSystem = new(MemFileSystem)

var memFileSystemDefaultPermissions = UserAndGroupReadWrite

// memFileNode implements io/fs.FileInfo
type memFileNode struct {
	name        string
	data        []byte
	modified    time.Time
	permissions Permissions
	isDir       bool
	open        bool
}

func (n *memFileNode) Name() string       { return n.name }
func (n *memFileNode) Size() int64        { return int64(len(n.data)) }
func (n *memFileNode) Mode() fs.FileMode  { return n.permissions.FileMode(n.isDir) }
func (n *memFileNode) ModTime() time.Time { return n.modified }
func (n *memFileNode) IsDir() bool        { return n.isDir }
func (n *memFileNode) Sys() any           { return nil }

// MemFileSystem is a thread-safe file system
// living in random access memory using "/" as separator.
//
// Usefull as mock file system for tests
// or for splicing data that never touches a disk.
//
// Opened files are fsimpl.FileBuffer copies of the file data
// that are written back when the handle is closed.
// A file can only be open once at a time.
type MemFileSystem struct {
	nodes map[string]*memFileNode // clean path to node
	mtx   sync.RWMutex
}

// ErrFileAlreadyOpen is returned by MemFileSystem.OpenFile
// for a file that has not been closed yet.
const ErrFileAlreadyOpen = ConstError("file is already open")

// NewMemFileSystem returns a MemFileSystem
// containing only the root and temp directory.
func NewMemFileSystem() *MemFileSystem {
	now := time.Now()
	fs := &MemFileSystem{nodes: make(map[string]*memFileNode)}
	fs.nodes["/"] = &memFileNode{name: "/", modified: now, permissions: memFileSystemDefaultPermissions, isDir: true}
	fs.nodes["/tmp"] = &memFileNode{name: "tmp", modified: now, permissions: memFileSystemDefaultPermissions, isDir: true}
	return fs
}

func (*MemFileSystem) Name() string {
	return "memory file system"
}

func (*MemFileSystem) Separator() string {
	return "/"
}

func (*MemFileSystem) TempDir() string {
	return "/tmp"
}

func (*MemFileSystem) JoinCleanPath(uriParts ...string) string {
	return fsimpl.JoinCleanPath(uriParts...)
}

func (*MemFileSystem) DirAndName(filePath string) (dir, name string) {
	return fsimpl.DirAndName(fsimpl.JoinCleanPath(filePath), 0, "/")
}

func (memFS *MemFileSystem) Stat(filePath string) (fs.FileInfo, error) {
	memFS.mtx.RLock()
	defer memFS.mtx.RUnlock()

	node, ok := memFS.nodes[fsimpl.JoinCleanPath(filePath)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
	}
	info := *node
	info.data = nil
	return &infoSize{memFileNode: &info, size: node.Size()}, nil
}

// infoSize is a snapshot of a node that doesn't share its data
type infoSize struct {
	*memFileNode
	size int64
}

func (info *infoSize) Size() int64 { return info.size }

func (memFS *MemFileSystem) MakeAllDirs(dirPath string, perm Permissions) error {
	memFS.mtx.Lock()
	defer memFS.mtx.Unlock()

	dirPath = fsimpl.JoinCleanPath(dirPath)
	now := time.Now()
	for _, p := range parentPaths(dirPath) {
		node, ok := memFS.nodes[p]
		if !ok {
			_, name := fsimpl.DirAndName(p, 0, "/")
			memFS.nodes[p] = &memFileNode{
				name:        name,
				modified:    now,
				permissions: JoinPermissions(perm, memFileSystemDefaultPermissions),
				isDir:       true,
			}
			continue
		}
		if !node.isDir {
			return &fs.PathError{Op: "mkdir", Path: p, Err: errors.New("not a directory")}
		}
	}
	return nil
}

// parentPaths returns all paths from the root to cleanPath
// excluding the root itself.
func parentPaths(cleanPath string) []string {
	if cleanPath == "/" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(cleanPath, "/"), "/")
	paths := make([]string, len(parts))
	for i := range parts {
		paths[i] = "/" + strings.Join(parts[:i+1], "/")
	}
	return paths
}

func (memFS *MemFileSystem) OpenFile(filePath string, flag int, perm Permissions) (FileHandle, error) {
	memFS.mtx.Lock()
	defer memFS.mtx.Unlock()

	cleanPath := fsimpl.JoinCleanPath(filePath)
	node, exists := memFS.nodes[cleanPath]
	switch {
	case exists && node.isDir:
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: errors.New("is a directory")}
	case exists && node.open:
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: ErrFileAlreadyOpen}
	case exists && flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0:
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrExist}
	case !exists && flag&os.O_CREATE == 0:
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	case !exists:
		dir, name := fsimpl.DirAndName(cleanPath, 0, "/")
		if parent, ok := memFS.nodes[dir]; !ok || !parent.isDir {
			return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
		}
		node = &memFileNode{
			name:        name,
			modified:    time.Now(),
			permissions: JoinPermissions(perm, memFileSystemDefaultPermissions),
		}
		memFS.nodes[cleanPath] = node
	}

	readOnly := flag&(os.O_WRONLY|os.O_RDWR) == 0
	if !readOnly && !node.permissions.CanUserWrite() {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrPermission}
	}
	if flag&os.O_TRUNC != 0 && !readOnly {
		node.data = nil
	}

	node.open = true
	flags := fsimpl.FileBufferFlags{
		ReadOnly: readOnly,
		Append:   flag&os.O_APPEND != 0,
	}
	data := slices.Clone(node.data)
	return fsimpl.NewFileBufferWithClose(node.name, data, flags, func(data []byte) error {
		memFS.mtx.Lock()
		defer memFS.mtx.Unlock()

		node.open = false
		if !readOnly {
			node.data = data
			node.modified = time.Now()
		}
		return nil
	}), nil
}

func (memFS *MemFileSystem) Chtimes(filePath string, atime, mtime time.Time) error {
	memFS.mtx.Lock()
	defer memFS.mtx.Unlock()

	node, ok := memFS.nodes[fsimpl.JoinCleanPath(filePath)]
	if !ok {
		return &fs.PathError{Op: "chtimes", Path: filePath, Err: fs.ErrNotExist}
	}
	node.modified = mtime
	return nil
}

func (memFS *MemFileSystem) Remove(filePath string) error {
	memFS.mtx.Lock()
	defer memFS.mtx.Unlock()

	cleanPath := fsimpl.JoinCleanPath(filePath)
	node, ok := memFS.nodes[cleanPath]
	if !ok {
		return &fs.PathError{Op: "remove", Path: filePath, Err: fs.ErrNotExist}
	}
	if node.isDir {
		for p := range memFS.nodes {
			if strings.HasPrefix(p, cleanPath+"/") {
				return &fs.PathError{Op: "remove", Path: filePath, Err: errors.New("directory not empty")}
			}
		}
	}
	delete(memFS.nodes, cleanPath)
	return nil
}

// WriteFile sets the content of a file, creating it if necessary.
// The parent directory must exist.
func (memFS *MemFileSystem) WriteFile(filePath string, data []byte) error {
	f, err := memFS.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return errors.Join(err, f.Close())
}

// ReadFile returns a copy of the content of a file.
func (memFS *MemFileSystem) ReadFile(filePath string) ([]byte, error) {
	memFS.mtx.RLock()
	defer memFS.mtx.RUnlock()

	node, ok := memFS.nodes[fsimpl.JoinCleanPath(filePath)]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: fs.ErrNotExist}
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: errors.New("is a directory")}
	}
	return slices.Clone(node.data), nil
}

// SetPermissions changes the permissions of an existing file or directory.
func (memFS *MemFileSystem) SetPermissions(filePath string, perm Permissions) error {
	memFS.mtx.Lock()
	defer memFS.mtx.Unlock()

	node, ok := memFS.nodes[fsimpl.JoinCleanPath(filePath)]
	if !ok {
		return &fs.PathError{Op: "chmod", Path: filePath, Err: fs.ErrNotExist}
	}
	node.permissions = perm
	return nil
}
