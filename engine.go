// Package splice edits files in place with a bounded amount of memory.
//
// An Engine inserts, appends or replaces byte ranges of files
// on a FileSystem without reading whole files into memory,
// and reads lines starting at arbitrary byte offsets.
//
// Example:
//
//	engine, err := splice.New(splice.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//	err = engine.ReplaceRange(ctx, "data.txt", 10, 20, []byte("new content"))
//
// Engines don't lock files. Concurrent edits of the same file
// must be serialized by the caller, for example with package filelock.
package splice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"golang.org/x/text/encoding"
)

// Engine performs splice operations on the files of a FileSystem.
// It is safe to use an Engine from multiple goroutines
// as long as they don't operate on the same file.
type Engine struct {
	fileSystem FileSystem
	config     Config
	charset    encoding.Encoding // nil means no conversion

	mtx     sync.Mutex
	staging map[string]struct{} // staging files marked for cleanup
	closed  bool
}

// New returns an Engine for the local file system.
func New(config Config) (*Engine, error) {
	return NewEngine(Local, config)
}

// NewEngine returns an Engine for fileSystem.
// Zero values of config are replaced by the defaults of DefaultConfig.
func NewEngine(fileSystem FileSystem, config Config) (*Engine, error) {
	if fileSystem == nil {
		return nil, errors.New("nil FileSystem")
	}
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	charset, err := lookupCharset(config.Charset)
	if err != nil {
		return nil, err
	}
	if config.StagingDir == "" {
		config.StagingDir = fileSystem.JoinCleanPath(fileSystem.TempDir(), stagingDirName)
	}
	return &Engine{
		fileSystem: fileSystem,
		config:     config,
		charset:    charset,
		staging:    make(map[string]struct{}),
	}, nil
}

// FileSystem returns the FileSystem of the engine
func (e *Engine) FileSystem() FileSystem {
	return e.fileSystem
}

// Config returns the configuration of the engine
// with all defaults applied.
func (e *Engine) Config() Config {
	return e.config
}

// Close removes all staging files marked for cleanup
// that have not been removed yet.
// The Engine can't be used after Close.
func (e *Engine) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	for stagingPath := range e.staging {
		err := e.fileSystem.Remove(stagingPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			e.config.Logger.Printf("can't remove staging file %s: %s", stagingPath, err)
			errs = append(errs, err)
		}
	}
	clear(e.staging)
	return errors.Join(errs...)
}

func (e *Engine) checkOpen() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	return nil
}

func (e *Engine) newBuffer() []byte {
	return make([]byte, e.config.BufferSize)
}

// OpenReader opens filePath for reading.
// The caller owns the returned handle and must close it.
func (e *Engine) OpenReader(filePath string) (FileHandle, error) {
	file, _, err := e.openForReading(filePath)
	return file, err
}

// OpenWriter opens filePath for writing, truncating an existing file.
// The caller owns the returned handle and must close it.
func (e *Engine) OpenWriter(filePath string) (FileHandle, error) {
	return e.openForWriting(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// Touch creates an empty filePath if it does not exist,
// else it sets the modification time of the file to now.
func (e *Engine) Touch(filePath string) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	if filePath == "" {
		return ErrEmptyPath
	}
	info, err := e.fileSystem.Stat(filePath)
	if err == nil {
		if info.IsDir() {
			return NewErrIsDirectory(filePath)
		}
		now := time.Now()
		return e.fileSystem.Chtimes(filePath, now, now)
	}
	file, err := e.openForWriting(filePath, os.O_WRONLY|os.O_CREATE)
	if err != nil {
		return err
	}
	return file.Close()
}

// openForReading opens an existing filePath read-only
// and returns it together with its size.
func (e *Engine) openForReading(filePath string) (file FileHandle, size int64, err error) {
	if err = e.checkOpen(); err != nil {
		return nil, 0, err
	}
	if filePath == "" {
		return nil, 0, ErrEmptyPath
	}
	info, err := e.fileSystem.Stat(filePath)
	if err != nil {
		return nil, 0, wrapOpenError(filePath, err, false)
	}
	if info.IsDir() {
		return nil, 0, NewErrIsDirectory(filePath)
	}
	file, err = e.fileSystem.OpenFile(filePath, os.O_RDONLY, 0)
	if err != nil {
		return nil, 0, wrapOpenError(filePath, err, false)
	}
	return file, info.Size(), nil
}

// openForWriting opens filePath with flag, which must include os.O_CREATE,
// creating parent directories if configured.
func (e *Engine) openForWriting(filePath string, flag int) (FileHandle, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if filePath == "" {
		return nil, ErrEmptyPath
	}
	info, err := e.fileSystem.Stat(filePath)
	switch {
	case err == nil && info.IsDir():
		return nil, NewErrIsDirectory(filePath)
	case errors.Is(err, fs.ErrNotExist) && e.config.CreateParentDirs:
		dir, _ := e.fileSystem.DirAndName(filePath)
		if err := e.fileSystem.MakeAllDirs(dir, 0); err != nil {
			return nil, NewErrNotWritable(filePath, fmt.Errorf("can't create parent directory: %w", err))
		}
	}
	file, err := e.fileSystem.OpenFile(filePath, flag, e.config.Permissions)
	if err != nil {
		return nil, wrapOpenError(filePath, err, true)
	}
	return file, nil
}

func (e *Engine) encodeString(s string) ([]byte, error) {
	if e.charset == nil {
		return []byte(s), nil
	}
	return e.charset.NewEncoder().Bytes([]byte(s))
}

func (e *Engine) decodeBytes(b []byte) (string, error) {
	if e.charset == nil {
		return string(b), nil
	}
	decoded, err := e.charset.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
