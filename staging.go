package splice

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ungerik/go-splice/fsimpl"
)

// StagingFile is a uniquely named scratch file
// that holds bytes displaced by a splice.
// It is never read by anything other than the operation that created it.
type StagingFile struct {
	FileHandle

	path   string
	engine *Engine
}

// Path returns the path of the staging file
func (s *StagingFile) Path() string {
	return s.path
}

// Remove closes and deletes the staging file
// and unregisters it from the cleanup at Engine.Close.
func (s *StagingFile) Remove() error {
	closeErr := s.FileHandle.Close()
	removeErr := s.engine.fileSystem.Remove(s.path)
	if errors.Is(removeErr, fs.ErrNotExist) {
		removeErr = nil
	}
	if removeErr == nil {
		s.engine.mtx.Lock()
		delete(s.engine.staging, s.path)
		s.engine.mtx.Unlock()
	}
	return errors.Join(closeErr, removeErr)
}

// StagingFilePath returns a new random path for a staging file
// within the staging directory of the engine.
// The file name consists of 32 hex characters and StagingFileExt.
func (e *Engine) StagingFilePath() string {
	return e.fileSystem.JoinCleanPath(e.config.StagingDir, fsimpl.RandomHexString()+StagingFileExt)
}

// CreateStagingFile creates a new empty staging file
// opened for reading and writing, making the staging directory if necessary.
//
// If markForCleanup is true, then the file will be deleted
// by Engine.Close if it still exists at that point.
// Callers still have to call StagingFile.Remove after use.
//
// Errors are of type *StagingError.
func (e *Engine) CreateStagingFile(markForCleanup bool) (*StagingFile, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	err := e.fileSystem.MakeAllDirs(e.config.StagingDir, 0)
	if err != nil {
		return nil, &StagingError{path: e.config.StagingDir, err: err}
	}
	stagingPath := e.StagingFilePath()
	file, err := e.fileSystem.OpenFile(stagingPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, UserReadWrite)
	if err != nil {
		return nil, &StagingError{path: stagingPath, err: err}
	}
	if markForCleanup {
		e.mtx.Lock()
		e.staging[stagingPath] = struct{}{}
		e.mtx.Unlock()
	}
	return &StagingFile{FileHandle: file, path: stagingPath, engine: e}, nil
}

// removeStaging removes a staging file after a splice
// and only logs errors because the splice itself was done.
func (e *Engine) removeStaging(staging *StagingFile) {
	if err := staging.Remove(); err != nil {
		e.config.Logger.Printf("can't remove staging file %s: %s", staging.Path(), err)
	}
}
