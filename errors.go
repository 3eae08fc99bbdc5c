package splice

import (
	"errors"
	"fmt"
	"io/fs"
)

type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

const (
	// ErrEngineClosed is returned by operations on an Engine
	// after its Close method was called.
	ErrEngineClosed = ConstError("splice engine is closed")

	// ErrEmptyPath is returned when an operation gets an empty file path
	ErrEmptyPath = ConstError("empty file path")
)

// PathError is an interface that is implemented by all errors
// that can reference a file path.
type PathError interface {
	error

	// Path returns the file path that error concerns
	Path() string
}

///////////////////////////////////////////////////////////////////////////////
// ErrDoesNotExist

// ErrDoesNotExist is returned when a file does not exist
type ErrDoesNotExist struct {
	path string
}

// NewErrDoesNotExist returns a new ErrDoesNotExist
func NewErrDoesNotExist(path string) *ErrDoesNotExist {
	return &ErrDoesNotExist{path}
}

func (err *ErrDoesNotExist) Error() string {
	return "file does not exist: " + err.path
}

// Is returns true if target is any *ErrDoesNotExist
// or io/fs.ErrNotExist.
func (err *ErrDoesNotExist) Is(target error) bool {
	_, isIt := target.(*ErrDoesNotExist)
	return isIt || target == fs.ErrNotExist
}

// Path returns the file path that error concerns
func (err *ErrDoesNotExist) Path() string {
	return err.path
}

// IsErrDoesNotExist returns if err is or wraps an *ErrDoesNotExist
func IsErrDoesNotExist(err error) bool {
	var target *ErrDoesNotExist
	return errors.As(err, &target)
}

///////////////////////////////////////////////////////////////////////////////
// ErrIsDirectory

// ErrIsDirectory is returned when an operation is not possible because
// a file is a directory.
type ErrIsDirectory struct {
	path string
}

// NewErrIsDirectory returns a new ErrIsDirectory
func NewErrIsDirectory(path string) *ErrIsDirectory {
	return &ErrIsDirectory{path}
}

func (err *ErrIsDirectory) Error() string {
	return "file is a directory: " + err.path
}

// Path returns the file path that error concerns
func (err *ErrIsDirectory) Path() string {
	return err.path
}

// IsErrIsDirectory returns if err is or wraps an *ErrIsDirectory
func IsErrIsDirectory(err error) bool {
	var target *ErrIsDirectory
	return errors.As(err, &target)
}

///////////////////////////////////////////////////////////////////////////////
// ErrNotReadable

// ErrNotReadable is returned when a file exists but can't be opened for reading.
type ErrNotReadable struct {
	path string
	err  error
}

// NewErrNotReadable returns a new ErrNotReadable wrapping cause
func NewErrNotReadable(path string, cause error) *ErrNotReadable {
	return &ErrNotReadable{path: path, err: cause}
}

func (err *ErrNotReadable) Error() string {
	return fmt.Sprintf("file is not readable: %s: %s", err.path, err.err)
}

func (err *ErrNotReadable) Unwrap() error {
	return err.err
}

// Path returns the file path that error concerns
func (err *ErrNotReadable) Path() string {
	return err.path
}

///////////////////////////////////////////////////////////////////////////////
// ErrNotWritable

// ErrNotWritable is returned when a file or its directory
// can't be opened or created for writing.
type ErrNotWritable struct {
	path string
	err  error
}

// NewErrNotWritable returns a new ErrNotWritable wrapping cause
func NewErrNotWritable(path string, cause error) *ErrNotWritable {
	return &ErrNotWritable{path: path, err: cause}
}

func (err *ErrNotWritable) Error() string {
	return fmt.Sprintf("file is not writable: %s: %s", err.path, err.err)
}

func (err *ErrNotWritable) Unwrap() error {
	return err.err
}

// Path returns the file path that error concerns
func (err *ErrNotWritable) Path() string {
	return err.path
}

///////////////////////////////////////////////////////////////////////////////
// ErrInvalidRange

// ErrInvalidRange is returned for byte ranges
// that have no sane interpretation, like negative offsets.
type ErrInvalidRange struct {
	Start, End int64
}

// NewErrInvalidRange returns a new ErrInvalidRange
func NewErrInvalidRange(start, end int64) *ErrInvalidRange {
	return &ErrInvalidRange{Start: start, End: end}
}

func (err *ErrInvalidRange) Error() string {
	return fmt.Sprintf("invalid byte range [%d, %d)", err.Start, err.End)
}

// IsErrInvalidRange returns if err is or wraps an *ErrInvalidRange
func IsErrInvalidRange(err error) bool {
	var target *ErrInvalidRange
	return errors.As(err, &target)
}

///////////////////////////////////////////////////////////////////////////////
// StagingError

// StagingError is returned when a staging file or its directory
// could not be created.
// It is always returned before the target file was modified.
type StagingError struct {
	path string
	err  error
}

func (err *StagingError) Error() string {
	return fmt.Sprintf("can't create staging file %s: %s", err.path, err.err)
}

func (err *StagingError) Unwrap() error {
	return err.err
}

// Path returns the path of the staging file or directory
func (err *StagingError) Path() string {
	return err.path
}

// IsStagingError returns if err is or wraps a *StagingError
func IsStagingError(err error) bool {
	var target *StagingError
	return errors.As(err, &target)
}

///////////////////////////////////////////////////////////////////////////////
// PartialSpliceError

// PartialSpliceError is returned when an I/O error happened
// after the target file was already partially overwritten.
// The file content is inconsistent and not recovered automatically.
type PartialSpliceError struct {
	path     string
	strategy Strategy
	err      error
}

func (err *PartialSpliceError) Error() string {
	return fmt.Sprintf("partial splice of %s using %s strategy: %s", err.path, err.strategy, err.err)
}

func (err *PartialSpliceError) Unwrap() error {
	return err.err
}

// Path returns the file path that error concerns
func (err *PartialSpliceError) Path() string {
	return err.path
}

// Strategy returns the splice strategy that failed
func (err *PartialSpliceError) Strategy() Strategy {
	return err.strategy
}

// IsPartialSpliceError returns if err is or wraps a *PartialSpliceError
func IsPartialSpliceError(err error) bool {
	var target *PartialSpliceError
	return errors.As(err, &target)
}

// wrapOpenError converts errors from opening filePath
// into the typed errors of this package.
func wrapOpenError(filePath string, err error, write bool) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		if write {
			// the parent directory is missing
			return NewErrNotWritable(filePath, err)
		}
		return NewErrDoesNotExist(filePath)
	case errors.Is(err, fs.ErrPermission) && write:
		return NewErrNotWritable(filePath, err)
	case errors.Is(err, fs.ErrPermission):
		return NewErrNotReadable(filePath, err)
	}
	return err
}
