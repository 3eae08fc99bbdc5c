package splice

import (
	"io"
	"io/fs"
)

// ReadWriteSeekCloser combines the interfaces
// io.Reader
// io.ReaderAt
// io.Writer
// io.WriterAt
// io.Seeker
// io.Closer
type ReadWriteSeekCloser interface {
	io.Reader
	io.ReaderAt
	io.Writer
	io.WriterAt
	io.Seeker
	io.Closer
}

// FileHandle is an open random access file.
// It combines ReadWriteSeekCloser with
// the Stat and Truncate methods of *os.File.
//
// A FileHandle is owned by exactly one operation at a time,
// implementations don't have to be safe for concurrent use.
type FileHandle interface {
	ReadWriteSeekCloser

	Stat() (fs.FileInfo, error)
	Truncate(size int64) error
}
