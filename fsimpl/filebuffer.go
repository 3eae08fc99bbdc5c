package fsimpl

import (
	"errors"
	"io"
	"io/fs"
	"time"
)

// ErrReadOnly is returned when writing to a read-only FileBuffer
var ErrReadOnly = errors.New("FileBuffer is read-only")

// FileBuffer is a memory buffer that implements the interfaces
// io.Reader
// io.ReaderAt
// io.Writer
// io.WriterAt
// io.Seeker
// io.Closer
// and the Stat and Truncate methods of *os.File.
type FileBuffer struct {
	name     string
	data     []byte
	pos      int64 // current reading and writing index
	readOnly bool
	append   bool
	close    func(data []byte) error
}

// NewFileBuffer returns a new FileBuffer
func NewFileBuffer(data []byte) *FileBuffer {
	return &FileBuffer{data: data}
}

// FileBufferFlags configures how a FileBuffer handles writes.
type FileBufferFlags struct {
	// ReadOnly makes all writes fail with ErrReadOnly
	ReadOnly bool
	// Append makes Write always write at the end of the buffer
	Append bool
}

// NewFileBufferWithClose returns a new FileBuffer with a name
// returned from Stat and a close function
// that will be called with the final data of the buffer.
func NewFileBufferWithClose(name string, data []byte, flags FileBufferFlags, close func(data []byte) error) *FileBuffer {
	return &FileBuffer{
		name:     name,
		data:     data,
		readOnly: flags.ReadOnly,
		append:   flags.Append,
		close:    close,
	}
}

// Bytes returns the bytes of the buffer.
func (buf *FileBuffer) Bytes() []byte {
	return buf.data
}

// Size returns the size of buffered file in bytes.
func (buf *FileBuffer) Size() int64 {
	return int64(len(buf.data))
}

// Stat returns a fs.FileInfo with the name and current size of the buffer.
func (buf *FileBuffer) Stat() (fs.FileInfo, error) {
	return fileBufferInfo{name: buf.name, size: buf.Size()}, nil
}

// Read reads up to len(p) bytes into p. It returns the number of bytes
// read (0 <= n <= len(p)) and any error encountered.
func (buf *FileBuffer) Read(p []byte) (n int, err error) {
	if buf.pos >= int64(len(buf.data)) {
		return 0, io.EOF
	}
	n = copy(p, buf.data[buf.pos:])
	buf.pos += int64(n)
	return n, nil
}

// ReadAt reads len(p) bytes into p starting at offset off in the
// underlying input source. It returns the number of bytes
// read (0 <= n <= len(p)) and any error encountered.
func (buf *FileBuffer) ReadAt(p []byte, off int64) (n int, err error) {
	// cannot modify state - see io.ReaderAt
	if off < 0 {
		return 0, errors.New("FileBuffer.ReadAt: negative offset")
	}
	if off >= int64(len(buf.data)) {
		return 0, io.EOF
	}
	n = copy(p, buf.data[off:])
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}

// Seek sets the offset for the next Read or Write to offset,
// interpreted according to whence:
// SeekStart means relative to the start of the file,
// SeekCurrent means relative to the current offset, and
// SeekEnd means relative to the end.
// Seek returns the new offset relative to the start of the
// file and an error, if any.
//
// Seeking to an offset before the start of the file is an error.
func (buf *FileBuffer) Seek(offset int64, whence int) (newPos int64, err error) {
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = buf.pos + offset
	case io.SeekEnd:
		newPos = int64(len(buf.data)) + offset
	default:
		return buf.pos, errors.New("FileBuffer.Seek: invalid whence")
	}
	if newPos < 0 {
		return buf.pos, errors.New("FileBuffer.Seek: negative position")
	}
	buf.pos = newPos
	return newPos, nil
}

// Write writes len(p) bytes from p at the current position,
// or at the end of the buffer in append mode.
func (buf *FileBuffer) Write(p []byte) (n int, err error) {
	if buf.append {
		buf.pos = int64(len(buf.data))
	}
	n, err = buf.WriteAt(p, buf.pos)
	buf.pos += int64(n)
	return n, err
}

// WriteAt writes len(p) bytes from p to the underlying data stream
// at offset off, growing the buffer as necessary.
// Gaps between the old end and off are filled with zeros.
func (buf *FileBuffer) WriteAt(p []byte, off int64) (n int, err error) {
	if buf.readOnly {
		return 0, ErrReadOnly
	}
	if off < 0 {
		return 0, errors.New("FileBuffer.WriteAt: negative offset")
	}
	writeEnd := int(off) + len(p)
	if writeEnd > len(buf.data) {
		if writeEnd > cap(buf.data) {
			newData := make([]byte, writeEnd, writeEnd+writeEnd/4)
			copy(newData, buf.data)
			buf.data = newData
		} else {
			clear(buf.data[len(buf.data):writeEnd])
			buf.data = buf.data[:writeEnd]
		}
	}
	return copy(buf.data[off:], p), nil
}

// Truncate changes the size of the buffer.
// Growing it fills the new bytes with zeros.
// The current position is not changed.
func (buf *FileBuffer) Truncate(size int64) error {
	if buf.readOnly {
		return ErrReadOnly
	}
	if size < 0 {
		return errors.New("FileBuffer.Truncate: negative size")
	}
	if size <= int64(len(buf.data)) {
		buf.data = buf.data[:size]
		return nil
	}
	newData := make([]byte, size)
	copy(newData, buf.data)
	buf.data = newData
	return nil
}

// Close calls the close function passed to NewFileBufferWithClose
// with the final data and will free the internal buffer.
func (buf *FileBuffer) Close() (err error) {
	if buf.close != nil {
		err = buf.close(buf.data)
	}
	buf.data = nil
	buf.pos = 0
	buf.close = nil
	return err
}

type fileBufferInfo struct {
	name string
	size int64
}

func (info fileBufferInfo) Name() string       { return info.name }
func (info fileBufferInfo) Size() int64        { return info.size }
func (info fileBufferInfo) Mode() fs.FileMode  { return 0600 }
func (info fileBufferInfo) ModTime() time.Time { return time.Time{} }
func (info fileBufferInfo) IsDir() bool        { return false }
func (info fileBufferInfo) Sys() any           { return nil }
