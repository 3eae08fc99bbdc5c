package splice

import (
	"context"
	"errors"
	"io"
)

// Line is a line read by a LineReader
type Line struct {
	// Text of the line without the separator
	Text string
	// Offset of the first byte of the line
	Offset int64
	// Next is the offset of the first byte after the separator,
	// which is the Offset of the following line.
	Next int64
	// Separator that terminated the line,
	// LineSeparatorNone for an unterminated last line.
	Separator LineSeparator
}

type scanState int

const (
	scanning scanState = iota
	sawCR
	done
)

// LineReader reads lines from an io.ReadSeeker
// starting at an arbitrary byte offset.
// Lines can be terminated by "\n", "\r" or "\r\n".
//
// After every ReadLine the position of the underlying
// io.ReadSeeker is exactly after the returned line's separator.
type LineReader struct {
	r   io.ReadSeeker
	pos int64
	buf []byte
}

// NewLineReader returns a LineReader that starts reading
// at offset using chunks of bufferSize bytes.
// A bufferSize <= 0 uses DefaultBufferSize.
func NewLineReader(r io.ReadSeeker, offset int64, bufferSize int) *LineReader {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &LineReader{r: r, pos: offset, buf: make([]byte, bufferSize)}
}

// Offset returns the offset of the next line to read
func (lr *LineReader) Offset() int64 {
	return lr.pos
}

// ReadLine returns the next line.
// An unterminated last line is returned with LineSeparatorNone.
// io.EOF is returned if the reader is at the end
// of the input without any bytes left to read.
func (lr *LineReader) ReadLine() (Line, error) {
	if lr.pos < 0 {
		return Line{}, NewErrInvalidRange(lr.pos, lr.pos)
	}
	if _, err := lr.r.Seek(lr.pos, io.SeekStart); err != nil {
		return Line{}, err
	}

	var (
		text     []byte
		consumed int64 // including separator bytes
		state    = scanning
		sep      = LineSeparatorNone
	)
	for state != done {
		n, readErr := lr.r.Read(lr.buf)
		for i := 0; i < n && state != done; i++ {
			b := lr.buf[i]
			switch {
			case state == sawCR && b == '\n':
				sep, state = CRLF, done
				consumed++
			case state == sawCR:
				// bare CR, b belongs to the next line
				sep, state = CR, done
			case b == '\n':
				sep, state = LF, done
				consumed++
			case b == '\r':
				state = sawCR
				consumed++
			default:
				text = append(text, b)
				consumed++
			}
		}
		if state == done {
			break
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return Line{}, readErr
			}
			if consumed == 0 {
				return Line{}, io.EOF
			}
			if state == sawCR {
				// CR was the last byte of the input
				sep = CR
			}
			break
		}
	}

	line := Line{
		Text:      string(text),
		Offset:    lr.pos,
		Next:      lr.pos + consumed,
		Separator: sep,
	}
	// The last chunk may have been read past the separator
	if _, err := lr.r.Seek(line.Next, io.SeekStart); err != nil {
		return Line{}, err
	}
	lr.pos = line.Next
	return line, nil
}

// ReadLine reads the line starting at offset from r
// using chunks of bufferSize bytes.
// io.EOF is returned if offset is at or after the end of r.
// See LineReader.ReadLine.
func ReadLine(r io.ReadSeeker, offset int64, bufferSize int) (Line, error) {
	return NewLineReader(r, offset, bufferSize).ReadLine()
}

// ReadLineAt reads the line starting at offset from filePath
// and decodes it with Config.Charset.
// io.EOF is returned if offset is at or after the end of the file.
func (e *Engine) ReadLineAt(filePath string, offset int64) (Line, error) {
	if offset < 0 {
		return Line{}, NewErrInvalidRange(offset, offset)
	}
	file, size, err := e.openForReading(filePath)
	if err != nil {
		return Line{}, err
	}
	defer file.Close()

	if offset >= size {
		return Line{}, io.EOF
	}
	line, err := ReadLine(file, offset, e.config.BufferSize)
	if err != nil {
		return Line{}, err
	}
	line.Text, err = e.decodeBytes([]byte(line.Text))
	return line, err
}

// ForEachLine calls callback for every line of filePath
// starting at offset until the end of the file,
// or until callback returns an error which will be returned,
// or until ctx is canceled.
func (e *Engine) ForEachLine(ctx context.Context, filePath string, offset int64, callback func(Line) error) error {
	if offset < 0 {
		return NewErrInvalidRange(offset, offset)
	}
	file, _, err := e.openForReading(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := NewLineReader(file, offset, e.config.BufferSize)
	for {
		if err = ctx.Err(); err != nil {
			return err
		}
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line.Text, err = e.decodeBytes([]byte(line.Text))
		if err != nil {
			return err
		}
		if err = callback(line); err != nil {
			return err
		}
	}
}
