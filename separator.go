package splice

import (
	"fmt"
	"io"
	"strings"
)

// LineSeparator is the kind of line terminator
// found at the end of a file or line.
type LineSeparator int

const (
	// LineSeparatorNone means no recognized line terminator
	LineSeparatorNone LineSeparator = iota
	// LF is "\n"
	LF
	// CR is "\r"
	CR
	// CRLF is "\r\n"
	CRLF
)

// String returns "None", "LF", "CR" or "CRLF"
func (sep LineSeparator) String() string {
	switch sep {
	case LineSeparatorNone:
		return "None"
	case LF:
		return "LF"
	case CR:
		return "CR"
	case CRLF:
		return "CRLF"
	}
	return fmt.Sprintf("LineSeparator(%d)", int(sep))
}

// Bytes returns the terminator bytes,
// or nil for LineSeparatorNone.
func (sep LineSeparator) Bytes() []byte {
	switch sep {
	case LF:
		return []byte{'\n'}
	case CR:
		return []byte{'\r'}
	case CRLF:
		return []byte{'\r', '\n'}
	}
	return nil
}

// Len returns the number of terminator bytes
func (sep LineSeparator) Len() int {
	return len(sep.Bytes())
}

// Valid returns if sep is one of the defined constants
func (sep LineSeparator) Valid() bool {
	return sep >= LineSeparatorNone && sep <= CRLF
}

// MarshalText implements encoding.TextMarshaler
func (sep LineSeparator) MarshalText() ([]byte, error) {
	if !sep.Valid() {
		return nil, fmt.Errorf("invalid %s", sep)
	}
	return []byte(sep.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Accepts the names returned by String case insensitive
// and the escaped forms `\n`, `\r` and `\r\n`.
func (sep *LineSeparator) UnmarshalText(text []byte) error {
	s, err := ParseLineSeparator(string(text))
	if err != nil {
		return err
	}
	*sep = s
	return nil
}

// ParseLineSeparator parses the names returned by LineSeparator.String
// case insensitive and the escaped forms `\n`, `\r` and `\r\n`.
func ParseLineSeparator(str string) (LineSeparator, error) {
	switch strings.ToUpper(strings.TrimSpace(str)) {
	case "NONE", "":
		return LineSeparatorNone, nil
	case "LF", `\N`:
		return LF, nil
	case "CR", `\R`:
		return CR, nil
	case "CRLF", `\R\N`:
		return CRLF, nil
	}
	return LineSeparatorNone, fmt.Errorf("invalid line separator %q", str)
}

// TrailingSeparatorOf returns the kind of line separator
// at the end of the first size bytes of r.
//
// An empty file (size == 0) is reported as LF
// because appending a line to it needs no separator.
// At most two bytes are read independent of size.
func TrailingSeparatorOf(r io.ReaderAt, size int64) (LineSeparator, error) {
	switch {
	case size <= 0:
		return LF, nil

	case size == 1:
		var last [1]byte
		if _, err := r.ReadAt(last[:], 0); err != nil && err != io.EOF {
			return LineSeparatorNone, err
		}
		switch last[0] {
		case '\r':
			return CR, nil
		case '\n':
			return LF, nil
		}
		return LineSeparatorNone, nil
	}

	var last [2]byte
	n, err := r.ReadAt(last[:], size-2)
	if n < 2 {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return LineSeparatorNone, err
	}
	switch {
	case last[0] == '\r' && last[1] == '\n':
		return CRLF, nil
	case last[1] == '\r':
		return CR, nil
	case last[1] == '\n':
		return LF, nil
	}
	return LineSeparatorNone, nil
}

// TrailingSeparator returns the kind of line separator
// at the end of the file filePath.
// See TrailingSeparatorOf.
func (e *Engine) TrailingSeparator(filePath string) (LineSeparator, error) {
	file, size, err := e.openForReading(filePath)
	if err != nil {
		return LineSeparatorNone, err
	}
	defer file.Close()

	return TrailingSeparatorOf(file, size)
}
