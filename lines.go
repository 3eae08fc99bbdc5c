package splice

import (
	"context"
	"errors"
	"os"
)

// AppendLine appends line to filePath.
// See AppendLines.
func (e *Engine) AppendLine(ctx context.Context, filePath, line string, sep ...LineSeparator) error {
	return e.AppendLines(ctx, filePath, []string{line}, sep...)
}

// AppendLines appends lines joined by a line separator to filePath,
// creating the file if it does not exist.
//
// If the file is not empty and does not end with a line separator,
// then a separator is written before the first line.
// No separator is written after the last line.
//
// The separator is the optional sep argument,
// or the trailing separator of the file if it has one,
// or Config.DefaultSeparator.
// Lines are encoded with Config.Charset.
func (e *Engine) AppendLines(ctx context.Context, filePath string, lines []string, sep ...LineSeparator) (err error) {
	if err = ctx.Err(); err != nil || len(lines) == 0 {
		return err
	}
	file, err := e.openForWriting(filePath, os.O_RDWR|os.O_CREATE)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	size, trailing, separator, err := e.probeSeparator(file, sep)
	if err != nil {
		return err
	}
	var payload []byte
	if trailing == LineSeparatorNone {
		payload = append(payload, separator.Bytes()...)
	}
	joined, err := e.joinLines(lines, separator)
	if err != nil {
		return err
	}
	payload = append(payload, joined...)

	return e.spliceFile(ctx, filePath, file, size, size, payload)
}

// InsertLines inserts lines joined by a line separator
// into filePath before the byte at offset.
// The inserted lines are followed by a separator
// so that the content at offset continues on its own line.
//
// An offset at or after the end of the file works like AppendLines.
// The separator is chosen like in AppendLines.
func (e *Engine) InsertLines(ctx context.Context, filePath string, offset int64, lines []string, sep ...LineSeparator) (err error) {
	if offset < 0 {
		return NewErrInvalidRange(offset, offset)
	}
	if err = ctx.Err(); err != nil || len(lines) == 0 {
		return err
	}
	file, err := e.openForWriting(filePath, os.O_RDWR|os.O_CREATE)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	size, trailing, separator, err := e.probeSeparator(file, sep)
	if err != nil {
		return err
	}
	joined, err := e.joinLines(lines, separator)
	if err != nil {
		return err
	}
	var payload []byte
	if offset >= size {
		if trailing == LineSeparatorNone {
			payload = append(payload, separator.Bytes()...)
		}
		payload = append(payload, joined...)
		return e.spliceFile(ctx, filePath, file, size, size, payload)
	}
	payload = append(joined, separator.Bytes()...)
	return e.spliceFile(ctx, filePath, file, offset, offset, payload)
}

// probeSeparator returns the size and trailing separator of file
// and the separator to use for new lines.
func (e *Engine) probeSeparator(file FileHandle, sep []LineSeparator) (size int64, trailing, separator LineSeparator, err error) {
	info, err := file.Stat()
	if err != nil {
		return 0, LineSeparatorNone, LineSeparatorNone, err
	}
	size = info.Size()
	trailing, err = TrailingSeparatorOf(file, size)
	if err != nil {
		return 0, LineSeparatorNone, LineSeparatorNone, err
	}
	switch {
	case len(sep) > 0 && sep[0] != LineSeparatorNone:
		separator = sep[0]
	case size > 0 && trailing != LineSeparatorNone:
		separator = trailing
	default:
		separator = e.config.DefaultSeparator
	}
	return size, trailing, separator, nil
}

func (e *Engine) joinLines(lines []string, separator LineSeparator) ([]byte, error) {
	var joined []byte
	for i, line := range lines {
		if i > 0 {
			joined = append(joined, separator.Bytes()...)
		}
		encoded, err := e.encodeString(line)
		if err != nil {
			return nil, err
		}
		joined = append(joined, encoded...)
	}
	return joined, nil
}
