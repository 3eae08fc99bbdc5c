package splice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// Strategy is the method used to apply a splice to a file.
// The strategy never changes the resulting file content,
// only how much memory and staging storage is used.
type Strategy int

const (
	// StrategyAppend writes the payload at the end of the file
	StrategyAppend Strategy = iota
	// StrategyOverwrite writes a payload with the same length
	// as the replaced range in place
	StrategyOverwrite
	// StrategyInMemory reads head and tail into memory
	// and rewrites the whole file
	StrategyInMemory
	// StrategyStagedTail reads the head into memory,
	// stages the tail and rewrites the whole file
	StrategyStagedTail
	// StrategyInPlace stages the tail and writes
	// the payload and the tail starting at the splice offset
	StrategyInPlace
)

func (s Strategy) String() string {
	switch s {
	case StrategyAppend:
		return "append"
	case StrategyOverwrite:
		return "overwrite"
	case StrategyInMemory:
		return "in-memory"
	case StrategyStagedTail:
		return "staged-tail"
	case StrategyInPlace:
		return "in-place"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// spliceRange is a normalized edit of a file
type spliceRange struct {
	fileLen    int64
	start, end int64
	payload    []byte
}

func (r *spliceRange) headLen() int64 { return r.start }
func (r *spliceRange) tailLen() int64 { return r.fileLen - r.end }
func (r *spliceRange) newLen() int64  { return r.start + int64(len(r.payload)) + r.tailLen() }

// normalizeRange swaps reversed ranges and clamps them to fileLen.
// A start at or after the end of the file becomes an append.
func normalizeRange(fileLen, start, end int64, payload []byte) (spliceRange, error) {
	if start < 0 || end < 0 {
		return spliceRange{}, NewErrInvalidRange(start, end)
	}
	if start > end {
		start, end = end, start
	}
	start = min(start, fileLen)
	end = min(end, fileLen)
	return spliceRange{fileLen: fileLen, start: start, end: end, payload: payload}, nil
}

// selectStrategy chooses the strategy with the lowest peak memory
// for threshold bytes of in-memory buffering.
func selectStrategy(r spliceRange, threshold int64) Strategy {
	switch {
	case r.start >= r.fileLen:
		return StrategyAppend
	case int64(len(r.payload)) == r.end-r.start:
		return StrategyOverwrite
	case r.headLen() > threshold:
		return StrategyInPlace
	case r.tailLen() > threshold:
		return StrategyStagedTail
	default:
		return StrategyInMemory
	}
}

// Append writes data at the end of filePath.
// The file is created if it does not exist.
func (e *Engine) Append(ctx context.Context, filePath string, data []byte) (err error) {
	if err = ctx.Err(); err != nil {
		return err
	}
	file, err := e.openForWriting(filePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	n, err := file.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	return err
}

// InsertAt inserts data into filePath before the byte at offset.
// An offset at or after the end of the file appends data.
// The file is created if it does not exist.
func (e *Engine) InsertAt(ctx context.Context, filePath string, offset int64, data []byte) error {
	return e.ReplaceRange(ctx, filePath, offset, offset, data)
}

// ReplaceRange replaces the bytes [start, end) of filePath with data.
//
// Reversed ranges are swapped, an end after the end of the file
// is clamped to the file length and a start at or after the end
// of the file appends data. An empty data slice deletes the range.
// Negative offsets return an *ErrInvalidRange.
//
// At most Config.BufferSize bytes of the file are held in memory,
// bigger parts of the file after the range are moved via a staging file.
// The context is only checked before the file is modified,
// once the file was modified the splice runs to its end.
//
// If an error happens after the file was partially modified,
// a *PartialSpliceError is returned and the file content is inconsistent.
func (e *Engine) ReplaceRange(ctx context.Context, filePath string, start, end int64, data []byte) (err error) {
	if start < 0 || end < 0 {
		return NewErrInvalidRange(start, end)
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	file, err := e.openForWriting(filePath, os.O_RDWR|os.O_CREATE)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	return e.spliceFile(ctx, filePath, file, start, end, data)
}

// spliceFile replaces [start, end) of the open file with payload.
func (e *Engine) spliceFile(ctx context.Context, filePath string, file FileHandle, start, end int64, payload []byte) error {
	info, err := file.Stat()
	if err != nil {
		return err
	}
	r, err := normalizeRange(info.Size(), start, end, payload)
	if err != nil {
		return err
	}

	strategy := selectStrategy(r, int64(e.config.BufferSize))
	e.config.Logger.Printf(
		"splice %s: %s strategy for [%d, %d) of %d bytes with %d bytes payload",
		filePath, strategy, r.start, r.end, r.fileLen, len(r.payload),
	)

	var partial bool
	switch strategy {
	case StrategyAppend:
		partial, err = e.spliceAppend(file, r)
	case StrategyOverwrite:
		partial, err = e.spliceOverwrite(file, r)
	case StrategyInMemory:
		partial, err = e.spliceInMemory(file, r)
	case StrategyStagedTail:
		partial, err = e.spliceStagedTail(ctx, file, r)
	case StrategyInPlace:
		partial, err = e.spliceInPlace(ctx, file, r)
	default:
		return fmt.Errorf("unknown splice strategy %s", strategy)
	}
	if err != nil && partial {
		return &PartialSpliceError{path: filePath, strategy: strategy, err: err}
	}
	return err
}

func (e *Engine) spliceAppend(file FileHandle, r spliceRange) (partial bool, err error) {
	return writeAt(file, r.payload, r.fileLen)
}

func (e *Engine) spliceOverwrite(file FileHandle, r spliceRange) (partial bool, err error) {
	return writeAt(file, r.payload, r.start)
}

// spliceInMemory rewrites the file as head + payload + tail
// with head and tail read into memory.
func (e *Engine) spliceInMemory(file FileHandle, r spliceRange) (partial bool, err error) {
	content := make([]byte, r.headLen(), r.newLen())
	if err = readAt(file, content, 0); err != nil {
		return false, err
	}
	content = append(content, r.payload...)
	content = content[:r.newLen()]
	if err = readAt(file, content[r.start+int64(len(r.payload)):], r.end); err != nil {
		return false, err
	}

	if partial, err = writeAt(file, content, 0); err != nil {
		return partial, err
	}
	return true, file.Truncate(r.newLen())
}

// spliceStagedTail reads the head into memory, stages the tail,
// then rewrites the file as head + payload + staged tail.
func (e *Engine) spliceStagedTail(ctx context.Context, file FileHandle, r spliceRange) (partial bool, err error) {
	head := make([]byte, r.headLen())
	if err = readAt(file, head, 0); err != nil {
		return false, err
	}
	staging, err := e.stageTail(ctx, file, r)
	if err != nil {
		return false, err
	}
	defer e.removeStaging(staging)

	// From here on the file gets modified
	if partial, err = writeAt(file, head, 0); err != nil {
		return partial, err
	}
	if _, err = writeAt(file, r.payload, r.start); err != nil {
		return true, err
	}
	return true, e.drainStaging(ctx, staging, file, r)
}

// spliceInPlace stages the tail, then writes the payload
// and the staged tail starting at the splice offset.
// The tail must be staged before the payload is written
// because a payload longer than the replaced range
// overwrites the beginning of the tail.
func (e *Engine) spliceInPlace(ctx context.Context, file FileHandle, r spliceRange) (partial bool, err error) {
	staging, err := e.stageTail(ctx, file, r)
	if err != nil {
		return false, err
	}
	defer e.removeStaging(staging)

	// From here on the file gets modified
	if partial, err = writeAt(file, r.payload, r.start); err != nil {
		return partial, err
	}
	return true, e.drainStaging(ctx, staging, file, r)
}

// stageTail copies the bytes [r.end, r.fileLen) of file
// into a new staging file.
func (e *Engine) stageTail(ctx context.Context, file FileHandle, r spliceRange) (*StagingFile, error) {
	staging, err := e.CreateStagingFile(true)
	if err != nil {
		return nil, err
	}
	tail := io.NewSectionReader(file, r.end, r.tailLen())
	n, err := CopyBuffer(ctx, staging, tail, r.tailLen(), e.newBuffer())
	if err == nil && n != r.tailLen() {
		err = fmt.Errorf("staged %d of %d tail bytes: %w", n, r.tailLen(), io.ErrUnexpectedEOF)
	}
	if err == nil {
		_, err = staging.Seek(0, io.SeekStart)
	}
	if err != nil {
		e.removeStaging(staging)
		return nil, err
	}
	return staging, nil
}

// drainStaging copies the staged tail back into file
// after the payload and truncates the file to its new length.
func (e *Engine) drainStaging(ctx context.Context, staging *StagingFile, file FileHandle, r spliceRange) error {
	// The file is already modified, stopping now would leave it inconsistent
	ctx = context.WithoutCancel(ctx)

	dst := io.NewOffsetWriter(file, r.start+int64(len(r.payload)))
	n, err := CopyBuffer(ctx, dst, staging, r.tailLen(), e.newBuffer())
	if err != nil {
		return err
	}
	if n != r.tailLen() {
		return fmt.Errorf("drained %d of %d staged bytes: %w", n, r.tailLen(), io.ErrUnexpectedEOF)
	}
	return file.Truncate(r.newLen())
}

// readAt fills buf from file starting at offset.
func readAt(file io.ReaderAt, buf []byte, offset int64) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := file.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// writeAt writes data to file at offset.
// partial is true if any bytes were written before an error.
func writeAt(file io.WriterAt, data []byte, offset int64) (partial bool, err error) {
	if len(data) == 0 {
		return false, nil
	}
	n, err := file.WriteAt(data, offset)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	return n > 0, err
}
