package splice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllLines(t *testing.T, content string, offset int64, bufferSize int) []Line {
	t.Helper()
	var lines []Line
	reader := NewLineReader(strings.NewReader(content), offset, bufferSize)
	for {
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		offset  int64
		want    []Line
	}{
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
		{
			name:    "LF lines without trailing separator",
			content: "line1\nline2\nline3",
			want: []Line{
				{Text: "line1", Offset: 0, Next: 6, Separator: LF},
				{Text: "line2", Offset: 6, Next: 12, Separator: LF},
				{Text: "line3", Offset: 12, Next: 17, Separator: LineSeparatorNone},
			},
		},
		{
			name:    "start in the middle of a line",
			content: "line1\nline2\n",
			offset:  2,
			want: []Line{
				{Text: "ne1", Offset: 2, Next: 6, Separator: LF},
				{Text: "line2", Offset: 6, Next: 12, Separator: LF},
			},
		},
		{
			name:    "CRLF crossing the buffer boundary",
			content: "abcd\r\nxyz",
			want: []Line{
				{Text: "abcd", Offset: 0, Next: 6, Separator: CRLF},
				{Text: "xyz", Offset: 6, Next: 9, Separator: LineSeparatorNone},
			},
		},
		{
			name:    "bare CR",
			content: "ab\rcd",
			want: []Line{
				{Text: "ab", Offset: 0, Next: 3, Separator: CR},
				{Text: "cd", Offset: 3, Next: 5, Separator: LineSeparatorNone},
			},
		},
		{
			name:    "CR at end of input",
			content: "ab\r",
			want: []Line{
				{Text: "ab", Offset: 0, Next: 3, Separator: CR},
			},
		},
		{
			name:    "CR followed by CRLF",
			content: "a\r\r\nb",
			want: []Line{
				{Text: "a", Offset: 0, Next: 2, Separator: CR},
				{Text: "", Offset: 2, Next: 4, Separator: CRLF},
				{Text: "b", Offset: 4, Next: 5, Separator: LineSeparatorNone},
			},
		},
		{
			name:    "empty lines",
			content: "\n\n",
			want: []Line{
				{Text: "", Offset: 0, Next: 1, Separator: LF},
				{Text: "", Offset: 1, Next: 2, Separator: LF},
			},
		},
		{
			name:    "line longer than buffer",
			content: "a line much longer than five bytes\nnext",
			want: []Line{
				{Text: "a line much longer than five bytes", Offset: 0, Next: 35, Separator: LF},
				{Text: "next", Offset: 35, Next: 39, Separator: LineSeparatorNone},
			},
		},
		{
			name:    "offset at end",
			content: "abc",
			offset:  3,
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, bufferSize := range []int{1, 2, 5, DefaultBufferSize} {
				assert.Equal(t, tt.want, readAllLines(t, tt.content, tt.offset, bufferSize), "buffer size %d", bufferSize)
			}
		})
	}
}

func TestLineReader_positionsReader(t *testing.T) {
	r := strings.NewReader("first\r\nsecond\n")
	line, err := ReadLine(r, 0, 64)
	require.NoError(t, err)
	assert.Equal(t, "first", line.Text)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, line.Next, pos, "reader positioned after separator")

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(rest))
}

func TestReadLine_negativeOffset(t *testing.T) {
	_, err := ReadLine(strings.NewReader("abc"), -1, 0)
	assert.True(t, IsErrInvalidRange(err))
}

func TestEngine_ReadLineAt(t *testing.T) {
	for _, te := range newTestEngines(t, Config{BufferSize: 5}) {
		t.Run(te.name, func(t *testing.T) {
			filePath := te.path("lines.txt")
			writeTestFile(t, te.engine, filePath, "line1\nline2\r\nline3")

			line, err := te.engine.ReadLineAt(filePath, 0)
			require.NoError(t, err)
			assert.Equal(t, Line{Text: "line1", Offset: 0, Next: 6, Separator: LF}, line)

			line, err = te.engine.ReadLineAt(filePath, line.Next)
			require.NoError(t, err)
			assert.Equal(t, Line{Text: "line2", Offset: 6, Next: 13, Separator: CRLF}, line)

			line, err = te.engine.ReadLineAt(filePath, line.Next)
			require.NoError(t, err)
			assert.Equal(t, Line{Text: "line3", Offset: 13, Next: 18, Separator: LineSeparatorNone}, line)

			_, err = te.engine.ReadLineAt(filePath, line.Next)
			assert.ErrorIs(t, err, io.EOF)
			_, err = te.engine.ReadLineAt(filePath, 1000)
			assert.ErrorIs(t, err, io.EOF)

			_, err = te.engine.ReadLineAt(filePath, -1)
			assert.True(t, IsErrInvalidRange(err))

			_, err = te.engine.ReadLineAt(te.path("missing.txt"), 0)
			assert.True(t, IsErrDoesNotExist(err))
		})
	}
}

func TestEngine_ReadLineAt_charset(t *testing.T) {
	memFS := NewMemFileSystem()
	engine, err := NewEngine(memFS, Config{Charset: "ISO-8859-1"})
	require.NoError(t, err)
	defer engine.Close()

	require.NoError(t, memFS.WriteFile("/latin1.txt", []byte("caf\xe9\nna\xefve")))

	line, err := engine.ReadLineAt("/latin1.txt", 0)
	require.NoError(t, err)
	assert.Equal(t, "café", line.Text)
	assert.Equal(t, int64(5), line.Next, "offsets count encoded bytes")

	line, err = engine.ReadLineAt("/latin1.txt", line.Next)
	require.NoError(t, err)
	assert.Equal(t, "naïve", line.Text)
}

func TestEngine_ForEachLine(t *testing.T) {
	ctx := context.Background()
	for _, te := range newTestEngines(t, Config{BufferSize: 2}) {
		t.Run(te.name, func(t *testing.T) {
			filePath := te.path("foreach.txt")
			writeTestFile(t, te.engine, filePath, "a\r\nbb\rccc\n")

			var texts []string
			err := te.engine.ForEachLine(ctx, filePath, 0, func(line Line) error {
				texts = append(texts, line.Text)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "bb", "ccc"}, texts)

			texts = nil
			err = te.engine.ForEachLine(ctx, filePath, 3, func(line Line) error {
				texts = append(texts, line.Text)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"bb", "ccc"}, texts)

			errStop := errors.New("stop")
			calls := 0
			err = te.engine.ForEachLine(ctx, filePath, 0, func(Line) error {
				calls++
				return errStop
			})
			assert.ErrorIs(t, err, errStop)
			assert.Equal(t, 1, calls)

			canceled, cancel := context.WithCancel(ctx)
			cancel()
			err = te.engine.ForEachLine(canceled, filePath, 0, func(Line) error { return nil })
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}
