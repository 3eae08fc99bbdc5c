package splice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingSeparatorOf(t *testing.T) {
	tests := []struct {
		content string
		want    LineSeparator
	}{
		{content: "", want: LF},
		{content: "\n", want: LF},
		{content: "\r", want: CR},
		{content: "x", want: LineSeparatorNone},
		{content: "\r\n", want: CRLF},
		{content: "abc\n", want: LF},
		{content: "abc\r", want: CR},
		{content: "abc\r\n", want: CRLF},
		{content: "abc", want: LineSeparatorNone},
		{content: "abc\n\r", want: CR},
		{content: "\n\n", want: LF},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.want.String()+" "+tt.content, "\r", `\r`), func(t *testing.T) {
			got, err := TrailingSeparatorOf(strings.NewReader(tt.content), int64(len(tt.content)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrailingSeparatorOf_sizeBeyondData(t *testing.T) {
	_, err := TrailingSeparatorOf(strings.NewReader("ab"), 10)
	assert.Error(t, err)
}

func TestEngine_TrailingSeparator(t *testing.T) {
	for _, te := range newTestEngines(t, DefaultConfig()) {
		t.Run(te.name, func(t *testing.T) {
			filePath := te.path("trailing.txt")
			writeTestFile(t, te.engine, filePath, "windows\r\n")
			sep, err := te.engine.TrailingSeparator(filePath)
			require.NoError(t, err)
			assert.Equal(t, CRLF, sep)

			_, err = te.engine.TrailingSeparator(te.path("missing.txt"))
			assert.True(t, IsErrDoesNotExist(err))
		})
	}
}

func TestParseLineSeparator(t *testing.T) {
	tests := []struct {
		str     string
		want    LineSeparator
		wantErr bool
	}{
		{str: "LF", want: LF},
		{str: "lf", want: LF},
		{str: `\n`, want: LF},
		{str: "CR", want: CR},
		{str: `\r`, want: CR},
		{str: "crlf", want: CRLF},
		{str: `\r\n`, want: CRLF},
		{str: "None", want: LineSeparatorNone},
		{str: "", want: LineSeparatorNone},
		{str: "tab", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			got, err := ParseLineSeparator(tt.str)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLineSeparator(t *testing.T) {
	assert.Equal(t, "\r\n", string(CRLF.Bytes()))
	assert.Equal(t, 2, CRLF.Len())
	assert.Equal(t, 1, LF.Len())
	assert.Equal(t, 0, LineSeparatorNone.Len())
	assert.False(t, LineSeparator(99).Valid())

	text, err := CR.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "CR", string(text))
	_, err = LineSeparator(-1).MarshalText()
	assert.Error(t, err)

	var sep LineSeparator
	require.NoError(t, sep.UnmarshalText([]byte("crlf")))
	assert.Equal(t, CRLF, sep)
	assert.Error(t, sep.UnmarshalText([]byte("invalid")))
}
