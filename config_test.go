package splice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_yaml(t *testing.T) {
	var config Config
	err := yaml.Unmarshal([]byte(`
bufferSize: 16384
charset: windows-1252
createParentDirs: true
defaultSeparator: CRLF
stagingDir: /var/tmp/splice
`), &config)
	require.NoError(t, err)
	assert.Equal(t, 16384, config.BufferSize)
	assert.Equal(t, "windows-1252", config.Charset)
	assert.True(t, config.CreateParentDirs)
	assert.Equal(t, CRLF, config.DefaultSeparator)
	assert.Equal(t, "/var/tmp/splice", config.StagingDir)
	assert.NoError(t, config.Validate())

	err = yaml.Unmarshal([]byte(`defaultSeparator: TAB`), &config)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	config := DefaultConfig()
	config.DefaultSeparator = LineSeparator(42)
	assert.Error(t, config.Validate())

	config = DefaultConfig()
	config.Charset = "UTF-16"
	assert.Error(t, config.Validate(), "not ASCII compatible")

	config.Charset = "no-such-charset"
	assert.Error(t, config.Validate())
}

func Test_lookupCharset(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8", "US-ASCII"} {
		enc, err := lookupCharset(name)
		assert.NoError(t, err, name)
		assert.Nil(t, enc, name)
	}
	for _, name := range []string{"ISO-8859-1", "windows-1252", "ISO-8859-15"} {
		enc, err := lookupCharset(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}
}

func TestPermissions(t *testing.T) {
	assert.True(t, UserReadWrite.CanUserWrite())
	assert.False(t, UserRead.CanUserWrite())
	assert.True(t, AllRead.CanUserRead())
	assert.Equal(t, UserReadWrite, JoinPermissions(0, UserReadWrite))
	assert.Equal(t, UserRead, JoinPermissions(UserRead, UserReadWrite))
	assert.Equal(t, UserAndGroupReadWrite, PermissionsFromFileMode(UserAndGroupReadWrite.FileMode(true)))
	assert.True(t, UserRead.FileMode(true).IsDir())
}
