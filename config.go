package splice

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultBufferSize is the default for Config.BufferSize
const DefaultBufferSize = 8 * 1024

// DefaultCharset is the default for Config.Charset
const DefaultCharset = "UTF-8"

// StagingFileExt is the extension of staging files
const StagingFileExt = ".splice"

// stagingDirName is the sub directory of FileSystem.TempDir()
// used when Config.StagingDir is empty.
const stagingDirName = "go-splice"

// Config configures an Engine.
// Zero values are replaced by the defaults from DefaultConfig.
type Config struct {
	// BufferSize is the size of copy and read buffers
	// and the threshold up to which head and tail bytes
	// of a splice are held in memory.
	BufferSize int `yaml:"bufferSize"`

	// Charset is the IANA name of the character set
	// used to encode and decode lines.
	// It must be ASCII compatible for line separators.
	Charset string `yaml:"charset"`

	// CreateParentDirs creates missing parent directories
	// of files that are written.
	CreateParentDirs bool `yaml:"createParentDirs"`

	// DefaultSeparator is used for line operations on files
	// that don't end with a line separator.
	DefaultSeparator LineSeparator `yaml:"defaultSeparator"`

	// StagingDir is the directory for staging files.
	// Defaults to a sub directory of FileSystem.TempDir().
	StagingDir string `yaml:"stagingDir"`

	// Permissions for created files, zero means
	// the default of the FileSystem.
	Permissions Permissions `yaml:"-"`

	// Logger is optional, nil disables logging.
	Logger Logger `yaml:"-"`
}

// DefaultConfig returns the default Config
func DefaultConfig() Config {
	return Config{
		BufferSize:       DefaultBufferSize,
		Charset:          DefaultCharset,
		DefaultSeparator: LF,
	}
}

// withDefaults returns a copy of config
// with zero values replaced by defaults
func (config Config) withDefaults() Config {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.Charset == "" {
		config.Charset = defaults.Charset
	}
	if config.DefaultSeparator == LineSeparatorNone {
		config.DefaultSeparator = defaults.DefaultSeparator
	}
	if config.Logger == nil {
		config.Logger = nopLogger{}
	}
	return config
}

// Validate returns an error if the config can't be used by an Engine.
func (config Config) Validate() error {
	if !config.DefaultSeparator.Valid() {
		return fmt.Errorf("invalid default separator %s", config.DefaultSeparator)
	}
	_, err := lookupCharset(config.Charset)
	return err
}

// lookupCharset returns the encoding for an IANA charset name,
// or nil for UTF-8 and ASCII where no conversion is needed.
func lookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(name) {
	case "", "UTF-8", "UTF8", "US-ASCII", "ASCII":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", name)
	}
	// Line separators are scanned as raw bytes
	crlf, err := enc.NewEncoder().Bytes([]byte("\r\n"))
	if err != nil || !bytes.Equal(crlf, []byte("\r\n")) {
		return nil, fmt.Errorf("charset %q is not ASCII compatible", name)
	}
	return enc, nil
}
