package sftpfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ungerik/go-splice"
)

// newTestFileSystem connects a client to an in-process
// SFTP server serving the local file system.
func newTestFileSystem(t *testing.T) *FileSystem {
	t.Helper()

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()
	server, err := sftp.NewServer(struct {
		io.Reader
		io.WriteCloser
	}{serverReader, serverWriter})
	require.NoError(t, err)
	go server.Serve()

	client, err := sftp.NewClientPipe(clientReader, clientWriter)
	require.NoError(t, err)

	fileSystem := NewFileSystem(client)
	t.Cleanup(func() {
		fileSystem.Close()
		server.Close()
	})
	return fileSystem
}

func newTestEngine(t *testing.T, bufferSize int) (*splice.Engine, *FileSystem) {
	t.Helper()

	fileSystem := newTestFileSystem(t)
	engine, err := splice.NewEngine(fileSystem, splice.Config{
		BufferSize: bufferSize,
		StagingDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine, fileSystem
}

func TestFileSystem_ReplaceRange(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, 4)
	filePath := filepath.Join(t.TempDir(), "remote.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("0123456789abcdef"), 0o600))

	// in-place
	require.NoError(t, engine.InsertAt(ctx, filePath, 10, []byte("XY")))
	// staged tail
	require.NoError(t, engine.InsertAt(ctx, filePath, 2, []byte("XY")))
	// delete with clamped end
	require.NoError(t, engine.ReplaceRange(ctx, filePath, 18, 100, nil))

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "01XY23456789XYabcd", string(data))
}

func TestFileSystem_Append(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, 0)
	filePath := filepath.Join(t.TempDir(), "append.txt")

	require.NoError(t, engine.Append(ctx, filePath, []byte("Hello")))
	require.NoError(t, engine.Append(ctx, filePath, []byte(" World")))
	require.NoError(t, engine.AppendLines(ctx, filePath, []string{"line"}))

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "Hello World\nline", string(data))
}

func TestFileSystem_ReadLineAt(t *testing.T) {
	engine, _ := newTestEngine(t, 3)
	filePath := filepath.Join(t.TempDir(), "lines.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("first\r\nsecond"), 0o600))

	line, err := engine.ReadLineAt(filePath, 0)
	require.NoError(t, err)
	assert.Equal(t, splice.Line{Text: "first", Offset: 0, Next: 7, Separator: splice.CRLF}, line)

	line, err = engine.ReadLineAt(filePath, line.Next)
	require.NoError(t, err)
	assert.Equal(t, "second", line.Text)

	_, err = engine.ReadLineAt(filePath, line.Next)
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileSystem_errors(t *testing.T) {
	engine, fileSystem := newTestEngine(t, 0)
	missing := filepath.Join(t.TempDir(), "missing.txt")

	_, err := fileSystem.Stat(missing)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, fileSystem.Remove(missing), os.ErrNotExist)

	_, err = engine.ReadLineAt(missing, 0)
	assert.True(t, splice.IsErrDoesNotExist(err))
}

func TestFileSystem_MakeAllDirs(t *testing.T) {
	fileSystem := newTestFileSystem(t)
	dir := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, fileSystem.MakeAllDirs(dir, 0))
	info, err := fileSystem.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	parent, name := fileSystem.DirAndName(dir)
	assert.Equal(t, filepath.Dir(dir), parent)
	assert.Equal(t, "b", name)
}

func Test_prepareDial(t *testing.T) {
	u, username, password, err := prepareDial("demo@example.com:2222", Password("secret"), AcceptAnyHostKey)
	require.NoError(t, err)
	assert.Equal(t, "example.com:2222", u.Host)
	assert.Equal(t, "demo", username)
	assert.Equal(t, "secret", password)

	_, username, _, err = prepareDial("sftp://example.com", UsernameAndPassword("user", "pw"), AcceptAnyHostKey)
	require.NoError(t, err)
	assert.Equal(t, "user", username)

	_, _, _, err = prepareDial("ftp://example.com", Password("secret"), AcceptAnyHostKey)
	assert.Error(t, err, "wrong scheme")
	_, _, _, err = prepareDial("example.com", Password("secret"), AcceptAnyHostKey)
	assert.Error(t, err, "missing username")
	_, _, _, err = prepareDial("demo@example.com", Password(""), AcceptAnyHostKey)
	assert.Error(t, err, "missing password")
	_, _, _, err = prepareDial("demo@example.com", nil, AcceptAnyHostKey)
	assert.Error(t, err, "nil credentialsCallback")
	_, _, _, err = prepareDial("demo@example.com", Password("secret"), nil)
	assert.Error(t, err, "nil hostKeyCallback")
}
