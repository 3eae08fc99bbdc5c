// Package sftpfs implements splice.FileSystem for files on an SFTP server
// so that they can be spliced without downloading them.
package sftpfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/ungerik/go-splice"
	"github.com/ungerik/go-splice/fsimpl"
)

const Separator = "/"

var _ splice.FileSystem = new(FileSystem)

// CredentialsCallback is called by Dial to get the username and password for a SFTP connection.
type CredentialsCallback func(*url.URL) (username, password string, err error)

// Password returns a CredentialsCallback that always returns
// the provided password together with the username
// from the URL that is passed to the callback.
func Password(password string) CredentialsCallback {
	return func(u *url.URL) (string, string, error) {
		return u.User.Username(), password, nil
	}
}

// UsernameAndPassword returns a CredentialsCallback that always returns
// the provided username and password.
func UsernameAndPassword(username, password string) CredentialsCallback {
	return func(u *url.URL) (string, string, error) {
		return username, password, nil
	}
}

// AcceptAnyHostKey can be passed as hostKeyCallback to Dial
// to accept any SSH public key from a remote host.
func AcceptAnyHostKey(hostname string, remote net.Addr, key ssh.PublicKey) error {
	return nil
}

// FileSystem implements splice.FileSystem using an SFTP client.
// Paths are absolute paths on the server.
type FileSystem struct {
	client *sftp.Client
	host   string
}

// NewFileSystem returns a FileSystem using an already connected client.
// Closing the FileSystem closes the client.
func NewFileSystem(client *sftp.Client) *FileSystem {
	return &FileSystem{client: client}
}

// Dial connects to an SFTP server and returns it as FileSystem.
//
// The passed address can be a URL with scheme `sftp:` or just a host name.
// If no port is provided in the address, then port 22 will be used.
// The address can contain a username.
//
// Connection errors are retried MaxConnectRetries times
// with exponential backoff starting at InitialRetryBackoff.
//
// The connLogger parameter is optional (can be nil) and will be used
// to log connection events like dialing and retrying.
func Dial(ctx context.Context, address string, credentialsCallback CredentialsCallback, hostKeyCallback ssh.HostKeyCallback, connLogger splice.Logger) (*FileSystem, error) {
	u, username, password, err := prepareDial(address, credentialsCallback, hostKeyCallback)
	if err != nil {
		return nil, err
	}

	backoff := InitialRetryBackoff
	for attempt := 0; ; attempt++ {
		client, err := dial(ctx, u.Host, username, password, hostKeyCallback, connLogger)
		if err == nil {
			return &FileSystem{client: client, host: u.Host}, nil
		}
		if attempt >= MaxConnectRetries || !isConnectionError(err) {
			return nil, err
		}
		if connLogger != nil {
			connLogger.Printf("Waiting %s before retry attempt %d of %d of SFTP connection to %s: %s", backoff, attempt+1, MaxConnectRetries, u.Host, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

func prepareDial(address string, credentialsCallback CredentialsCallback, hostKeyCallback ssh.HostKeyCallback) (u *url.URL, username, password string, err error) {
	if !strings.HasPrefix(address, "sftp://") {
		if strings.Contains(address, "://") {
			return nil, "", "", fmt.Errorf("not an SFTP URL scheme: %s", address)
		}
		address = "sftp://" + address
	}
	if credentialsCallback == nil {
		return nil, "", "", errors.New("nil credentialsCallback")
	}
	if hostKeyCallback == nil {
		return nil, "", "", errors.New("nil hostKeyCallback")
	}
	u, err = url.Parse(address)
	if err != nil {
		return nil, "", "", err
	}
	if u.Host == "" {
		return nil, "", "", fmt.Errorf("missing SFTP host in: %s", address)
	}

	username, password, err = credentialsCallback(u)
	if err != nil {
		return nil, "", "", err
	}
	if username == "" {
		return nil, "", "", fmt.Errorf("missing SFTP username for: %s", address)
	}
	if password == "" {
		return nil, "", "", fmt.Errorf("missing SFTP password for: %s", address)
	}
	return u, username, password, nil
}

func dial(ctx context.Context, host, user, password string, hostKeyCallback ssh.HostKeyCallback, connLogger splice.Logger) (*sftp.Client, error) {
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
		},
		HostKeyCallback: hostKeyCallback,
	}
	d := net.Dialer{}
	if !strings.ContainsRune(host, ':') {
		host += ":22"
	}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, host, config)
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	if connLogger != nil {
		connLogger.Printf("Dialed SFTP connection to %s with user %s", host, user)
	}
	return sftp.NewClient(ssh.NewClient(sshConn, chans, reqs))
}

// isConnectionError returns true if the error indicates a connection problem
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection timed out") ||
		strings.Contains(errStr, "network is unreachable") ||
		strings.Contains(errStr, "no route to host")
}

// convertError maps SFTP status codes to io/fs errors
func convertError(op, filePath string, err error) error {
	if err == nil {
		return nil
	}
	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.FxCode() {
		case sftp.ErrSSHFxNoSuchFile:
			return &iofs.PathError{Op: op, Path: filePath, Err: iofs.ErrNotExist}
		case sftp.ErrSSHFxPermissionDenied:
			return &iofs.PathError{Op: op, Path: filePath, Err: iofs.ErrPermission}
		}
	}
	return err
}

func (f *FileSystem) Name() string {
	if f.host == "" {
		return "SFTP file system"
	}
	return "SFTP file system " + f.host
}

func (*FileSystem) Separator() string {
	return Separator
}

func (*FileSystem) TempDir() string {
	return DefaultTempDir
}

func (*FileSystem) JoinCleanPath(uriParts ...string) string {
	return fsimpl.JoinCleanPath(uriParts...)
}

func (*FileSystem) DirAndName(filePath string) (dir, name string) {
	return fsimpl.DirAndName(fsimpl.JoinCleanPath(filePath), 0, Separator)
}

func (f *FileSystem) Stat(filePath string) (iofs.FileInfo, error) {
	info, err := f.client.Stat(filePath)
	if err != nil {
		return nil, convertError("stat", filePath, err)
	}
	return info, nil
}

func (f *FileSystem) MakeAllDirs(dirPath string, perm splice.Permissions) error {
	err := f.client.MkdirAll(dirPath)
	if err != nil {
		return convertError("mkdir", dirPath, err)
	}
	if perm != 0 {
		return convertError("chmod", dirPath, f.client.Chmod(dirPath, perm.FileMode(false)))
	}
	return nil
}

// OpenFile opens filePath on the server.
// Permissions are only applied to newly created files.
//
// os.O_APPEND is emulated by seeking to the end before every Write
// because not all servers honor the append flag for positional writes.
func (f *FileSystem) OpenFile(filePath string, flag int, perm splice.Permissions) (splice.FileHandle, error) {
	created := false
	if flag&os.O_CREATE != 0 && perm != 0 {
		_, err := f.client.Stat(filePath)
		created = err != nil
	}
	appendMode := flag&os.O_APPEND != 0
	file, err := f.client.OpenFile(filePath, flag&^os.O_APPEND)
	if err != nil {
		return nil, convertError("open", filePath, err)
	}
	if created {
		if err = file.Chmod(perm.FileMode(false)); err != nil {
			return nil, errors.Join(convertError("chmod", filePath, err), file.Close())
		}
	}
	if appendMode {
		return appendFile{file}, nil
	}
	return file, nil
}

// appendFile writes at the end of the file
type appendFile struct {
	*sftp.File
}

func (f appendFile) Write(p []byte) (int, error) {
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return 0, err
	}
	return f.File.Write(p)
}

func (f *FileSystem) Chtimes(filePath string, atime, mtime time.Time) error {
	return convertError("chtimes", filePath, f.client.Chtimes(filePath, atime, mtime))
}

func (f *FileSystem) Remove(filePath string) error {
	return convertError("remove", filePath, f.client.Remove(filePath))
}

// Close closes the SFTP client connection.
func (f *FileSystem) Close() error {
	return f.client.Close()
}
