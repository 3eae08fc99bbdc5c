package sftpfs

import "time"

var (
	// MaxConnectRetries is the maximum number of additional attempts
	// to connect to an SFTP server after a connection error.
	MaxConnectRetries = 3

	// InitialRetryBackoff is the duration to wait before the first
	// retry of a failed connection attempt.
	// It doubles for every further retry.
	InitialRetryBackoff = 100 * time.Millisecond

	// DefaultTempDir is the TempDir of a FileSystem
	// and the parent of its default staging directory.
	DefaultTempDir = "/tmp"
)
