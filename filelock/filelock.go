// Package filelock serializes edits of a file between processes
// with an advisory lock on a sidecar file named like the file
// plus LockFileExt.
//
// The locked file itself is never opened by this package,
// so the lock survives the truncation and rewriting of the file.
package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

const (
	// ErrLocked is returned by TryAcquire
	// when the lock is held by someone else.
	ErrLocked = ConstError("file is locked")

	// ErrNotSupported is returned on platforms
	// without advisory file locks.
	ErrNotSupported = ConstError("file locking not supported on this platform")
)

// LockFileExt is appended to the path of a locked file
// to get the path of its lock file.
const LockFileExt = ".lock"

const (
	initialPollInterval = 10 * time.Millisecond
	maxPollInterval     = 500 * time.Millisecond
)

// Lock is an exclusive advisory lock held on a file
type Lock struct {
	path string
	file *os.File
}

// Path returns the path of the lock file
func (l *Lock) Path() string {
	return l.path
}

// Acquire locks filePath exclusively,
// waiting until the lock is free or ctx is done.
func Acquire(ctx context.Context, filePath string) (*Lock, error) {
	interval := initialPollInterval
	for {
		lock, err := TryAcquire(filePath)
		if !errors.Is(err, ErrLocked) {
			return lock, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
		interval = min(interval*2, maxPollInterval)
	}
}

// TryAcquire locks filePath exclusively without waiting.
// ErrLocked is returned if the lock is held by someone else.
func TryAcquire(filePath string) (*Lock, error) {
	lockPath := filePath + LockFileExt
	file, err := os.OpenFile(lockPath, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("can't open lock file: %w", err)
	}
	if err = tryLock(file); err != nil {
		return nil, errors.Join(err, file.Close())
	}
	return &Lock{path: lockPath, file: file}, nil
}

// Release unlocks the file.
// The lock file is not removed.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unlock(l.file)
	err = errors.Join(err, l.file.Close())
	l.file = nil
	return err
}
