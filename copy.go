package splice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// CopyBuffer copies from src to dst until either io.EOF is reached on src
// or maxBytes bytes have been copied if maxBytes is not negative.
// It returns the number of bytes copied.
//
// buf is used as copy buffer, if it is empty
// a buffer of DefaultBufferSize will be allocated.
// No more than maxBytes will ever be read from src.
//
// The context is checked before every read.
// Any error aborts the copy, bytes already written to dst
// are not rolled back.
func CopyBuffer(ctx context.Context, dst io.Writer, src io.Reader, maxBytes int64, buf []byte) (copied int64, err error) {
	if len(buf) == 0 {
		buf = make([]byte, DefaultBufferSize)
	}
	for maxBytes < 0 || copied < maxBytes {
		if err = ctx.Err(); err != nil {
			return copied, err
		}
		chunk := buf
		if remaining := maxBytes - copied; maxBytes >= 0 && remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		nr, er := src.Read(chunk)
		if nr > 0 {
			nw, ew := dst.Write(chunk[:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if ew == nil {
					ew = errors.New("invalid write result")
				}
			}
			copied += int64(nw)
			if ew != nil {
				return copied, ew
			}
			if nr != nw {
				return copied, io.ErrShortWrite
			}
		}
		if er != nil {
			if er == io.EOF {
				return copied, nil
			}
			return copied, er
		}
	}
	return copied, nil
}

// CopyFile copies the file srcPath to destPath
// on the file system of the engine.
// An existing destPath will be overwritten.
// The parent directories of destPath are created
// if the engine is configured with CreateParentDirs.
func (e *Engine) CopyFile(ctx context.Context, srcPath, destPath string) (err error) {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	r, err := e.OpenReader(srcPath)
	if err != nil {
		return fmt.Errorf("CopyFile: can't open src reader: %w", err)
	}
	defer r.Close()

	w, err := e.openForWriting(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("CopyFile: can't open dest writer: %w", err)
	}
	defer func() {
		err = errors.Join(err, w.Close())
	}()

	_, err = CopyBuffer(ctx, w, r, -1, e.newBuffer())
	if err != nil {
		return fmt.Errorf("CopyFile: error copying %s to %s: %w", srcPath, destPath, err)
	}
	return nil
}
