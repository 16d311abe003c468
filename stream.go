// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"errors"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ErrReadOnlyStream is returned by Write on a stream opened without
// write access.
var ErrReadOnlyStream = errors.New("sail: stream is read-only")

// Stream is the polymorphic I/O object every session drives, unifying
// file, memory and user-supplied byte sources. Short reads at EOF are
// reported the idiomatic Go way: Read returns the count actually
// delivered together with io.EOF, so callers can tell a
// partial-but-valid read from a hard failure.
type Stream interface {
	io.Reader
	io.Writer
	Seek(offset int64, whence int) (int64, error)
	Tell() (int64, error)
	Flush() error
	Close() error
}

// checkStreamValid implements check_io_valid: a nil interface or a nil
// concrete value both fail validation.
func checkStreamValid(s Stream) error {
	if s == nil {
		return newError("checkStreamValid", StatusNullPtr)
	}
	if v, ok := s.(interface{ isNil() bool }); ok && v.isNil() {
		return newError("checkStreamValid", StatusNullPtr)
	}
	return nil
}

// --- file-backed stream -----------------------------------------------

// fileStream memory-maps the underlying file for reading instead of
// buffering reads through repeated syscalls. Write sessions fall back
// to positioned writes through the *os.File handle, since mmap-go's
// writable mappings are awkward to grow; an advisory POSIX flock
// guards the write session's lifetime.
type fileStream struct {
	f        *os.File
	data     mmap.MMap
	writable bool
	pos      int64
	unlock   func() error
}

func newFileStream(path string, writable bool) (*fileStream, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR | os.O_CREATE
	}

	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, wrapError("newFileStream", StatusOpenFile, err)
	}

	fs := &fileStream{f: f, writable: writable}

	if writable {
		unlock, err := lockFile(f)
		if err != nil {
			f.Close()
			return nil, wrapError("newFileStream", StatusOpenFile, err)
		}
		fs.unlock = unlock
		return fs, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapError("newFileStream", StatusOpenFile, err)
	}
	if info.Size() == 0 {
		// mmap-go rejects zero-length mappings; an empty file has no
		// bytes to probe or decode anyway.
		fs.data = mmap.MMap{}
		return fs, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, wrapError("newFileStream", StatusOpenFile, err)
	}
	fs.data = data

	return fs, nil
}

func (fs *fileStream) isNil() bool { return fs == nil }

func (fs *fileStream) Read(p []byte) (int, error) {
	if fs.data != nil {
		if fs.pos >= int64(len(fs.data)) {
			return 0, io.EOF
		}
		n := copy(p, fs.data[fs.pos:])
		fs.pos += int64(n)
		if n < len(p) {
			return n, io.EOF
		}
		return n, nil
	}
	n, err := fs.f.ReadAt(p, fs.pos)
	fs.pos += int64(n)
	return n, err
}

func (fs *fileStream) Write(p []byte) (int, error) {
	if !fs.writable {
		return 0, ErrReadOnlyStream
	}
	n, err := fs.f.WriteAt(p, fs.pos)
	fs.pos += int64(n)
	if err != nil {
		return n, wrapError("fileStream.Write", StatusWriteIO, err)
	}
	return n, nil
}

func (fs *fileStream) Seek(offset int64, whence int) (int64, error) {
	size := int64(len(fs.data))
	if fs.writable {
		info, err := fs.f.Stat()
		if err != nil {
			return 0, wrapError("fileStream.Seek", StatusReadIO, err)
		}
		size = info.Size()
	}

	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = fs.pos + offset
	case io.SeekEnd:
		newPos = size + offset
	default:
		return 0, newError("fileStream.Seek", StatusInvalidArgument)
	}
	if newPos < 0 {
		return 0, newError("fileStream.Seek", StatusInvalidArgument)
	}
	fs.pos = newPos
	return fs.pos, nil
}

func (fs *fileStream) Tell() (int64, error) { return fs.pos, nil }

func (fs *fileStream) Flush() error {
	if fs.writable {
		return fs.f.Sync()
	}
	return nil
}

func (fs *fileStream) Close() error {
	var err error
	if fs.data != nil {
		err = fs.data.Unmap()
	}
	if fs.unlock != nil {
		if uerr := fs.unlock(); err == nil {
			err = uerr
		}
	}
	if cerr := fs.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// --- memory-backed stream -----------------------------------------------

// memoryStream wraps a byte slice and a cursor. It borrows the slice
// for read-only sessions and owns a growable copy for writable ones.
type memoryStream struct {
	buf      []byte
	pos      int64
	writable bool
}

func newMemoryStream(data []byte, writable bool) *memoryStream {
	return &memoryStream{buf: data, writable: writable}
}

func (ms *memoryStream) isNil() bool { return ms == nil }

func (ms *memoryStream) Read(p []byte) (int, error) {
	if ms.pos >= int64(len(ms.buf)) {
		return 0, io.EOF
	}
	n := copy(p, ms.buf[ms.pos:])
	ms.pos += int64(n)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (ms *memoryStream) Write(p []byte) (int, error) {
	if !ms.writable {
		return 0, ErrReadOnlyStream
	}
	end := ms.pos + int64(len(p))
	if end > int64(len(ms.buf)) {
		grown := make([]byte, end)
		copy(grown, ms.buf)
		ms.buf = grown
	}
	n := copy(ms.buf[ms.pos:end], p)
	ms.pos = end
	return n, nil
}

func (ms *memoryStream) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = ms.pos + offset
	case io.SeekEnd:
		newPos = int64(len(ms.buf)) + offset
	default:
		return 0, newError("memoryStream.Seek", StatusInvalidArgument)
	}
	if newPos < 0 {
		return 0, newError("memoryStream.Seek", StatusInvalidArgument)
	}
	ms.pos = newPos
	return ms.pos, nil
}

func (ms *memoryStream) Tell() (int64, error) { return ms.pos, nil }
func (ms *memoryStream) Flush() error         { return nil }
func (ms *memoryStream) Close() error         { return nil }

// Bytes returns the current contents of a writable memory stream, for
// callers of StartWritingMemory who want the encoded result back.
func (ms *memoryStream) Bytes() []byte { return ms.buf }

// --- user-supplied stream -----------------------------------------------

// UserStreamOps is the function table a caller provides for a fully
// custom I/O source. Every field may be nil; calling an unset
// operation fails with StatusNotImplemented. Implementations must not
// assume re-entrancy: SAIL never calls two operations on the same
// stream concurrently, but neither does it serialize calls for the
// caller.
type UserStreamOps struct {
	Read  func(p []byte) (int, error)
	Write func(p []byte) (int, error)
	Seek  func(offset int64, whence int) (int64, error)
	Tell  func() (int64, error)
	Flush func() error
	Close func() error
}

type userStream struct {
	ops UserStreamOps
}

// newUserStream wraps caller-supplied callbacks as a Stream.
func newUserStream(ops UserStreamOps) *userStream {
	return &userStream{ops: ops}
}

func (us *userStream) isNil() bool { return us == nil }

func (us *userStream) Read(p []byte) (int, error) {
	if us.ops.Read == nil {
		return 0, newError("userStream.Read", StatusNotImplemented)
	}
	return us.ops.Read(p)
}

func (us *userStream) Write(p []byte) (int, error) {
	if us.ops.Write == nil {
		return 0, newError("userStream.Write", StatusNotImplemented)
	}
	return us.ops.Write(p)
}

func (us *userStream) Seek(offset int64, whence int) (int64, error) {
	if us.ops.Seek == nil {
		return 0, newError("userStream.Seek", StatusNotImplemented)
	}
	return us.ops.Seek(offset, whence)
}

func (us *userStream) Tell() (int64, error) {
	if us.ops.Tell == nil {
		return 0, newError("userStream.Tell", StatusNotImplemented)
	}
	return us.ops.Tell()
}

func (us *userStream) Flush() error {
	if us.ops.Flush == nil {
		return nil
	}
	return us.ops.Flush()
}

func (us *userStream) Close() error {
	if us.ops.Close == nil {
		return nil
	}
	return us.ops.Close()
}
