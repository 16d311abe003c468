// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"io"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// streamHandles maps the opaque uintptr handle a codec module is given
// back to the Go Stream it addresses: an opaque-handle-over-a-table
// indirection, since a Go pointer can't safely cross the cgo-free FFI
// boundary as a raw "this" pointer.
var (
	streamHandles   sync.Map // map[uintptr]Stream
	streamHandleNum uintptr
	streamHandleMu  sync.Mutex
)

func registerStreamHandle(s Stream) uintptr {
	streamHandleMu.Lock()
	defer streamHandleMu.Unlock()
	streamHandleNum++
	h := streamHandleNum
	streamHandles.Store(h, s)
	return h
}

func unregisterStreamHandle(s Stream) {
	streamHandles.Range(func(k, v interface{}) bool {
		if v.(Stream) == s {
			streamHandles.Delete(k)
			return false
		}
		return true
	})
}

func lookupStreamHandle(h uintptr) Stream {
	v, ok := streamHandles.Load(h)
	if !ok {
		return nil
	}
	return v.(Stream)
}

// Trampoline pointers, registered once and handed to every codec's
// ReadInit/WriteInit call so it can call back into the Go-side Stream
// for actual byte I/O. Codecs never see the transport, only this
// abstraction.
var (
	callbacksOnce sync.Once
	readCbPtr     uintptr
	writeCbPtr    uintptr
	seekCbPtr     uintptr
	tellCbPtr     uintptr
)

func ensureStreamCallbacks() {
	callbacksOnce.Do(func() {
		readCbPtr = purego.NewCallback(func(_ purego.CDecl, opaque uintptr, buf *byte, bufSize int32) int32 {
			s := lookupStreamHandle(opaque)
			if s == nil {
				return -1
			}
			goBuf := unsafe.Slice(buf, bufSize)
			n, err := s.Read(goBuf)
			if err != nil && err != io.EOF {
				return -1
			}
			return int32(n)
		})

		writeCbPtr = purego.NewCallback(func(_ purego.CDecl, opaque uintptr, buf *byte, bufSize int32) int32 {
			s := lookupStreamHandle(opaque)
			if s == nil {
				return -1
			}
			goBuf := unsafe.Slice(buf, bufSize)
			n, err := s.Write(goBuf)
			if err != nil {
				return -1
			}
			return int32(n)
		})

		seekCbPtr = purego.NewCallback(func(_ purego.CDecl, opaque uintptr, offset int64, whence int32) int64 {
			s := lookupStreamHandle(opaque)
			if s == nil {
				return -1
			}
			n, err := s.Seek(offset, int(whence))
			if err != nil {
				return -1
			}
			return n
		})

		tellCbPtr = purego.NewCallback(func(_ purego.CDecl, opaque uintptr) int64 {
			s := lookupStreamHandle(opaque)
			if s == nil {
				return -1
			}
			n, err := s.Tell()
			if err != nil {
				return -1
			}
			return n
		})
	})
}
