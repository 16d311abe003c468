// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"sync"
	"unsafe"

	"github.com/JoniSt/sail-go/log"
)

// sessionState is the session engine's state machine.
type sessionState int

const (
	stateInit sessionState = iota
	stateStreaming
	stateExhausted
	stateFailed
	stateClosed
)

// session holds one decode or encode session's live state: fields are
// torn down in the reverse of the order they were acquired, whichever
// state the session stopped in, so every exit path runs full cleanup.
type session struct {
	mu sync.Mutex

	state   sessionState
	writing bool

	stream    Stream
	ownStream bool
	codec     *CodecInfo
	plugin    *loadedPlugin

	pluginState uintptr

	readOpts  *ReadOptions
	writeOpts *WriteOptions

	logger *log.Helper

	stopOnce sync.Once
	stopErr  error
}

func defaultSessionLogger() *log.Helper { return defaultLogger }

// callPlugin invokes fn, recovering a panicking codec call into
// StatusStateExecutionFail. Codecs are untrusted third-party code once
// dynamically loaded; a panic there must not cross the ABI boundary
// into the caller's goroutine.
func callPlugin(fn func() int32) (rc int32) {
	defer func() {
		if r := recover(); r != nil {
			rc = int32(StatusStateExecutionFail)
		}
	}()
	return fn()
}

// ownsStream reports whether src is one the session opens and owns
// itself (file or memory), as opposed to a caller-supplied
// StreamSource the session must leave intact on Stop.
func ownsStream(src Source) bool {
	_, userSupplied := src.(StreamSource)
	return !userSupplied
}

func startSession(src Source, ci *CodecInfo, writing bool, logger *log.Helper) (*session, error) {
	stream, err := src.openStream()
	if err != nil {
		return nil, err
	}

	lp, err := loadPlugin(ci)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}

	s := &session{
		state:     stateInit,
		writing:   writing,
		stream:    stream,
		ownStream: ownsStream(src),
		codec:     ci,
		plugin:    lp,
		logger:    logger,
	}
	return s, nil
}

// StartReadingFile begins a read session against a file path,
// selecting ci's codec and synthesizing default read options from its
// advertised ReadFeatures.
func StartReadingFile(path string, ci *CodecInfo) (*session, error) {
	return startReadingSource(PathSource{Path: path}, ci)
}

// StartReadingMemory begins a read session against an in-memory
// buffer.
func StartReadingMemory(data []byte, ci *CodecInfo) (*session, error) {
	return startReadingSource(BytesSource{Data: data}, ci)
}

// StartReadingStream begins a read session against caller-supplied
// I/O callbacks.
func StartReadingStream(ops UserStreamOps, ci *CodecInfo) (*session, error) {
	return startReadingSource(StreamSource{Ops: ops}, ci)
}

func startReadingSource(src Source, ci *CodecInfo) (*session, error) {
	if ci == nil {
		return nil, newError("StartReading", StatusNullPtr)
	}
	opts, err := AllocReadOptionsFromFeatures(&ci.ReadFeatures)
	if err != nil {
		return nil, err
	}
	return startReadingIOWithOptions(src, ci, opts)
}

// startReadingIOWithOptions is the fully general read-session
// constructor every StartReading* convenience wraps.
func startReadingIOWithOptions(src Source, ci *CodecInfo, opts *ReadOptions) (*session, error) {
	s, err := startSession(src, ci, false, defaultSessionLogger())
	if err != nil {
		return nil, err
	}
	s.readOpts = CopyReadOptions(opts)

	if s.plugin.funcs.ReadInit == nil {
		_ = s.stream.Close()
		return nil, newError("StartReading", StatusNotImplemented)
	}

	ensureStreamCallbacks()
	handle := streamHandle(s.stream)
	rc := callPlugin(func() int32 {
		return s.plugin.funcs.ReadInit(handle, readCbPtr, seekCbPtr, tellCbPtr, uintptr(unsafe.Pointer(s.readOpts)), &s.pluginState)
	})
	if rc != 0 {
		// ReadInit may have partially allocated codec_state before
		// failing; ReadFinish is owed a best-effort call regardless.
		if s.plugin.funcs.ReadFinish != nil {
			callPlugin(func() int32 { return s.plugin.funcs.ReadFinish(&s.pluginState) })
		}
		unregisterStreamHandle(s.stream)
		_ = s.stream.Close()
		return nil, newError("StartReading", Status(rc))
	}
	s.state = stateStreaming
	return s, nil
}

// StartWritingFile begins a write session against a file path.
func StartWritingFile(path string, ci *CodecInfo, opts *WriteOptions) (*session, error) {
	return startWritingSource(PathSource{Path: path}, ci, opts)
}

// StartWritingMemory begins a write session against a growable
// in-memory buffer.
func StartWritingMemory(ci *CodecInfo, opts *WriteOptions) (*session, error) {
	return startWritingSource(BytesSource{}, ci, opts)
}

// StartWritingStream begins a write session against caller-supplied
// I/O callbacks.
func StartWritingStream(ops UserStreamOps, ci *CodecInfo, opts *WriteOptions) (*session, error) {
	return startWritingSource(StreamSource{Ops: ops}, ci, opts)
}

func startWritingSource(src Source, ci *CodecInfo, opts *WriteOptions) (*session, error) {
	if ci == nil {
		return nil, newError("StartWriting", StatusNullPtr)
	}
	if opts == nil {
		var err error
		opts, err = AllocWriteOptionsFromFeatures(&ci.WriteFeatures)
		if err != nil {
			return nil, err
		}
	}
	if err := ValidateWriteOptions(&ci.WriteFeatures, opts); err != nil {
		return nil, err
	}
	return startWritingIOWithOptions(src, ci, opts)
}

func startWritingIOWithOptions(src Source, ci *CodecInfo, opts *WriteOptions) (*session, error) {
	bsrc, isBytes := src.(BytesSource)
	var stream Stream
	var err error
	if isBytes && bsrc.Data == nil {
		stream = newMemoryStream(nil, true)
	} else {
		stream, err = openWritableStream(src)
		if err != nil {
			return nil, err
		}
	}

	lp, err := loadPlugin(ci)
	if err != nil {
		_ = stream.Close()
		return nil, err
	}

	s := &session{
		state:     stateInit,
		writing:   true,
		stream:    stream,
		ownStream: ownsStream(src),
		codec:     ci,
		plugin:    lp,
		writeOpts: CopyWriteOptions(opts),
		logger:    defaultSessionLogger(),
	}

	if s.plugin.funcs.WriteInit == nil {
		_ = s.stream.Close()
		return nil, newError("StartWriting", StatusNotImplemented)
	}

	ensureStreamCallbacks()
	handle := streamHandle(s.stream)
	rc := callPlugin(func() int32 {
		return s.plugin.funcs.WriteInit(handle, writeCbPtr, seekCbPtr, tellCbPtr, uintptr(unsafe.Pointer(s.writeOpts)), &s.pluginState)
	})
	if rc != 0 {
		// WriteInit may have partially allocated codec_state before
		// failing; WriteFinish is owed a best-effort call regardless.
		if s.plugin.funcs.WriteFinish != nil {
			callPlugin(func() int32 { return s.plugin.funcs.WriteFinish(&s.pluginState) })
		}
		unregisterStreamHandle(s.stream)
		_ = s.stream.Close()
		return nil, newError("StartWriting", Status(rc))
	}
	s.state = stateStreaming
	return s, nil
}

func openWritableStream(src Source) (Stream, error) {
	switch v := src.(type) {
	case PathSource:
		return newFileStream(v.Path, true)
	case StreamSource:
		return newUserStream(v.Ops), nil
	default:
		return nil, newError("openWritableStream", StatusInvalidArgument)
	}
}

// streamHandle hands the plugin a stable address to call back into
// the Go-side Stream through the registered trampolines wired in
// stream_callbacks.go; it is an index into the callback registry, not
// a raw pointer.
func streamHandle(s Stream) uintptr {
	return registerStreamHandle(s)
}

// seekNextFrame advances the read session to the next frame's
// metadata, without decoding any pixel data. It is the shared core of
// ReadNextFrame (which follows it with ReadFrame) and probeLeadingFrame
// (which never calls ReadFrame at all). Called with s.mu held.
//
// An already-exhausted session returns StatusNoMoreFrames again rather
// than falling through to StatusInvalidArgument: end of stream is
// idempotent.
func (s *session) seekNextFrame() (*Image, error) {
	if s.writing {
		return nil, newError("seekNextFrame", StatusInvalidArgument)
	}
	if s.state == stateFailed {
		return nil, newError("seekNextFrame", StatusStateExecutionFail)
	}
	if s.state == stateExhausted {
		return nil, newError("seekNextFrame", StatusNoMoreFrames)
	}
	if s.state != stateStreaming {
		return nil, newError("seekNextFrame", StatusInvalidArgument)
	}

	img := &Image{}
	rc := callPlugin(func() int32 {
		return s.plugin.funcs.ReadSeekNextFrame(s.pluginState, uintptr(unsafe.Pointer(img)))
	})
	if Status(rc) == StatusNoMoreFrames {
		s.state = stateExhausted
		return nil, newError("seekNextFrame", StatusNoMoreFrames)
	}
	if rc != 0 {
		s.state = stateFailed
		return nil, newError("seekNextFrame", Status(rc))
	}
	return img, nil
}

// ReadNextFrame decodes the next frame and advances the session.
// Returns a StatusNoMoreFrames-tagged error at end of stream, which
// callers distinguish with IsNoMoreFrames rather than treating as
// fatal; a subsequent call keeps returning StatusNoMoreFrames rather
// than erroring out.
func (s *session) ReadNextFrame() (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := s.seekNextFrame()
	if err != nil {
		return nil, err
	}

	img.Pixels = make([]byte, img.Height*img.BytesPerLine)
	rc := callPlugin(func() int32 {
		return s.plugin.funcs.ReadFrame(s.pluginState, uintptr(unsafe.Pointer(img)), uintptr(unsafe.Pointer(&img.Pixels[0])))
	})
	if rc != 0 {
		s.state = stateFailed
		return nil, newError("ReadNextFrame", Status(rc))
	}

	return img, nil
}

// probeLeadingFrame seeks to the leading frame's metadata and returns,
// never calling ReadFrame: the read path Probe uses to identify a
// format without decoding any pixels.
func (s *session) probeLeadingFrame() (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekNextFrame()
}

// WriteNextFrame encodes img as the next output frame.
func (s *session) WriteNextFrame(img *Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.writing {
		return newError("WriteNextFrame", StatusInvalidArgument)
	}
	if s.state == stateFailed {
		return newError("WriteNextFrame", StatusStateExecutionFail)
	}
	if s.state != stateStreaming {
		return newError("WriteNextFrame", StatusInvalidArgument)
	}
	if img == nil {
		return newError("WriteNextFrame", StatusNullPtr)
	}
	img = FromSailImage(img)

	rc := callPlugin(func() int32 {
		return s.plugin.funcs.WriteSeekNextFrame(s.pluginState, uintptr(unsafe.Pointer(img)))
	})
	if rc != 0 {
		s.state = stateFailed
		return newError("WriteNextFrame", Status(rc))
	}

	var pixelsPtr uintptr
	if len(img.Pixels) > 0 {
		pixelsPtr = uintptr(unsafe.Pointer(&img.Pixels[0]))
	}
	rc = callPlugin(func() int32 {
		return s.plugin.funcs.WriteFrame(s.pluginState, uintptr(unsafe.Pointer(img)), pixelsPtr)
	})
	if rc != 0 {
		s.state = stateFailed
		return newError("WriteNextFrame", Status(rc))
	}
	return nil
}

// Stop tears the session down in reverse acquisition order: codec
// finish call, then stream close, whichever state the session was in
// when Stop was called. It is idempotent; only the first call does
// the work and its result is cached, and each later call logs one
// trace line. A caller-supplied stream (ownStream == false) is left
// open: its lifetime belongs to the caller, not the session.
func (s *session) Stop() error {
	first := false
	s.stopOnce.Do(func() {
		first = true
		s.mu.Lock()
		defer s.mu.Unlock()

		var rc int32
		if s.writing {
			if s.plugin.funcs.WriteFinish != nil {
				rc = callPlugin(func() int32 { return s.plugin.funcs.WriteFinish(&s.pluginState) })
			}
		} else {
			if s.plugin.funcs.ReadFinish != nil {
				rc = callPlugin(func() int32 { return s.plugin.funcs.ReadFinish(&s.pluginState) })
			}
		}
		unregisterStreamHandle(s.stream)

		var closeErr error
		if s.ownStream {
			closeErr = s.stream.Close()
		}
		s.state = stateClosed

		if rc != 0 {
			s.stopErr = newError("Stop", Status(rc))
			return
		}
		if closeErr != nil {
			s.stopErr = wrapError("Stop", StatusWriteIO, closeErr)
		}
	})
	if !first {
		s.logger.Tracef("Stop called on an already-stopped session")
	}
	return s.stopErr
}

// BytesWritten returns the encoded bytes accumulated by a write
// session started against StartWritingMemory. It is only meaningful
// after Stop has flushed the codec.
func (s *session) BytesWritten() ([]byte, error) {
	ms, ok := s.stream.(*memoryStream)
	if !ok {
		return nil, newError("BytesWritten", StatusInvalidArgument)
	}
	return ms.Bytes(), nil
}
