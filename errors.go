// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import "fmt"

// Status is the tagged error kind returned from every fallible SAIL
// operation. Zero value StatusOK means success.
type Status int

// Status values, grouped by the area of the library they originate in.
const (
	StatusOK Status = iota

	// Invalid argument.
	StatusNullPtr
	StatusInvalidArgument

	// Resource.
	StatusMemoryAllocation
	StatusOpenFile
	StatusReadIO
	StatusWriteIO

	// Format.
	StatusBrokenImage
	StatusIncorrectImageDimensions
	StatusUnsupportedPixelFormat
	StatusUnsupportedCompression

	// Registry / plugin.
	StatusParseFile
	StatusIncompleteCodecInfo
	StatusUnsupportedCodecLayout
	StatusUnsupportedCodecPriority
	StatusCodecLoad
	StatusCodecSymbolResolve

	// Session.
	StatusNotImplemented
	StatusNoMoreFrames
	StatusStateExecutionFail
	StatusUnsupportedFormat

	// Registry lifecycle.
	StatusAlreadyInitialized
)

var statusNames = map[Status]string{
	StatusOK:                       "OK",
	StatusNullPtr:                  "NULL_PTR",
	StatusInvalidArgument:          "INVALID_ARGUMENT",
	StatusMemoryAllocation:         "MEMORY_ALLOCATION",
	StatusOpenFile:                 "OPEN_FILE",
	StatusReadIO:                   "READ_IO",
	StatusWriteIO:                  "WRITE_IO",
	StatusBrokenImage:              "BROKEN_IMAGE",
	StatusIncorrectImageDimensions: "INCORRECT_IMAGE_DIMENSIONS",
	StatusUnsupportedPixelFormat:   "UNSUPPORTED_PIXEL_FORMAT",
	StatusUnsupportedCompression:   "UNSUPPORTED_COMPRESSION",
	StatusParseFile:                "PARSE_FILE",
	StatusIncompleteCodecInfo:      "INCOMPLETE_CODEC_INFO",
	StatusUnsupportedCodecLayout:   "UNSUPPORTED_CODEC_LAYOUT",
	StatusUnsupportedCodecPriority: "UNSUPPORTED_CODEC_PRIORITY",
	StatusCodecLoad:                "CODEC_LOAD",
	StatusCodecSymbolResolve:       "CODEC_SYMBOL_RESOLVE",
	StatusNotImplemented:           "NOT_IMPLEMENTED",
	StatusNoMoreFrames:             "NO_MORE_FRAMES",
	StatusStateExecutionFail:       "STATE_EXECUTION_FAIL",
	StatusUnsupportedFormat:        "UNSUPPORTED_FORMAT",
	StatusAlreadyInitialized:       "ALREADY_INITIALIZED",
}

var statusFromName = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for s, name := range statusNames {
		m[name] = s
	}
	return m
}()

// StatusString implements the error-code <-> string round trip
// exposed on the public surface.
func StatusString(s Status) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(s))
}

// StatusFromString is the inverse of StatusString. Unknown names return
// (StatusOK, false).
func StatusFromString(name string) (Status, bool) {
	s, ok := statusFromName[name]
	return s, ok
}

// Error is the concrete error type every SAIL operation returns. It
// carries the originating component ("Op") alongside the tag, so
// callers and log lines can report both in one place.
type Error struct {
	Status Status
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sail: %s: %s: %v", e.Op, StatusString(e.Status), e.Err)
	}
	return fmt.Sprintf("sail: %s: %s", e.Op, StatusString(e.Status))
}

func (e *Error) Unwrap() error { return e.Err }

// newError builds a tagged *Error without a wrapped cause.
func newError(op string, status Status) *Error {
	return &Error{Op: op, Status: status}
}

// wrapError builds a tagged *Error wrapping an underlying cause.
func wrapError(op string, status Status, err error) *Error {
	return &Error{Op: op, Status: status, Err: err}
}

// StatusOf extracts the Status tag from err, walking Unwrap chains.
// Errors that never passed through SAIL (e.g. a raw I/O error from a
// caller-supplied stream) report StatusInvalidArgument.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var serr *Error
	for {
		if e, ok := err.(*Error); ok {
			serr = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
		if err == nil {
			break
		}
	}
	if serr != nil {
		return serr.Status
	}
	return StatusInvalidArgument
}

// IsNoMoreFrames reports whether err is the benign end-of-stream signal
// from ReadNextFrame.
func IsNoMoreFrames(err error) bool {
	return StatusOf(err) == StatusNoMoreFrames
}
