// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

// Source is anything Probe and the session constructors can open a
// Stream from, surfaced to callers as three concrete constructors
// rather than one interface with runtime type-switches.
type Source interface {
	openStream() (Stream, error)
}

// PathSource opens a file on disk.
type PathSource struct {
	Path string
}

func (s PathSource) openStream() (Stream, error) {
	fs, err := newFileStream(s.Path, false)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// BytesSource reads from an in-memory buffer.
type BytesSource struct {
	Data []byte
}

func (s BytesSource) openStream() (Stream, error) {
	return newMemoryStream(s.Data, false), nil
}

// StreamSource wraps caller-supplied I/O callbacks.
type StreamSource struct {
	Ops UserStreamOps
}

func (s StreamSource) openStream() (Stream, error) {
	return newUserStream(s.Ops), nil
}
