// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

// fakeSession builds a session wired to an in-memory stream and a
// pluginFuncs table driven entirely by Go closures, standing in for a
// dlopen'd codec so the state machine can be exercised without a real
// shared-library fixture.
func fakeSession(writing bool, frameCount int) *session {
	stream := newMemoryStream(nil, true)
	remaining := frameCount

	funcs := pluginFuncs{
		ReadInit: func(opaque uintptr, readCb, seekCb, tellCb uintptr, options uintptr, state *uintptr) int32 {
			return 0
		},
		ReadSeekNextFrame: func(state uintptr, image uintptr) int32 {
			if remaining <= 0 {
				return int32(StatusNoMoreFrames)
			}
			remaining--
			img := (*Image)(unsafe.Pointer(image))
			img.Width, img.Height, img.BytesPerLine = 2, 2, 2
			return 0
		},
		ReadFrame: func(state uintptr, image uintptr, pixels uintptr) int32 {
			return 0
		},
		ReadFinish: func(state *uintptr) int32 { return 0 },
		WriteInit: func(opaque uintptr, writeCb, seekCb, tellCb uintptr, options uintptr, state *uintptr) int32 {
			return 0
		},
		WriteSeekNextFrame: func(state uintptr, image uintptr) int32 { return 0 },
		WriteFrame:         func(state uintptr, image uintptr, pixels uintptr) int32 { return 0 },
		WriteFinish:        func(state *uintptr) int32 { return 0 },
	}

	return &session{
		state:     stateStreaming,
		writing:   writing,
		stream:    stream,
		ownStream: true,
		codec:     &CodecInfo{Name: "FAKE"},
		plugin:    &loadedPlugin{funcs: funcs},
		logger:    defaultSessionLogger(),
	}
}

func TestSessionReadNextFrameYieldsFrames(t *testing.T) {
	s := fakeSession(false, 2)

	img, err := s.ReadNextFrame()
	require.NoError(t, err)
	require.Equal(t, 2, img.Width)

	_, err = s.ReadNextFrame()
	require.NoError(t, err)

	_, err = s.ReadNextFrame()
	require.True(t, IsNoMoreFrames(err))

	require.NoError(t, s.Stop())
}

func TestSessionReadNextFrameOnWriteSessionFails(t *testing.T) {
	s := fakeSession(true, 1)
	_, err := s.ReadNextFrame()
	require.Equal(t, StatusInvalidArgument, StatusOf(err))
}

func TestSessionWriteNextFrame(t *testing.T) {
	s := fakeSession(true, 0)
	err := s.WriteNextFrame(&Image{Width: 1, Height: 1, Pixels: []byte{0xAA}})
	require.NoError(t, err)
	require.NoError(t, s.Stop())
}

func TestSessionWriteNextFrameNilImage(t *testing.T) {
	s := fakeSession(true, 0)
	err := s.WriteNextFrame(nil)
	require.Equal(t, StatusNullPtr, StatusOf(err))
}

func TestSessionStopIsIdempotent(t *testing.T) {
	s := fakeSession(false, 0)
	err1 := s.Stop()
	err2 := s.Stop()
	require.NoError(t, err1)
	require.Equal(t, err1, err2)
}

func TestSessionFailedStateLatches(t *testing.T) {
	s := fakeSession(false, 0)
	s.state = stateFailed

	_, err := s.ReadNextFrame()
	require.Equal(t, StatusStateExecutionFail, StatusOf(err))
}

func TestSessionReadNextFrameExhaustedIsIdempotent(t *testing.T) {
	s := fakeSession(false, 0)

	_, err := s.ReadNextFrame()
	require.True(t, IsNoMoreFrames(err))

	_, err = s.ReadNextFrame()
	require.True(t, IsNoMoreFrames(err))
	require.Equal(t, StatusNoMoreFrames, StatusOf(err))
}

func TestSessionProbeLeadingFrameNeverDecodesPixels(t *testing.T) {
	s := fakeSession(false, 1)
	s.plugin.funcs.ReadFrame = func(state uintptr, image uintptr, pixels uintptr) int32 {
		t.Fatal("ReadFrame must not be called by probeLeadingFrame")
		return 0
	}

	img, err := s.probeLeadingFrame()
	require.NoError(t, err)
	require.Equal(t, 2, img.Width)
	require.Nil(t, img.Pixels)
}

func TestSessionStopLeavesUnownedStreamOpen(t *testing.T) {
	s := fakeSession(false, 0)
	closed := false
	s.stream = newUserStream(UserStreamOps{Close: func() error {
		closed = true
		return nil
	}})
	s.ownStream = false

	require.NoError(t, s.Stop())
	require.False(t, closed)
	require.NoError(t, s.stream.Close())
}

func TestStartReadingIOWithOptionsCleansUpOnInitFailure(t *testing.T) {
	resetRegistryForTest(t)

	finishCalled := false
	funcs := pluginFuncs{
		ReadInit: func(opaque uintptr, readCb, seekCb, tellCb uintptr, options uintptr, state *uintptr) int32 {
			return int32(StatusStateExecutionFail)
		},
		ReadFinish: func(state *uintptr) int32 {
			finishCalled = true
			return 0
		},
	}
	ci := &CodecInfo{Name: "FAKE"}
	lp := &loadedPlugin{funcs: funcs}
	pluginCache.Store(ci, lp)
	t.Cleanup(func() { pluginCache.Delete(ci) })

	_, err := startReadingIOWithOptions(BytesSource{Data: []byte("x")}, ci, &ReadOptions{})
	require.Equal(t, StatusStateExecutionFail, StatusOf(err))
	require.True(t, finishCalled)
}
