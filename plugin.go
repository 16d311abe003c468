// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import "strings"

// pluginFuncs is the layout-v6 codec ABI: the eight C entry points every
// codec shared module must export, named
// sail_codec_{read,write}_{init,seek_next_frame,frame,finish}_v6_<name>.
// purego.RegisterFunc binds each into one of these fields by resolved
// symbol address. All eight symbols are mandatory: loadPlugin fails with
// StatusCodecSymbolResolve if any one is missing, so a loaded plugin
// never has a nil field.
type pluginFuncs struct {
	// ReadInit begins a read session. opaque is the stream handle the
	// read/seek/tell callbacks dereference; readCb/seekCb/tellCb are
	// process-wide trampoline pointers resolved once by
	// ensureStreamCallbacks.
	ReadInit func(opaque uintptr, readCb, seekCb, tellCb uintptr, options uintptr, state *uintptr) int32

	// ReadSeekNextFrame advances to the next frame and fills imagePtr
	// with its metadata; returns StatusNoMoreFrames at end of stream.
	ReadSeekNextFrame func(state uintptr, image uintptr) int32

	// ReadFrame decodes pixel data for the frame last seeked to into
	// pixelsPtr, which must be at least image.Height*image.BytesPerLine.
	ReadFrame func(state uintptr, image uintptr, pixels uintptr) int32

	// ReadFinish releases state, however far the session progressed.
	ReadFinish func(state *uintptr) int32

	// WriteInit begins a write session.
	WriteInit func(opaque uintptr, writeCb, seekCb, tellCb uintptr, options uintptr, state *uintptr) int32

	// WriteSeekNextFrame declares the next output frame's metadata.
	WriteSeekNextFrame func(state uintptr, image uintptr) int32

	// WriteFrame encodes pixelsPtr into the frame last declared.
	WriteFrame func(state uintptr, image uintptr, pixels uintptr) int32

	// WriteFinish flushes and releases state.
	WriteFinish func(state *uintptr) int32
}

// symbolNames lists the eight mandatory exports in a fixed order, used
// by the loader both to resolve symbols and to report which one is
// missing in a StatusCodecSymbolResolve error. CodecInfo.Validate
// enforces an uppercase codec name, but the C export itself is
// lower-cased, so the name is folded here before building the symbol
// strings.
func symbolNames(codecName string) [8]string {
	name := strings.ToLower(codecName)
	return [8]string{
		"sail_codec_read_init_v6_" + name,
		"sail_codec_read_seek_next_frame_v6_" + name,
		"sail_codec_read_frame_v6_" + name,
		"sail_codec_read_finish_v6_" + name,
		"sail_codec_write_init_v6_" + name,
		"sail_codec_write_seek_next_frame_v6_" + name,
		"sail_codec_write_frame_v6_" + name,
		"sail_codec_write_finish_v6_" + name,
	}
}
