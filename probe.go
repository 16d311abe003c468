// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"path/filepath"
	"strings"
)

// Probe identifies the format of src and returns its leading frame's
// metadata without decoding any pixels: ReadInit, one
// ReadSeekNextFrame, then ReadFinish. Detection tries the source's
// file extension first and falls back to a magic-number scan of the
// stream's first MagicBufferSize bytes, restoring the stream's
// original position before handing it to the matched codec's ReadInit.
func Probe(src Source) (*SourceImage, *CodecInfo, error) {
	ci, err := detectCodec(src)
	if err != nil {
		return nil, nil, err
	}

	s, err := startReadingIOWithOptions(src, ci, &ReadOptions{})
	if err != nil {
		return nil, nil, err
	}
	defer s.Stop()

	img, err := s.probeLeadingFrame()
	if err != nil {
		return nil, ci, err
	}

	return &SourceImage{
		Width:       img.Width,
		Height:      img.Height,
		PixelFormat: img.PixelFormat,
		Properties:  img.Properties,
		CodecName:   ci.Name,
	}, ci, nil
}

func detectCodec(src Source) (*CodecInfo, error) {
	if ps, ok := src.(PathSource); ok {
		ext := strings.TrimPrefix(filepath.Ext(ps.Path), ".")
		if ext != "" {
			if ci, err := FindCodecByExtension(ext); err == nil {
				return ci, nil
			}
		}
	}

	stream, err := src.openStream()
	if err != nil {
		return nil, err
	}
	if ownsStream(src) {
		defer stream.Close()
	}

	pos, err := stream.Tell()
	if err != nil {
		return nil, wrapError("detectCodec", StatusReadIO, err)
	}

	buf := make([]byte, MagicBufferSize)
	n, _ := stream.Read(buf)
	if _, serr := stream.Seek(pos, 0); serr != nil {
		return nil, wrapError("detectCodec", StatusReadIO, serr)
	}

	if n == 0 {
		return nil, newError("detectCodec", StatusUnsupportedFormat)
	}
	return FindCodecByMagicNumber(buf[:n])
}
