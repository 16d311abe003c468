// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

// Palette is an indexed-format image's color table.
type Palette struct {
	PixelFormat PixelFormat
	Data        []byte
}

// Image is one decoded (or about-to-be-encoded) frame, along with the
// metadata a codec attaches to it.
type Image struct {
	Width         int
	Height        int
	BytesPerLine  int
	PixelFormat   PixelFormat
	Properties    ImageProperty
	Palette       *Palette
	MetaData      []MetaDataNode
	ICCProfile    []byte
	Pixels        []byte
	DelayMillisec int
}

// SourceImage carries the subset of Image metadata a codec reports
// from ReadSeekNextFrame before pixel data is actually decoded, used
// by Probe to answer "what is this" without reading pixels.
type SourceImage struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
	Properties  ImageProperty
	CodecName   string
}

// CopyImage deep-copies img, including its palette, metadata and pixel
// buffer. Ownership transfers by copy, never by reference: callers
// never see a slice that aliases the source image's memory.
func CopyImage(img *Image) *Image {
	if img == nil {
		return nil
	}
	cp := *img
	if img.Palette != nil {
		p := *img.Palette
		p.Data = append([]byte(nil), img.Palette.Data...)
		cp.Palette = &p
	}
	if img.MetaData != nil {
		cp.MetaData = make([]MetaDataNode, len(img.MetaData))
		for i, n := range img.MetaData {
			cp.MetaData[i] = MetaDataNode{
				Key:            n.Key,
				KeyUnknownName: n.KeyUnknownName,
				ValueType:      n.ValueType,
				Value:          append([]byte(nil), n.Value...),
			}
		}
	}
	cp.ICCProfile = append([]byte(nil), img.ICCProfile...)
	cp.Pixels = append([]byte(nil), img.Pixels...)
	return &cp
}

// ToSailImage deep-copies a codec-decoded image into a caller-owned
// value, the read-side counterpart of FromSailImage. ReadNextFrame does
// not call it: it already allocates a fresh Image for every frame.
func ToSailImage(img *Image) *Image {
	return CopyImage(img)
}

// FromSailImage deep-copies a caller-supplied image before it crosses
// into a codec's WriteFrame, so the codec cannot observe or mutate the
// caller's own copy.
func FromSailImage(img *Image) *Image {
	return CopyImage(img)
}
