// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

// PixelFormat tags the in-memory layout of pixel data. UNKNOWN is the
// zero value and is never valid in a codec's output pixel formats or
// as its preferred output pixel format.
type PixelFormat int

// A small, representative subset of pixel formats; codecs advertise
// whichever of these (or future additions) they support.
const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatBPP1Indexed
	PixelFormatBPP8Indexed
	PixelFormatBPP8Gray
	PixelFormatBPP24RGB
	PixelFormatBPP24BGR
	PixelFormatBPP32RGBA
	PixelFormatBPP32BGRA
)

// Compression tags the codec-specific compression scheme a write
// session uses. UNKNOWN must never appear in a codec's compressions
// list or as its default compression.
type Compression int

const (
	CompressionUnknown Compression = iota
	CompressionNone
	CompressionRLE
	CompressionLZW
	CompressionDeflate
	CompressionJPEG
)

// CodecFeature is a bit in the feature set a codec advertises for
// reading or writing.
type CodecFeature uint32

const (
	CodecFeatureStatic CodecFeature = 1 << iota
	CodecFeatureAnimated
	CodecFeatureMultiPaged
	CodecFeatureMetaData
	CodecFeatureInterlaced
)

// ImageProperty is a bit describing how an image is laid out on disk.
type ImageProperty uint32

// IOOption selects optional session-level behavior derived from a
// codec's features.
type IOOption uint32

const (
	CodecFeatureInterlacedProp ImageProperty = 1 << iota
)

const (
	IOOptionMetaData IOOption = 1 << iota
	IOOptionICCProfile
)

// ReadFeatures describes what a codec can produce when reading, parsed
// from a descriptor's [read-features] section.
type ReadFeatures struct {
	OutputPixelFormats         []PixelFormat
	PreferredOutputPixelFormat PixelFormat
	Features                   CodecFeature
}

// WriteFeatures describes what a codec can produce when writing,
// parsed from a descriptor's [write-features] section. It embeds
// ReadFeatures' shape (output pixel formats + features) plus the
// compression and property fields specific to writing.
type WriteFeatures struct {
	OutputPixelFormats         []PixelFormat
	PreferredOutputPixelFormat PixelFormat
	Features                   CodecFeature

	Compressions            []Compression
	DefaultCompression      Compression
	CompressionLevelMin     float64
	CompressionLevelMax     float64
	CompressionLevelDefault float64
	CompressionLevelStep    float64

	Properties ImageProperty
}

// ReadOptions is the per-session read configuration, derived from a
// codec's ReadFeatures or supplied explicitly by the caller.
type ReadOptions struct {
	IOOptions IOOption
}

// WriteOptions is the per-session write configuration.
type WriteOptions struct {
	IOOptions        IOOption
	Compression      Compression
	CompressionLevel float64
}

// AllocReadOptionsFromFeatures synthesizes a sane default read
// configuration that enables every flag the codec advertises.
func AllocReadOptionsFromFeatures(rf *ReadFeatures) (*ReadOptions, error) {
	if rf == nil {
		return nil, newError("AllocReadOptionsFromFeatures", StatusNullPtr)
	}
	opts := &ReadOptions{}
	if rf.Features&CodecFeatureMetaData != 0 {
		opts.IOOptions |= IOOptionMetaData
	}
	opts.IOOptions |= IOOptionICCProfile
	return opts, nil
}

// AllocWriteOptionsFromFeatures synthesizes write options with the
// codec's default compression and level.
func AllocWriteOptionsFromFeatures(wf *WriteFeatures) (*WriteOptions, error) {
	if wf == nil {
		return nil, newError("AllocWriteOptionsFromFeatures", StatusNullPtr)
	}
	opts := &WriteOptions{
		Compression:      wf.DefaultCompression,
		CompressionLevel: wf.CompressionLevelDefault,
	}
	if wf.Features&CodecFeatureMetaData != 0 {
		opts.IOOptions |= IOOptionMetaData
	}
	opts.IOOptions |= IOOptionICCProfile
	return opts, nil
}

// CopyReadOptions deep-copies read options (no heap-aliased fields
// today, but kept symmetric with CopyWriteOptions and the image/
// meta-data copy helpers, which never alias caller-visible memory).
func CopyReadOptions(o *ReadOptions) *ReadOptions {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// CopyWriteOptions deep-copies write options.
func CopyWriteOptions(o *WriteOptions) *WriteOptions {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// ValidateWriteOptions checks that the chosen compression is one the
// codec lists, and that a non-zero level falls within [min, max]. A
// codec whose min and max are both zero is "type-only" and its level
// is never range-checked.
func ValidateWriteOptions(wf *WriteFeatures, o *WriteOptions) error {
	if wf == nil || o == nil {
		return newError("ValidateWriteOptions", StatusNullPtr)
	}

	found := false
	for _, c := range wf.Compressions {
		if c == o.Compression {
			found = true
			break
		}
	}
	if !found {
		return newError("ValidateWriteOptions", StatusUnsupportedCompression)
	}

	if wf.CompressionLevelMin == 0 && wf.CompressionLevelMax == 0 {
		return nil
	}
	if o.CompressionLevel != 0 &&
		(o.CompressionLevel < wf.CompressionLevelMin || o.CompressionLevel > wf.CompressionLevelMax) {
		return newError("ValidateWriteOptions", StatusInvalidArgument)
	}
	return nil
}
