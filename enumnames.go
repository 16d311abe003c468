// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import "strings"

var pixelFormatNames = map[string]PixelFormat{
	"bpp1-indexed": PixelFormatBPP1Indexed,
	"bpp8-indexed": PixelFormatBPP8Indexed,
	"bpp8-gray":    PixelFormatBPP8Gray,
	"bpp24-rgb":    PixelFormatBPP24RGB,
	"bpp24-bgr":    PixelFormatBPP24BGR,
	"bpp32-rgba":   PixelFormatBPP32RGBA,
	"bpp32-bgra":   PixelFormatBPP32BGRA,
}

// ParsePixelFormat parses a pixel-format name from a descriptor's
// output-pixel-formats list. Unknown names yield PixelFormatUnknown;
// this never fails on its own, invariants on UNKNOWN are enforced
// later by CodecInfo.Validate.
func ParsePixelFormat(s string) PixelFormat {
	return pixelFormatNames[strings.ToLower(strings.TrimSpace(s))]
}

var compressionNames = map[string]Compression{
	"none":    CompressionNone,
	"rle":     CompressionRLE,
	"lzw":     CompressionLZW,
	"deflate": CompressionDeflate,
	"jpeg":    CompressionJPEG,
}

// ParseCompression parses a compression-type name. Unknown names
// yield CompressionUnknown.
func ParseCompression(s string) Compression {
	return compressionNames[strings.ToLower(strings.TrimSpace(s))]
}

var codecFeatureNames = map[string]CodecFeature{
	"static":      CodecFeatureStatic,
	"animated":    CodecFeatureAnimated,
	"multi-paged": CodecFeatureMultiPaged,
	"meta-data":   CodecFeatureMetaData,
	"interlaced":  CodecFeatureInterlaced,
}

// ParseCodecFeatureFlags OR's together every whitespace-separated
// feature name in value, the Go expression of parse_flags().
func ParseCodecFeatureFlags(value string) CodecFeature {
	var flags CodecFeature
	for _, tok := range strings.Fields(value) {
		flags |= codecFeatureNames[strings.ToLower(tok)]
	}
	return flags
}

var imagePropertyNames = map[string]ImageProperty{
	"interlaced": CodecFeatureInterlacedProp,
}

// ParseImagePropertyFlags OR's together every whitespace-separated
// property name in value.
func ParseImagePropertyFlags(value string) ImageProperty {
	var flags ImageProperty
	for _, tok := range strings.Fields(value) {
		flags |= imagePropertyNames[strings.ToLower(tok)]
	}
	return flags
}
