// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validCodecInfo() *CodecInfo {
	return &CodecInfo{
		Layout:      CodecLayoutV6,
		Version:     "1.0.0",
		Name:        "FOOBAR",
		Description: "Foobar image format",
		Extensions:  []string{"foo"},
		WriteFeatures: WriteFeatures{
			Features:           CodecFeatureStatic,
			OutputPixelFormats: []PixelFormat{PixelFormatBPP24RGB},
			Compressions:       []Compression{CompressionNone},
			DefaultCompression: CompressionNone,
		},
	}
}

func TestCodecInfoValidateAccepts(t *testing.T) {
	require.NoError(t, validCodecInfo().Validate())
}

func TestCodecInfoValidateRejectsBadLayout(t *testing.T) {
	ci := validCodecInfo()
	ci.Layout = 5
	require.Equal(t, StatusUnsupportedCodecLayout, StatusOf(ci.Validate()))
}

func TestCodecInfoValidateRejectsLowercaseName(t *testing.T) {
	ci := validCodecInfo()
	ci.Name = "foobar"
	require.Equal(t, StatusIncompleteCodecInfo, StatusOf(ci.Validate()))
}

func TestCodecInfoValidateRejectsNoIdentifiers(t *testing.T) {
	ci := validCodecInfo()
	ci.Extensions = nil
	require.Equal(t, StatusIncompleteCodecInfo, StatusOf(ci.Validate()))
}

func TestCodecInfoValidateRejectsUnknownCompressionInList(t *testing.T) {
	ci := validCodecInfo()
	ci.WriteFeatures.Compressions = []Compression{CompressionUnknown}
	require.Equal(t, StatusIncompleteCodecInfo, StatusOf(ci.Validate()))
}

func TestCodecInfoValidateRejectsDefaultCompressionNotInList(t *testing.T) {
	ci := validCodecInfo()
	ci.WriteFeatures.DefaultCompression = CompressionJPEG
	require.Equal(t, StatusIncompleteCodecInfo, StatusOf(ci.Validate()))
}

func TestCodecInfoValidateRejectsMultiCompressionWithLevelRange(t *testing.T) {
	ci := validCodecInfo()
	ci.WriteFeatures.Compressions = []Compression{CompressionNone, CompressionDeflate}
	ci.WriteFeatures.DefaultCompression = CompressionNone
	ci.WriteFeatures.CompressionLevelMin = 1
	ci.WriteFeatures.CompressionLevelMax = 9
	require.Equal(t, StatusIncompleteCodecInfo, StatusOf(ci.Validate()))
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("High")
	require.NoError(t, err)
	require.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("bogus")
	require.Equal(t, StatusUnsupportedCodecPriority, StatusOf(err))
}

func TestPriorityLess(t *testing.T) {
	require.True(t, PriorityLow.Less(PriorityHigh))
	require.False(t, PriorityHigh.Less(PriorityLow))
}
