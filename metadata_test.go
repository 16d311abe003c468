// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestDecodeMetaDataStringUTF8(t *testing.T) {
	s, err := DecodeMetaDataString([]byte("hello"), TextEncodingUTF8)
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestDecodeMetaDataStringUTF16LE(t *testing.T) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	raw, err := encoder.Bytes([]byte("hi"))
	require.NoError(t, err)
	raw = append(raw, 0, 0)

	s, err := DecodeMetaDataString(raw, TextEncodingUTF16LE)
	require.NoError(t, err)
	require.Equal(t, "hi", s)
}

func TestDecodeMetaDataStringEmptyUTF16(t *testing.T) {
	s, err := DecodeMetaDataString([]byte{0, 0}, TextEncodingUTF16LE)
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestDecodeMetaDataStringLatin1(t *testing.T) {
	s, err := DecodeMetaDataString([]byte{0xE9}, TextEncodingLatin1) // é
	require.NoError(t, err)
	require.Equal(t, "é", s)
}

func TestFindMetaData(t *testing.T) {
	nodes := []MetaDataNode{NewKnownStringMetaData(MetaDataKeyComment, "hi")}
	v, ok := FindMetaData(nodes, "Comment")
	require.True(t, ok)
	require.Equal(t, "hi", string(v))

	_, ok = FindMetaData(nodes, "Missing")
	require.False(t, ok)
}

func TestFindMetaDataUnknownKey(t *testing.T) {
	nodes := []MetaDataNode{NewUnknownStringMetaData("X-Custom", "value")}
	v, ok := FindMetaData(nodes, "X-Custom")
	require.True(t, ok)
	require.Equal(t, "value", string(v))

	_, ok = FindMetaData(nodes, "X-Other")
	require.False(t, ok)
}

func TestMetaDataToFromStringRoundTrip(t *testing.T) {
	for key := range metaDataKeyStrings {
		s, err := MetaDataToString(key)
		require.NoError(t, err)
		require.Equal(t, key, MetaDataFromString(s))
	}
}

func TestMetaDataFromStringUnknown(t *testing.T) {
	require.Equal(t, MetaDataKeyUnknown, MetaDataFromString("NotARealKey"))
}

func TestCopyImageDeepCopy(t *testing.T) {
	img := &Image{
		Width:  1,
		Height: 1,
		Pixels: []byte{1, 2, 3},
		Palette: &Palette{
			PixelFormat: PixelFormatBPP8Indexed,
			Data:        []byte{4, 5},
		},
		MetaData: []MetaDataNode{NewUnknownDataMetaData("k", []byte{9})},
	}

	cp := CopyImage(img)
	cp.Pixels[0] = 0xFF
	cp.Palette.Data[0] = 0xFF
	cp.MetaData[0].Value[0] = 0xFF

	require.Equal(t, byte(1), img.Pixels[0])
	require.Equal(t, byte(4), img.Palette.Data[0])
	require.Equal(t, byte(9), img.MetaData[0].Value[0])
}

func TestCopyImageNil(t *testing.T) {
	require.Nil(t, CopyImage(nil))
}

func TestToFromSailImageDeepCopy(t *testing.T) {
	img := &Image{Width: 2, Height: 1, Pixels: []byte{1, 2}}

	out := ToSailImage(img)
	out.Pixels[0] = 0xFF
	require.Equal(t, byte(1), img.Pixels[0])

	in := FromSailImage(img)
	in.Pixels[0] = 0xFF
	require.Equal(t, byte(1), img.Pixels[0])
}
