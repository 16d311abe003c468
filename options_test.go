// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocReadOptionsFromFeatures(t *testing.T) {
	rf := &ReadFeatures{Features: CodecFeatureMetaData}
	opts, err := AllocReadOptionsFromFeatures(rf)
	require.NoError(t, err)
	require.NotZero(t, opts.IOOptions&IOOptionMetaData)
	require.NotZero(t, opts.IOOptions&IOOptionICCProfile)
}

func TestAllocReadOptionsFromFeaturesNil(t *testing.T) {
	_, err := AllocReadOptionsFromFeatures(nil)
	require.Equal(t, StatusNullPtr, StatusOf(err))
}

func TestAllocWriteOptionsFromFeatures(t *testing.T) {
	wf := &WriteFeatures{
		DefaultCompression:     CompressionDeflate,
		CompressionLevelDefault: 6,
	}
	opts, err := AllocWriteOptionsFromFeatures(wf)
	require.NoError(t, err)
	require.Equal(t, CompressionDeflate, opts.Compression)
	require.Equal(t, 6.0, opts.CompressionLevel)
}

func TestCopyOptionsDeepCopy(t *testing.T) {
	o := &ReadOptions{IOOptions: IOOptionMetaData}
	cp := CopyReadOptions(o)
	cp.IOOptions = 0
	require.Equal(t, IOOptionMetaData, o.IOOptions)

	require.Nil(t, CopyReadOptions(nil))
	require.Nil(t, CopyWriteOptions(nil))
}

func TestValidateWriteOptionsCompressionMembership(t *testing.T) {
	wf := &WriteFeatures{Compressions: []Compression{CompressionDeflate}}
	err := ValidateWriteOptions(wf, &WriteOptions{Compression: CompressionLZW})
	require.Equal(t, StatusUnsupportedCompression, StatusOf(err))
}

func TestValidateWriteOptionsLevelRange(t *testing.T) {
	wf := &WriteFeatures{
		Compressions:        []Compression{CompressionDeflate},
		CompressionLevelMin: 1,
		CompressionLevelMax: 9,
	}

	require.NoError(t, ValidateWriteOptions(wf, &WriteOptions{Compression: CompressionDeflate, CompressionLevel: 5}))

	err := ValidateWriteOptions(wf, &WriteOptions{Compression: CompressionDeflate, CompressionLevel: 50})
	require.Equal(t, StatusInvalidArgument, StatusOf(err))
}

func TestValidateWriteOptionsTypeOnlySkipsLevelCheck(t *testing.T) {
	wf := &WriteFeatures{Compressions: []Compression{CompressionNone}}
	err := ValidateWriteOptions(wf, &WriteOptions{Compression: CompressionNone, CompressionLevel: 99999})
	require.NoError(t, err)
}
