// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JoniSt/sail-go/log"
	"github.com/stretchr/testify/require"
)

func writeDescriptor(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test-codec.conf")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func testLogger() *log.Helper {
	return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelFatal)))
}

func TestParseDescriptorValid(t *testing.T) {
	path := writeDescriptor(t, `
[codec]
layout = 6
version = 1.0.0
name = TESTCODEC
description = A test codec
extensions = tc;testcodec
mime-types = image/x-test

[read-features]
features = static meta-data

[write-features]
features = static
output-pixel-formats = bpp24-rgb
compression-types = none
default-compression = none
`)

	ci, err := parseDescriptor(path, testLogger())
	require.NoError(t, err)
	require.Equal(t, "TESTCODEC", ci.Name)
	require.Equal(t, []string{"tc", "testcodec"}, ci.Extensions)
	require.Equal(t, CodecFeatureStatic|CodecFeatureMetaData, ci.ReadFeatures.Features)
	require.Equal(t, []PixelFormat{PixelFormatBPP24RGB}, ci.WriteFeatures.OutputPixelFormats)
}

func TestParseDescriptorUnknownSection(t *testing.T) {
	path := writeDescriptor(t, `
[bogus]
key = value
`)
	_, err := parseDescriptor(path, testLogger())
	require.Equal(t, StatusParseFile, StatusOf(err))
}

func TestParseDescriptorUnknownKey(t *testing.T) {
	path := writeDescriptor(t, `
[codec]
layout = 6
name = TESTCODEC
bogus-key = 1
`)
	_, err := parseDescriptor(path, testLogger())
	require.Equal(t, StatusParseFile, StatusOf(err))
}

func TestParseDescriptorEmptyValueIgnored(t *testing.T) {
	path := writeDescriptor(t, `
[codec]
layout = 6
version = 1.0.0
name = TESTCODEC
description = desc
extensions = tc
priority =
`)
	ci, err := parseDescriptor(path, testLogger())
	require.NoError(t, err)
	require.Equal(t, PriorityUnknown, ci.Priority)
}

func TestParseDescriptorMagicTooLongDropsList(t *testing.T) {
	longMagic := ""
	for i := 0; i < 3*MagicBufferSize; i++ {
		longMagic += "a"
	}
	path := writeDescriptor(t, `
[codec]
layout = 6
version = 1.0.0
name = TESTCODEC
description = desc
magic-numbers = `+longMagic+`
extensions = tc
`)
	ci, err := parseDescriptor(path, testLogger())
	require.NoError(t, err)
	require.Empty(t, ci.MagicNumbers)
}

func TestSplitListDropsEmptyEntries(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitList("a;;b; "))
}
