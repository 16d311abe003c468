// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectCodecByExtension(t *testing.T) {
	resetRegistryForTest(t)

	dir := t.TempDir()
	writeCodecConf(t, dir, "EXTONLY", "extensions = xyz\n")
	require.NoError(t, InitRegistry(dir))

	imgPath := filepath.Join(t.TempDir(), "image.xyz")
	require.NoError(t, os.WriteFile(imgPath, []byte("whatever"), 0644))

	ci, err := detectCodec(PathSource{Path: imgPath})
	require.NoError(t, err)
	require.Equal(t, "EXTONLY", ci.Name)
}

func TestDetectCodecFallsBackToMagic(t *testing.T) {
	resetRegistryForTest(t)

	dir := t.TempDir()
	writeCodecConf(t, dir, "MAGICONLY", "magic-numbers = deadbeef\n")
	require.NoError(t, InitRegistry(dir))

	imgPath := filepath.Join(t.TempDir(), "image.unknownext")
	require.NoError(t, os.WriteFile(imgPath, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}, 0644))

	ci, err := detectCodec(PathSource{Path: imgPath})
	require.NoError(t, err)
	require.Equal(t, "MAGICONLY", ci.Name)
}

func TestDetectCodecShortBuffer(t *testing.T) {
	resetRegistryForTest(t)

	dir := t.TempDir()
	writeCodecConf(t, dir, "SHORTMAGIC", "magic-numbers = ca\n")
	require.NoError(t, InitRegistry(dir))

	ci, err := detectCodec(BytesSource{Data: []byte{0xCA}})
	require.NoError(t, err)
	require.Equal(t, "SHORTMAGIC", ci.Name)
}

func TestDetectCodecUnknownFormat(t *testing.T) {
	resetRegistryForTest(t)
	dir := t.TempDir()
	writeCodecConf(t, dir, "SOMETHING", "magic-numbers = aabb\n")
	require.NoError(t, InitRegistry(dir))

	_, err := detectCodec(BytesSource{Data: []byte{0x11, 0x22, 0x33}})
	require.Equal(t, StatusUnsupportedFormat, StatusOf(err))
}
