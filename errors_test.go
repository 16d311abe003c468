// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusStringRoundTrip(t *testing.T) {
	for status := range statusNames {
		name := StatusString(status)
		got, ok := StatusFromString(name)
		require.True(t, ok)
		require.Equal(t, status, got)
	}
}

func TestStatusStringUnknown(t *testing.T) {
	require.Equal(t, "STATUS_9999", StatusString(Status(9999)))
	_, ok := StatusFromString("NOT_A_REAL_STATUS")
	require.False(t, ok)
}

func TestStatusOfWrapsForeignErrors(t *testing.T) {
	require.Equal(t, StatusOK, StatusOf(nil))
	require.Equal(t, StatusInvalidArgument, StatusOf(errors.New("boom")))

	tagged := newError("op", StatusOpenFile)
	require.Equal(t, StatusOpenFile, StatusOf(tagged))

	wrapped := wrapError("outer", StatusReadIO, tagged)
	require.Equal(t, StatusReadIO, StatusOf(wrapped))
}

func TestIsNoMoreFrames(t *testing.T) {
	require.True(t, IsNoMoreFrames(newError("ReadNextFrame", StatusNoMoreFrames)))
	require.False(t, IsNoMoreFrames(newError("ReadNextFrame", StatusBrokenImage)))
	require.False(t, IsNoMoreFrames(nil))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := wrapError("op", StatusWriteIO, cause)
	require.ErrorIs(t, err, cause)
}
