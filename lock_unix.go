// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build unix

package sail

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory exclusive flock on f for the lifetime of a
// write session, released by the returned function. POSIX-only; other
// platforms rely on the OS's own sharing rules (see lock_other.go).
func lockFile(f *os.File) (func() error, error) {
	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		return nil, err
	}
	return func() error {
		return unix.Flock(fd, unix.LOCK_UN)
	}, nil
}
