// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !unix

package sail

import "os"

// lockFile is a no-op on non-POSIX platforms; the write session still
// holds the *os.File handle exclusively for its own lifetime.
func lockFile(f *os.File) (func() error, error) {
	return func() error { return nil }, nil
}
