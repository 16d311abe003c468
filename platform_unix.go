// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build linux

package sail

// sharedLibSuffix is the shared-library extension dlopen expects on
// this platform.
const sharedLibSuffix = ".so"
