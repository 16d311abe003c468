// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"os"
	"sync"

	"github.com/ebitengine/purego"
	"go.mozilla.org/pkcs7"
)

// sidecarSignatureExt is the optional PKCS#7 detached-signature sidecar
// a third-party codec module may ship alongside its shared library.
const sidecarSignatureExt = ".p7s"

// loadedPlugin is a dlopen'd codec module, cached for the life of the
// process once loaded.
type loadedPlugin struct {
	handle uintptr
	funcs  pluginFuncs
}

var pluginCache sync.Map // map[*CodecInfo]*loadedPlugin

// loadPlugin dlopens ci.Path (verifying its optional .p7s sidecar
// first, if one is present), resolves the eight mandatory v6 symbols,
// and caches the result keyed by the CodecInfo pointer so repeated
// sessions against the same codec never reopen the library.
func loadPlugin(ci *CodecInfo) (*loadedPlugin, error) {
	if cached, ok := pluginCache.Load(ci); ok {
		return cached.(*loadedPlugin), nil
	}

	if err := verifySidecarSignature(ci.Path); err != nil {
		return nil, err
	}

	handle, err := purego.Dlopen(ci.Path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, wrapError("loadPlugin", StatusCodecLoad, err)
	}

	names := symbolNames(ci.Name)
	var funcs pluginFuncs

	resolve := func(idx int) (uintptr, error) {
		sym, err := purego.Dlsym(handle, names[idx])
		if err != nil {
			return 0, wrapError("loadPlugin", StatusCodecSymbolResolve, err)
		}
		return sym, nil
	}

	symAddrs := make([]uintptr, len(names))
	for i := range names {
		addr, err := resolve(i)
		if err != nil {
			return nil, err
		}
		symAddrs[i] = addr
	}

	purego.RegisterFunc(&funcs.ReadInit, symAddrs[0])
	purego.RegisterFunc(&funcs.ReadSeekNextFrame, symAddrs[1])
	purego.RegisterFunc(&funcs.ReadFrame, symAddrs[2])
	purego.RegisterFunc(&funcs.ReadFinish, symAddrs[3])
	purego.RegisterFunc(&funcs.WriteInit, symAddrs[4])
	purego.RegisterFunc(&funcs.WriteSeekNextFrame, symAddrs[5])
	purego.RegisterFunc(&funcs.WriteFrame, symAddrs[6])
	purego.RegisterFunc(&funcs.WriteFinish, symAddrs[7])

	lp := &loadedPlugin{handle: handle, funcs: funcs}
	actual, _ := pluginCache.LoadOrStore(ci, lp)
	return actual.(*loadedPlugin), nil
}

// verifySidecarSignature checks modulePath+".p7s" against modulePath's
// contents when the sidecar exists. A codec with no sidecar loads
// unverified; signing is opt-in for third-party codecs.
func verifySidecarSignature(modulePath string) error {
	sigPath := modulePath + sidecarSignatureExt
	sigData, err := os.ReadFile(sigPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return wrapError("verifySidecarSignature", StatusOpenFile, err)
	}

	moduleData, err := os.ReadFile(modulePath)
	if err != nil {
		return wrapError("verifySidecarSignature", StatusOpenFile, err)
	}

	p7, err := pkcs7.Parse(sigData)
	if err != nil {
		return wrapError("verifySidecarSignature", StatusCodecLoad, err)
	}
	p7.Content = moduleData
	if err := p7.Verify(); err != nil {
		return wrapError("verifySidecarSignature", StatusCodecLoad, err)
	}
	return nil
}

// UnloadAll closes every cached plugin handle and clears the cache. It
// exists only for tests: production sessions rely on plugins staying
// mapped for the process's life.
func UnloadAll() {
	pluginCache.Range(func(key, value interface{}) bool {
		lp := value.(*loadedPlugin)
		_ = purego.Dlclose(lp.handle)
		pluginCache.Delete(key)
		return true
	})
}
