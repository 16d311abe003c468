// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/JoniSt/sail-go/log"
)

// envCodecsPath and envThirdPartyCodecsPath name the environment
// variables InitRegistry consults when no explicit search paths are
// given, checked in this order; an unset SAIL_CODECS_PATH is replaced
// by the built-in default directory.
const (
	envCodecsPath           = "SAIL_CODECS_PATH"
	envThirdPartyCodecsPath = "SAIL_THIRD_PARTY_CODECS_PATH"
)

// descriptorExt is the file extension a codec descriptor must carry to
// be picked up by a registry scan.
const descriptorExt = ".conf"

// registryEntry pairs a parsed CodecInfo with the discovery order it
// was found in, used only to break priority ties deterministically.
type registryEntry struct {
	info    *CodecInfo
	ordinal int
}

// Registry is the process-wide table of known codecs, built once from
// one or more codec search paths. The zero value is not usable; obtain
// one through InitRegistry.
type Registry struct {
	mu sync.RWMutex

	byName      map[string]*registryEntry
	byExtension map[string][]*registryEntry
	byMIME      map[string][]*registryEntry
	byMagic     []*registryEntry // linear scan, longest-prefix match

	logger *log.Helper
}

var (
	globalRegistry   *Registry
	globalRegistryMu sync.Mutex
)

// defaultLogger is shared by registry and loader until a caller wires
// in its own sink, writing errors-and-above to stderr by default.
var defaultLogger = log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelError)))

// InitRegistry builds the process-wide registry by scanning
// searchPaths (and, when empty, SAIL_CODECS_PATH or else the built-in
// default directory, then SAIL_THIRD_PARTY_CODECS_PATH) for codec
// descriptors. It may be
// called exactly once per process; subsequent calls return
// StatusAlreadyInitialized without rescanning.
func InitRegistry(searchPaths ...string) error {
	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()

	if globalRegistry != nil {
		return newError("InitRegistry", StatusAlreadyInitialized)
	}

	paths := searchPaths
	if len(paths) == 0 {
		paths = defaultSearchPaths()
	}

	r := &Registry{
		byName:      make(map[string]*registryEntry),
		byExtension: make(map[string][]*registryEntry),
		byMIME:      make(map[string][]*registryEntry),
		logger:      defaultLogger,
	}

	ordinal := 0
	for _, dir := range paths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			r.logger.Warnf("skipping codec search path %q: %v", dir, err)
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, de := range entries {
			if de.IsDir() || !strings.HasSuffix(de.Name(), descriptorExt) {
				continue
			}
			descPath := filepath.Join(dir, de.Name())
			ci, err := parseDescriptor(descPath, r.logger)
			if err != nil {
				r.logger.Errorf("skipping codec descriptor %q: %v", descPath, err)
				continue
			}
			ci.Path = derivePluginPath(descPath)
			if err := r.add(ci, ordinal); err != nil {
				r.logger.Errorf("skipping codec descriptor %q: %v", descPath, err)
				continue
			}
			ordinal++
		}
	}

	globalRegistry = r
	return nil
}

func defaultSearchPaths() []string {
	const defaultCodecsPath = "/usr/local/share/sail/codecs"
	var paths []string
	if p := os.Getenv(envCodecsPath); p != "" {
		paths = append(paths, filepath.SplitList(p)...)
	} else {
		paths = append(paths, defaultCodecsPath)
	}
	if p := os.Getenv(envThirdPartyCodecsPath); p != "" {
		paths = append(paths, filepath.SplitList(p)...)
	}
	return paths
}

// derivePluginPath turns a descriptor's own path into the shared-module
// path the loader dlopens, replacing the .conf suffix with the
// platform's shared-library suffix.
func derivePluginPath(descPath string) string {
	base := strings.TrimSuffix(descPath, descriptorExt)
	return base + sharedLibSuffix
}

func (r *Registry) add(ci *CodecInfo, ordinal int) error {
	if _, exists := r.byName[ci.Name]; exists {
		return newError("Registry.add", StatusIncompleteCodecInfo)
	}
	e := &registryEntry{info: ci, ordinal: ordinal}
	r.byName[ci.Name] = e
	for _, ext := range ci.Extensions {
		r.byExtension[ext] = append(r.byExtension[ext], e)
	}
	for _, m := range ci.MIMETypes {
		r.byMIME[m] = append(r.byMIME[m], e)
	}
	if len(ci.MagicNumbers) > 0 {
		r.byMagic = append(r.byMagic, e)
	}
	return nil
}

func bestEntry(entries []*registryEntry) *CodecInfo {
	if len(entries) == 0 {
		return nil
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.info.Priority > best.info.Priority ||
			(e.info.Priority == best.info.Priority && e.ordinal < best.ordinal) {
			best = e
		}
	}
	return best.info
}

// registry returns the process-wide registry, or an error if
// InitRegistry has not run yet.
func registry() (*Registry, error) {
	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()
	if globalRegistry == nil {
		return nil, newError("registry", StatusInvalidArgument)
	}
	return globalRegistry, nil
}

// FindCodecByName looks up a codec by its exact descriptor name.
func FindCodecByName(name string) (*CodecInfo, error) {
	r, err := registry()
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[name]
	if !ok {
		return nil, newError("FindCodecByName", StatusUnsupportedFormat)
	}
	return e.info, nil
}

// FindCodecByExtension looks up the highest-priority codec registered
// for ext (case-insensitive, leading dot optional).
func FindCodecByExtension(ext string) (*CodecInfo, error) {
	r, err := registry()
	if err != nil {
		return nil, err
	}
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	r.mu.RLock()
	defer r.mu.RUnlock()
	ci := bestEntry(r.byExtension[ext])
	if ci == nil {
		return nil, newError("FindCodecByExtension", StatusUnsupportedFormat)
	}
	return ci, nil
}

// FindCodecByMIMEType looks up the highest-priority codec registered
// for mime.
func FindCodecByMIMEType(mime string) (*CodecInfo, error) {
	r, err := registry()
	if err != nil {
		return nil, err
	}
	mime = strings.ToLower(mime)
	r.mu.RLock()
	defer r.mu.RUnlock()
	ci := bestEntry(r.byMIME[mime])
	if ci == nil {
		return nil, newError("FindCodecByMIMEType", StatusUnsupportedFormat)
	}
	return ci, nil
}

// FindCodecByMagicNumber scans buf (typically the first MagicBufferSize
// bytes of a stream) against every registered magic-number pattern,
// returning the highest-priority, longest match. Patterns are matched
// as lower-cased hex prefixes of buf; ties break on pattern length then
// priority then discovery order.
func FindCodecByMagicNumber(buf []byte) (*CodecInfo, error) {
	r, err := registry()
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *registryEntry
	var bestLen int
	for _, e := range r.byMagic {
		for _, m := range e.info.MagicNumbers {
			if !magicMatches(m, buf) {
				continue
			}
			if best == nil || len(m) > bestLen ||
				(len(m) == bestLen && (e.info.Priority > best.info.Priority ||
					(e.info.Priority == best.info.Priority && e.ordinal < best.ordinal))) {
				best = e
				bestLen = len(m)
			}
		}
	}
	if best == nil {
		return nil, newError("FindCodecByMagicNumber", StatusUnsupportedFormat)
	}
	return best.info, nil
}

// magicMatches reports whether pattern (a lower-cased hex string, '?'
// standing in for any nibble) matches the leading bytes of buf.
func magicMatches(pattern string, buf []byte) bool {
	hexBuf := make([]byte, 0, len(buf)*2)
	for _, b := range buf {
		hexBuf = append(hexBuf, lowerHexDigits[b>>4], lowerHexDigits[b&0xf])
	}
	if len(pattern) > len(hexBuf) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '?' {
			continue
		}
		if pattern[i] != hexBuf[i] {
			return false
		}
	}
	return true
}

var lowerHexDigits = []byte("0123456789abcdef")

// Enumerate returns every registered codec, ordered by descending
// Priority then ascending discovery order, for the list-codecs CLI
// surface and tests.
func Enumerate() ([]*CodecInfo, error) {
	r, err := registry()
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*registryEntry, 0, len(r.byName))
	for _, e := range r.byName {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].info.Priority != entries[j].info.Priority {
			return entries[i].info.Priority > entries[j].info.Priority
		}
		return entries[i].ordinal < entries[j].ordinal
	})
	out := make([]*CodecInfo, len(entries))
	for i, e := range entries {
		out[i] = e.info
	}
	return out, nil
}

// TeardownRegistry discards the process-wide registry so a subsequent
// InitRegistry call can rebuild it from scratch. It exists only for
// tests: production code never calls it. Registry re-init is a
// test-only escape hatch, not a supported runtime operation.
func TeardownRegistry() {
	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()
	globalRegistry = nil
	UnloadAll()
}
