// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"regexp"
	"strings"
)

// Priority orders codecs that tie on extension or MIME-type lookup.
// Higher-priority codecs are tried first.
type Priority int

// Priority values, lowest first; a larger value is tried earlier.
const (
	PriorityUnknown Priority = iota
	PriorityLowest
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityHighest
)

var priorityNames = map[string]Priority{
	"lowest":  PriorityLowest,
	"low":     PriorityLow,
	"medium":  PriorityMedium,
	"high":    PriorityHigh,
	"highest": PriorityHighest,
}

// ParsePriority parses a descriptor's priority string. Unknown
// priority names are reported as StatusUnsupportedCodecPriority
// rather than silently defaulting to MEDIUM.
func ParsePriority(s string) (Priority, error) {
	p, ok := priorityNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return PriorityUnknown, newError("ParsePriority", StatusUnsupportedCodecPriority)
	}
	return p, nil
}

// Less reports whether p sorts after other for tie-breaking purposes
// (lower Priority value == tried later).
func (p Priority) Less(other Priority) bool { return p < other }

// CodecLayoutV6 is the plugin ABI version a codec targets. Only layout 6
// is accepted.
const CodecLayoutV6 = 6

// MagicBufferSize bounds the probe read and the longest accepted
// magic-number pattern (3*MagicBufferSize-1 hex-with-wildcard chars).
const MagicBufferSize = 16

var codecNamePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// CodecInfo is the immutable descriptor for one image format and its
// plugin binary, parsed from a codec's .conf file.
type CodecInfo struct {
	Layout      int
	Version     string
	Name        string
	Description string
	Priority    Priority

	Extensions   []string
	MIMETypes    []string
	MagicNumbers []string

	Path string

	ReadFeatures  ReadFeatures
	WriteFeatures WriteFeatures
}

// Validate checks every invariant a parsed CodecInfo must satisfy,
// returning StatusIncompleteCodecInfo (or StatusUnsupportedCodecLayout
// for the layout mismatch) on the first violation found.
func (ci *CodecInfo) Validate() error {
	if ci.Layout != CodecLayoutV6 {
		return newError("CodecInfo.Validate", StatusUnsupportedCodecLayout)
	}
	if ci.Name == "" {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	if !codecNamePattern.MatchString(ci.Name) {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	if ci.Version == "" {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	if ci.Description == "" {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	if len(ci.Extensions) == 0 && len(ci.MIMETypes) == 0 && len(ci.MagicNumbers) == 0 {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}

	wf := ci.WriteFeatures
	writesFrames := wf.Features&(CodecFeatureStatic|CodecFeatureAnimated|CodecFeatureMultiPaged) != 0
	if writesFrames && len(wf.OutputPixelFormats) == 0 {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	for _, pf := range wf.OutputPixelFormats {
		if pf == PixelFormatUnknown {
			return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
		}
	}
	if wf.Features != 0 && len(wf.Compressions) == 0 {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	if len(wf.Compressions) > 1 && (wf.CompressionLevelMin != 0 || wf.CompressionLevelMax != 0) {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	for _, c := range wf.Compressions {
		if c == CompressionUnknown {
			return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
		}
	}
	if wf.Features != 0 && wf.DefaultCompression == CompressionUnknown {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}
	found := wf.DefaultCompression == CompressionUnknown && wf.Features == 0
	for _, c := range wf.Compressions {
		if c == wf.DefaultCompression {
			found = true
		}
	}
	if !found {
		return newError("CodecInfo.Validate", StatusIncompleteCodecInfo)
	}

	return nil
}
