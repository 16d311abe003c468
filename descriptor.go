// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"strconv"
	"strings"

	"github.com/JoniSt/sail-go/log"
	ini "gopkg.in/ini.v1"
)

// known keys per section, the Go expression of inih_handler_sail_error's
// strcmp ladder: anything else is StatusParseFile.
var codecSectionKeys = map[string]bool{
	"layout": true, "version": true, "priority": true, "name": true,
	"description": true, "magic-numbers": true, "extensions": true,
	"mime-types": true,
}

var readFeaturesSectionKeys = map[string]bool{
	"features": true,
}

var writeFeaturesSectionKeys = map[string]bool{
	"features": true, "output-pixel-formats": true, "properties": true,
	"compression-types": true, "default-compression": true,
	"compression-level-min": true, "compression-level-max": true,
	"compression-level-default": true, "compression-level-step": true,
}

// splitList splits a semicolon-separated descriptor list value,
// dropping empty entries silently.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// parseDescriptor parses one codec descriptor file, returning a fully
// validated CodecInfo or a tagged Status error. path is the descriptor
// file's own path; the codec's shared-module path is derived from it
// by the caller (registry.go).
func parseDescriptor(path string, logger *log.Helper) (*CodecInfo, error) {
	// List values are semicolon-separated, so ';' must not start an
	// inline comment.
	cfg, err := ini.LoadSources(ini.LoadOptions{AllowNonUniqueSections: false, IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, wrapError("parseDescriptor", StatusOpenFile, err)
	}

	ci := &CodecInfo{}

	for _, section := range cfg.Sections() {
		name := section.Name()
		if name == ini.DefaultSection {
			if len(section.Keys()) == 0 {
				continue
			}
			return nil, newError("parseDescriptor", StatusParseFile)
		}

		var allowed map[string]bool
		switch name {
		case "codec":
			allowed = codecSectionKeys
		case "read-features":
			allowed = readFeaturesSectionKeys
		case "write-features":
			allowed = writeFeaturesSectionKeys
		default:
			logger.Errorf("unsupported codec info section '%s'", name)
			return nil, newError("parseDescriptor", StatusParseFile)
		}

		for _, key := range section.Keys() {
			value := key.Value()
			// Empty values are silently ignored.
			if value == "" {
				continue
			}
			if !allowed[key.Name()] {
				logger.Errorf("unsupported codec info key '%s' in [%s]", key.Name(), name)
				return nil, newError("parseDescriptor", StatusParseFile)
			}
			if err := applyDescriptorKey(ci, name, key.Name(), value, logger); err != nil {
				return nil, err
			}
		}
	}

	if ci.Layout != CodecLayoutV6 {
		logger.Errorf("unsupported codec layout version %d in %s", ci.Layout, path)
		return nil, newError("parseDescriptor", StatusUnsupportedCodecLayout)
	}

	if err := ci.Validate(); err != nil {
		logger.Errorf("codec validation error for %s: %v", path, err)
		return nil, err
	}

	return ci, nil
}

func applyDescriptorKey(ci *CodecInfo, section, key, value string, logger *log.Helper) error {
	switch section {
	case "codec":
		switch key {
		case "layout":
			n, err := strconv.Atoi(value)
			if err != nil {
				logger.Errorf("failed to parse layout: '%s'", value)
				return newError("applyDescriptorKey", StatusParseFile)
			}
			ci.Layout = n
		case "version":
			ci.Version = value
		case "priority":
			p, err := ParsePriority(value)
			if err != nil {
				logger.Errorf("failed to parse codec priority: '%s'", value)
				return err
			}
			ci.Priority = p
		case "name":
			ci.Name = value
		case "description":
			ci.Description = value
		case "magic-numbers":
			magics := lowerAll(splitList(value))
			maxLen := 3*MagicBufferSize - 1
			for _, m := range magics {
				if len(m) > maxLen {
					logger.Errorf("magic number '%s' is too long. Magic numbers for the '%s' codec are disabled", m, ci.Name)
					magics = nil
					break
				}
			}
			ci.MagicNumbers = magics
		case "extensions":
			ci.Extensions = lowerAll(splitList(value))
		case "mime-types":
			ci.MIMETypes = lowerAll(splitList(value))
		}
	case "read-features":
		switch key {
		case "features":
			ci.ReadFeatures.Features = ParseCodecFeatureFlags(value)
		}
	case "write-features":
		switch key {
		case "features":
			ci.WriteFeatures.Features = ParseCodecFeatureFlags(value)
		case "output-pixel-formats":
			for _, name := range splitList(value) {
				ci.WriteFeatures.OutputPixelFormats = append(ci.WriteFeatures.OutputPixelFormats, ParsePixelFormat(name))
			}
		case "properties":
			ci.WriteFeatures.Properties = ParseImagePropertyFlags(value)
		case "compression-types":
			for _, name := range splitList(value) {
				ci.WriteFeatures.Compressions = append(ci.WriteFeatures.Compressions, ParseCompression(name))
			}
		case "default-compression":
			ci.WriteFeatures.DefaultCompression = ParseCompression(value)
		case "compression-level-min":
			f, _ := strconv.ParseFloat(value, 64)
			ci.WriteFeatures.CompressionLevelMin = f
		case "compression-level-max":
			f, _ := strconv.ParseFloat(value, 64)
			ci.WriteFeatures.CompressionLevelMax = f
		case "compression-level-default":
			f, _ := strconv.ParseFloat(value, 64)
			ci.WriteFeatures.CompressionLevelDefault = f
		case "compression-level-step":
			f, _ := strconv.ParseFloat(value, 64)
			ci.WriteFeatures.CompressionLevelStep = f
		}
	}
	return nil
}
