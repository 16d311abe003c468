// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package sail

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// MetaDataKey tags a meta-data node's well-known kind. MetaDataKeyUnknown
// is the zero value, used for any key a codec reports that isn't one of
// the well-known ones below.
type MetaDataKey int

// A small, representative subset of meta-data keys; codecs report
// whichever of these (or an unknown key, carried in KeyUnknownName)
// their format actually supports.
const (
	MetaDataKeyUnknown MetaDataKey = iota
	MetaDataKeyAuthor
	MetaDataKeyComment
	MetaDataKeyCopyright
	MetaDataKeyCreationTime
	MetaDataKeyDescription
	MetaDataKeySoftware
	MetaDataKeyTitle
)

var metaDataKeyStrings = map[MetaDataKey]string{
	MetaDataKeyAuthor:       "Author",
	MetaDataKeyComment:      "Comment",
	MetaDataKeyCopyright:    "Copyright",
	MetaDataKeyCreationTime: "CreationTime",
	MetaDataKeyDescription:  "Description",
	MetaDataKeySoftware:     "Software",
	MetaDataKeyTitle:        "Title",
}

var metaDataStringKeys = func() map[string]MetaDataKey {
	m := make(map[string]MetaDataKey, len(metaDataKeyStrings))
	for k, s := range metaDataKeyStrings {
		m[s] = k
	}
	return m
}()

// MetaDataToString converts a well-known key to its canonical string
// form. MetaDataKeyUnknown has no string form of its own; callers
// needing an unknown key's name read it from the node's
// KeyUnknownName field instead.
func MetaDataToString(key MetaDataKey) (string, error) {
	if s, ok := metaDataKeyStrings[key]; ok {
		return s, nil
	}
	return "", newError("MetaDataToString", StatusInvalidArgument)
}

// MetaDataFromString is MetaDataToString's inverse. A name that
// doesn't match any well-known key yields MetaDataKeyUnknown rather
// than an error; the caller is expected to keep the original name
// around as KeyUnknownName.
func MetaDataFromString(s string) MetaDataKey {
	if k, ok := metaDataStringKeys[s]; ok {
		return k
	}
	return MetaDataKeyUnknown
}

// MetaDataValueType distinguishes a node's textual and binary value
// forms.
type MetaDataValueType int

const (
	MetaDataValueTypeString MetaDataValueType = iota
	MetaDataValueTypeData
)

// MetaDataNode is one key/value pair a codec reports or accepts (EXIF
// tags, comments, and similar), kept as an ordered slice rather than
// the linked chain the C layout uses; order is still significant.
// KeyUnknownName is set if and only if Key == MetaDataKeyUnknown.
type MetaDataNode struct {
	Key            MetaDataKey
	KeyUnknownName string
	ValueType      MetaDataValueType
	Value          []byte
}

// NewKnownStringMetaData builds a text-valued node for a well-known key.
func NewKnownStringMetaData(key MetaDataKey, value string) MetaDataNode {
	return MetaDataNode{Key: key, ValueType: MetaDataValueTypeString, Value: []byte(value)}
}

// NewUnknownStringMetaData builds a text-valued node for a key outside
// the well-known set, keeping name as KeyUnknownName.
func NewUnknownStringMetaData(name, value string) MetaDataNode {
	return MetaDataNode{Key: MetaDataKeyUnknown, KeyUnknownName: name, ValueType: MetaDataValueTypeString, Value: []byte(value)}
}

// NewKnownDataMetaData builds a binary-valued node for a well-known key.
func NewKnownDataMetaData(key MetaDataKey, value []byte) MetaDataNode {
	return MetaDataNode{Key: key, ValueType: MetaDataValueTypeData, Value: value}
}

// NewUnknownDataMetaData builds a binary-valued node for a key outside
// the well-known set.
func NewUnknownDataMetaData(name string, value []byte) MetaDataNode {
	return MetaDataNode{Key: MetaDataKeyUnknown, KeyUnknownName: name, ValueType: MetaDataValueTypeData, Value: value}
}

// TextEncoding selects how DecodeMetaDataString interprets a
// meta-data node's raw bytes.
type TextEncoding int

const (
	TextEncodingUTF8 TextEncoding = iota
	TextEncodingUTF16LE
	TextEncodingLatin1
)

// DecodeMetaDataString decodes raw meta-data bytes as enc, covering
// the encodings a codec's text meta-data may arrive in.
func DecodeMetaDataString(raw []byte, enc TextEncoding) (string, error) {
	switch enc {
	case TextEncodingUTF8:
		return string(raw), nil
	case TextEncodingUTF16LE:
		return decodeUTF16String(raw)
	case TextEncodingLatin1:
		decoder := charmap.ISO8859_1.NewDecoder()
		s, err := decoder.Bytes(raw)
		if err != nil {
			return "", wrapError("DecodeMetaDataString", StatusInvalidArgument, err)
		}
		return string(s), nil
	default:
		return "", newError("DecodeMetaDataString", StatusInvalidArgument)
	}
}

// decodeUTF16String decodes a NUL-terminated little-endian UTF-16
// buffer, truncating at the first NUL pair.
func decodeUTF16String(b []byte) (string, error) {
	n := bytes.Index(b, []byte{0, 0})
	if n == 0 {
		return "", nil
	}
	if n < 0 {
		n = len(b) - 1
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	s, err := decoder.Bytes(b[0 : n+1])
	if err != nil {
		return "", wrapError("decodeUTF16String", StatusInvalidArgument, err)
	}
	return string(s), nil
}

// FindMetaData looks up the first node whose key matches name, either
// a well-known key's string form (MetaDataToString) or an unknown
// key's original KeyUnknownName.
func FindMetaData(nodes []MetaDataNode, name string) ([]byte, bool) {
	key := MetaDataFromString(name)
	for _, n := range nodes {
		if key != MetaDataKeyUnknown {
			if n.Key == key {
				return n.Value, true
			}
			continue
		}
		if n.Key == MetaDataKeyUnknown && n.KeyUnknownName == name {
			return n.Value, true
		}
	}
	return nil, false
}
