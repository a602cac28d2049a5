package asset

import (
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const unnamed = "unnamed"

// SanitizeKey turns a user supplied filename into a safe object key: the
// base name is slugged and the extension lowercased. Directory parts are
// dropped.
func SanitizeKey(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	base = slug.Make(base)
	ext = strings.ToLower(slug.Make(strings.TrimPrefix(ext, ".")))
	if base == "" {
		base = unnamed
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// UniqueFilename appends a random suffix to the base name of a sanitised
// key, keeping the extension.
func UniqueFilename(key string) string {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return base + "_" + suffix + ext
}

// metadataFilename escapes a filename for object metadata headers, which
// only carry ASCII.
func metadataFilename(filename string) string {
	if escaped := url.PathEscape(filename); escaped != "" {
		return escaped
	}
	return unnamed
}
