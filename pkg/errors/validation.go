package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// projectIDRegex matches project ids: URL-safe, starting with a letter or
// digit, at most 64 characters.
var projectIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateProjectID validates a project id used in URLs, cache keys and
// storage documents.
func ValidateProjectID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidProject, "project id cannot be empty")
	}
	if !projectIDRegex.MatchString(id) {
		return New(ErrCodeInvalidProject, "invalid project id: %q", id)
	}
	return nil
}

// ValidateAssetFilename validates a stored asset name for safety.
// It ensures the name is a simple basename without path components.
func ValidateAssetFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidAsset, "asset filename cannot be empty")
	}

	if len(filename) > 256 {
		return New(ErrCodeInvalidAsset, "asset filename too long (max 256 characters)")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidAsset, "asset filename cannot contain path separators")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidAsset, "asset filename contains invalid control characters")
		}
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidAsset, "asset filename cannot be a hidden file")
	}

	return nil
}

// ValidateSelector validates an instance selector: a non-empty path of
// distinct, non-empty instance ids.
func ValidateSelector(selector []string) error {
	if len(selector) == 0 {
		return New(ErrCodeInvalidSelector, "selector cannot be empty")
	}

	const maxDepth = 256
	if len(selector) > maxDepth {
		return New(ErrCodeInvalidSelector, "selector too deep (max %d)", maxDepth)
	}

	seen := make(map[string]struct{}, len(selector))
	for _, id := range selector {
		if id == "" {
			return New(ErrCodeInvalidSelector, "selector contains an empty id")
		}
		if _, dup := seen[id]; dup {
			return New(ErrCodeInvalidSelector, "selector visits %q twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	// Must not be absolute path
	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	// Check for path traversal
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	// No backslashes (potential Windows path injection)
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
