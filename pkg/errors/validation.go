package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateFieldName validates a metadata column name used as a sort key or
// caption field. Column names come from user spreadsheets, so only
// control characters and absurd lengths are rejected.
func ValidateFieldName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidSortKey, "field name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidSortKey, "field name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSortKey, "field name contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates the path a job writes its result to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//   - Must carry an extension (it selects the exporter)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if filepath.Ext(path) == "" {
		return New(ErrCodeInvalidPath, "output path %q has no extension", path)
	}

	return nil
}

// ValidateAssetPath validates a relative asset path written into an SVG
// archive. It prevents path traversal and absolute paths inside ZIP entries.
func ValidateAssetPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "asset path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "asset path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "asset path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "asset path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "asset path cannot contain backslashes")
	}

	return nil
}

// customSizeRegex matches WIDTHxHEIGHT page sizes.
var customSizeRegex = regexp.MustCompile(`^\s*(\d+)\s*[xX]\s*(\d+)\s*$`)

// MatchCustomSize reports whether s looks like a WIDTHxHEIGHT pair and
// returns the two numeric parts.
func MatchCustomSize(s string) (w, h string, ok bool) {
	m := customSizeRegex.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
