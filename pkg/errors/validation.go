package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxModIDLength bounds mod ids; they end up in file names and cache keys.
const maxModIDLength = 128

// modIDRegex matches the characters mod authors use in ids in practice.
var modIDRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]*$`)

// ValidateModID validates a mod identifier before it becomes a graph or
// cache key.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No whitespace or control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateModID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidModID, "mod id cannot be empty")
	}

	if len(id) > maxModIDLength {
		return New(ErrCodeInvalidModID, "mod id too long (max %d characters)", maxModIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidModID, "mod id contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidModID, "mod id %q contains whitespace", id)
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidModID, "mod id contains invalid characters: %q", pattern)
		}
	}

	if !modIDRegex.MatchString(id) {
		return New(ErrCodeInvalidModID, "invalid mod id: %q", id)
	}

	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename ending in .json.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	if !strings.HasSuffix(filename, ".json") {
		return New(ErrCodeInvalidManifest, "manifest filename must end in .json")
	}

	return nil
}

// ValidatePath validates a path relative to a mod directory.
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

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
