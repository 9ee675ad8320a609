package errors

import (
	"slices"
	"strings"
	"unicode"
)

// ValidateFileStem validates the base name that output files are derived
// from. It must be a simple name without path components.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators
//   - Maximum length of 200 characters
func ValidateFileStem(stem string) error {
	if stem == "" {
		return New(ErrCodeInvalidPath, "output name cannot be empty")
	}

	if len(stem) > 200 {
		return New(ErrCodeInvalidPath, "output name too long (max 200 characters)")
	}

	for _, r := range stem {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output name contains invalid control characters")
		}
	}

	if strings.ContainsAny(stem, "/\\") {
		return New(ErrCodeInvalidPath, "output name cannot contain path separators")
	}

	if stem == "." || stem == ".." {
		return New(ErrCodeInvalidPath, "output name %q is reserved", stem)
	}

	return nil
}

// ValidatePath validates a user supplied file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateFormats checks that every entry of formats is one of supported.
// Matching is case-insensitive. An empty list is rejected.
func ValidateFormats(formats, supported []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	for _, f := range formats {
		if !slices.Contains(supported, strings.ToLower(strings.TrimSpace(f))) {
			return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", f, strings.Join(supported, ", "))
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has one of the given schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
