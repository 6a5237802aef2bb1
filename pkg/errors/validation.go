package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateCount checks an entity count against an inclusive upper bound.
// what names the count in the error message (e.g. "ornaments").
func ValidateCount(what string, n, limit int) error {
	if n < 0 {
		return New(ErrCodeInvalidCount, "%s count cannot be negative (got %d)", what, n)
	}
	if n > limit {
		return New(ErrCodeInvalidCount, "%s count %d exceeds maximum %d", what, n, limit)
	}
	return nil
}

// ValidateUnit checks that v is a finite number in [0, 1].
func ValidateUnit(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be a finite number", what)
	}
	if v < 0 || v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be within [0, 1] (got %g)", what, v)
	}
	return nil
}

// ValidateRate checks that v is a smoothing rate in (0, 1].
func ValidateRate(what string, v float64) error {
	if math.IsNaN(v) || v <= 0 || v > 1 {
		return New(ErrCodeInvalidConfig, "%s must be within (0, 1] (got %g)", what, v)
	}
	return nil
}

// nameRegex matches trace and profile names.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName validates a user-supplied trace or profile name.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 64 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "name too long (max 64 characters)")
	}
	if !nameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid name: %q", name)
	}
	return nil
}

// ValidatePath validates an output or input file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
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

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a connection URL for the cache or trace store.
// Only the schemes listed in allowed are accepted.
func ValidateURL(rawURL string, allowed ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, scheme := range allowed {
		if strings.HasPrefix(rawURL, scheme+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(allowed, ", "))
}
