package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// districtNameRegex matches district designations like "R-1", "C-2A",
// or "Downtown Mixed Use".
var districtNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._-]*$`)

// ValidateDistrictName validates a zoning district designation.
func ValidateDistrictName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidRules, "district name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidRules, "district name too long (max 64 characters)")
	}

	if !districtNameRegex.MatchString(name) {
		return New(ErrCodeInvalidRules, "invalid district name: %q", name)
	}

	return nil
}

// maxRulesTextLen bounds ordinance text so the regex extractor never
// chews on an accidentally supplied binary or dump file.
const maxRulesTextLen = 1 << 18

// ValidateRulesText validates ordinance text before rule extraction.
func ValidateRulesText(text string) error {
	if strings.TrimSpace(text) == "" {
		return New(ErrCodeInvalidRules, "rules text cannot be empty")
	}

	if len(text) > maxRulesTextLen {
		return New(ErrCodeInvalidRules, "rules text too long (max %d bytes)", maxRulesTextLen)
	}

	if !strings.Contains(text, " ") && len(text) > 128 {
		return New(ErrCodeInvalidRules, "rules text does not look like ordinance prose")
	}

	return nil
}

// maxCoordinate bounds coordinate magnitudes. A projected local frame
// in feet never legitimately reaches this; beyond it geometry math
// loses the precision the clipper depends on.
const maxCoordinate = 1e8

// ValidateCoordinate validates a single coordinate value from a site
// definition.
func ValidateCoordinate(v float64) error {
	if math.IsNaN(v) {
		return New(ErrCodeInvalidGeometry, "coordinate is not a number")
	}

	if math.IsInf(v, 0) {
		return New(ErrCodeInvalidGeometry, "coordinate is infinite")
	}

	if math.Abs(v) > maxCoordinate {
		return New(ErrCodeInvalidGeometry, "coordinate %g out of range (max magnitude %g)", v, float64(maxCoordinate))
	}

	return nil
}

// ValidatePath validates a file path referenced from a site definition.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative to the site file)
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

// ValidateUse validates a proposed land use string.
func ValidateUse(use string) error {
	if strings.TrimSpace(use) == "" {
		return New(ErrCodeInvalidInput, "use cannot be empty")
	}

	if len(use) > 128 {
		return New(ErrCodeInvalidInput, "use too long (max 128 characters)")
	}

	for _, r := range use {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "use contains invalid control characters")
		}
	}

	return nil
}
