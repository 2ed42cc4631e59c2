package errors

import (
	"strings"
	"unicode"
)

// ValidateSlices checks the slice count of a source sheet.
func ValidateSlices(n int) error {
	if n <= 0 {
		return New(ErrCodeValidation, "slices must be positive, got %d", n)
	}
	return nil
}

// ValidateRotInc checks the rotation increment in degrees.
// Values of 360 and above are accepted and yield a single angle.
func ValidateRotInc(inc int) error {
	if inc <= 0 {
		return New(ErrCodeValidation, "rotation increment must be positive, got %d", inc)
	}
	return nil
}

// ValidateSquash checks the vertical squash factor.
func ValidateSquash(s float64) error {
	if !(s > 0) {
		return New(ErrCodeValidation, "squash must be positive, got %v", s)
	}
	return nil
}

// ValidateWorkers checks the worker count. Zero selects the default.
func ValidateWorkers(n int) error {
	if n < 0 {
		return New(ErrCodeValidation, "workers cannot be negative, got %d", n)
	}
	return nil
}

// ValidateStem validates an output file stem derived from a source name.
// It ensures the stem is a simple basename that cannot escape the output directory.
//
// Validation rules:
//   - Stem cannot be empty
//   - Maximum length of 200 characters
//   - No control characters
//   - No path separators or traversal sequences
func ValidateStem(stem string) error {
	if stem == "" {
		return New(ErrCodeValidation, "output name cannot be empty")
	}

	const maxStemLength = 200
	if len(stem) > maxStemLength {
		return New(ErrCodeValidation, "output name too long (max %d characters)", maxStemLength)
	}

	for _, r := range stem {
		if unicode.IsControl(r) {
			return New(ErrCodeValidation, "output name contains invalid control characters")
		}
	}

	if strings.ContainsAny(stem, "/\\") {
		return New(ErrCodeValidation, "output name cannot contain path separators")
	}
	if stem == "." || stem == ".." {
		return New(ErrCodeValidation, "output name cannot be %q", stem)
	}

	return nil
}
