package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/simdriver/internal/shared/types"
)

// String length limits
const (
	MaxBundleIDLength = 255
	MaxURLLength      = 8192
)

// Regular expressions for validation
var (
	// BundleIDPattern allows reverse-DNS identifiers: alphanumerics, hyphens, dots
	BundleIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int) error {
	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateBundleID validates an application bundle identifier
func ValidateBundleID(bundleID string) error {
	if err := ValidateString(bundleID, "bundle id", 1, MaxBundleIDLength); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidBundleID, err)
	}
	if !BundleIDPattern.MatchString(bundleID) {
		return fmt.Errorf("%w: '%s'", types.ErrInvalidBundleID, bundleID)
	}
	return nil
}

// ValidateUDID validates a simulator UDID. CoreSimulator UDIDs are uppercase
// UUIDs; "booted" is accepted as the tool's alias for the booted device.
func ValidateUDID(udid string) error {
	if udid == "booted" {
		return nil
	}
	if _, err := uuid.Parse(udid); err != nil {
		return fmt.Errorf("%w: '%s'", types.ErrInvalidUDID, udid)
	}
	return nil
}

// ValidateURL checks a URL before it is handed to the device
func ValidateURL(url string) error {
	return ValidateString(url, "url", 1, MaxURLLength)
}

// NormalizePatterns flattens a list of patterns where any item may itself be a
// comma-separated list, e.g. []string{"*.db*,blabla.sqlite"}.
func NormalizePatterns(patterns ...string) []string {
	result := make([]string, 0, len(patterns))
	for _, item := range patterns {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
	}
	return result
}

// ValidatePatterns checks that every pattern is a well formed glob
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", types.ErrInvalidPattern, p)
		}
	}
	return nil
}
