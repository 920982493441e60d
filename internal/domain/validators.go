package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	addressRegex     = regexp.MustCompile(`^[A-Za-z0-9_\-.]{1,128}$`)
	fingerprintRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// ValidateAddress checks that an account identifier is usable as a key segment.
func ValidateAddress(addr Address) error {
	if addr == "" {
		return fmt.Errorf("address is required")
	}
	if !addressRegex.MatchString(string(addr)) {
		return fmt.Errorf("invalid address %q", addr)
	}
	return nil
}

// ValidatePositiveAmount checks that an amount is strictly positive.
func ValidatePositiveAmount(amount Amount) error {
	if amount.IsZero() {
		return ErrInvalidAmount("amount must be positive, got 0")
	}
	return nil
}

// ValidateFingerprint checks a hex SHA-256 fingerprint.
func ValidateFingerprint(fp string) error {
	if !fingerprintRegex.MatchString(fp) {
		return fmt.Errorf("fingerprint must be 64 lowercase hex characters")
	}
	return nil
}

// ValidateEventName checks the human-readable event name.
func ValidateEventName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("event name is required")
	}
	if len(name) > 200 {
		return fmt.Errorf("event name too long (%d chars)", len(name))
	}
	return nil
}
