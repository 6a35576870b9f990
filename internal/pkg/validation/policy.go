package validation

import (
	"fmt"
	"strings"
)

// Policy selects how strictly documents are checked
type Policy int

const (
	// Strict runs full checksum validation (production)
	Strict Policy = iota
	// Relaxed only checks document lengths (development data)
	Relaxed
)

// ParsePolicy maps a configuration value onto a Policy
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "prod", "production":
		return Strict, nil
	case "relaxed", "dev", "development":
		return Relaxed, nil
	default:
		return Strict, fmt.Errorf("unknown validation mode %q", s)
	}
}

// String returns the configuration spelling of the policy
func (p Policy) String() string {
	if p == Relaxed {
		return "relaxed"
	}
	return "strict"
}
