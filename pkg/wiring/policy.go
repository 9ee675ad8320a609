package wiring

import (
	"fmt"
	"strings"
)

// Policy selects how non-advisory diagnostics are handled by [Build].
type Policy int

const (
	// Lenient records every diagnostic and continues.
	Lenient Policy = iota
	// Strict aborts at the first non-advisory diagnostic.
	Strict
)

// String returns "lenient" or "strict".
func (p Policy) String() string {
	switch p {
	case Lenient:
		return "lenient"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name (case-insensitive). The empty string
// selects Lenient.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown policy %q (must be 'lenient' or 'strict')", s)
	}
}

// PolicyFor returns Strict when strict is true, Lenient otherwise.
func PolicyFor(strict bool) Policy {
	if strict {
		return Strict
	}
	return Lenient
}
