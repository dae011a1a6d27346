// Package gate decides whether a candidate version may be released on top
// of the previously published one.
package gate

import (
	"errors"
	"fmt"
)

// ErrNotAnIncrement is returned when the candidate version is equal to or
// lower than the previous release.
var ErrNotAnIncrement = errors.New("version is not an increment")

// ValidateIncrement accepts candidate only when it is strictly greater than
// previous. Which field incremented is deliberately not enforced: 1.0.0 to
// 5.0.0 passes the same as 1.0.0 to 1.0.1.
func ValidateIncrement(previous, candidate *SemVer) error {
	if candidate.Compare(previous) <= 0 {
		return fmt.Errorf("%w: %s on top of %s", ErrNotAnIncrement, candidate, previous)
	}
	return nil
}

// Validate parses both version strings and runs the increment check.
// It performs no I/O.
func Validate(previous, candidate string) (*SemVer, error) {
	prev, err := Parse(previous)
	if err != nil {
		return nil, err
	}
	cand, err := Parse(candidate)
	if err != nil {
		return nil, err
	}
	if err := ValidateIncrement(prev, cand); err != nil {
		return nil, err
	}
	return cand, nil
}
