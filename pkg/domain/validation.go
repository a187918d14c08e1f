package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Beta code generation bounds.
const (
	DefaultGenerateCount = 10
	MinGenerateCount     = 1
	MaxGenerateCount     = 100
)

// ValidationError describes operator input that was corrected before use.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
	Used   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %q %s, using %d", e.Field, e.Input, e.Reason, e.Used)
}

// ParseGenerateCount turns raw input into a count in [1, 100]. Non-numeric
// input falls back to the default; out-of-range input is clamped. The count
// is always usable; the error is non-nil when the input was corrected.
func ParseGenerateCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultGenerateCount, &ValidationError{Field: "count", Input: raw, Reason: "is not a number", Used: DefaultGenerateCount}
	}
	return ClampGenerateCount(n)
}

// ClampGenerateCount clamps n into [1, 100].
func ClampGenerateCount(n int) (int, error) {
	switch {
	case n < MinGenerateCount:
		return MinGenerateCount, &ValidationError{Field: "count", Input: strconv.Itoa(n), Reason: "is below the minimum", Used: MinGenerateCount}
	case n > MaxGenerateCount:
		return MaxGenerateCount, &ValidationError{Field: "count", Input: strconv.Itoa(n), Reason: "is above the maximum", Used: MaxGenerateCount}
	}
	return n, nil
}
