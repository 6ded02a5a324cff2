package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidInput indicates a message that is empty, whitespace-only,
// or contains characters outside the allowed set.
var ErrInvalidInput = errors.New("invalid input")

// Result carries a message that passed the input gate, recording
// whether disallowed characters had to be stripped to get it through.
type Result struct {
	Message   string
	Sanitized bool
}

// allowedRune reports whether r may be forwarded to the script.
// The allowed set is letters, digits, whitespace, '.', ',', '-' and '_'.
func allowedRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', '-', '_':
		return true
	}
	return false
}

// Validate checks the message against the allowed character set. It is
// the hard-failure gate for callers that want rejection rather than
// recovery.
func Validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message is empty", ErrInvalidInput)
	}

	for _, r := range message {
		if !allowedRune(r) {
			return fmt.Errorf("%w: disallowed character %q", ErrInvalidInput, r)
		}
	}

	return nil
}

// Clean runs Validate and, on failure, strips every disallowed
// character instead of erroring. The returned Result records whether
// stripping occurred, so callers can observe the recovery. A message
// made entirely of disallowed characters cleans to the empty string.
func Clean(message string) Result {
	if err := Validate(message); err == nil {
		return Result{Message: message}
	}

	var b strings.Builder
	for _, r := range message {
		if allowedRune(r) {
			b.WriteRune(r)
		}
	}

	return Result{Message: b.String(), Sanitized: true}
}
