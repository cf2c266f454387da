package generation

import (
	"strings"
	"unicode/utf8"
)

const (
	MinLengthText       = 10
	MinLengthStructured = 50
)

// Detector rejects provider output that is empty, too short, or carries
// control characters typical of truncated or garbled responses.
type Detector struct {
	MinLength int
}

// Accept reports whether content passes the detector.
func (d Detector) Accept(content string) bool {
	return !IsCorrupted(content, d.MinLength)
}

// IsCorrupted reports whether content should be rejected.
func IsCorrupted(content string, minLength int) bool {
	if strings.TrimSpace(content) == "" {
		return true
	}
	if utf8.RuneCountInString(content) < minLength {
		return true
	}
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRuneInString(content[i:])
		if r == utf8.RuneError && size == 1 {
			// stray byte outside valid UTF-8
			return true
		}
		if isCorruptRune(r) {
			return true
		}
		i += size
	}
	return false
}

// Tab, LF and CR are allowed.
func isCorruptRune(r rune) bool {
	switch {
	case r <= 0x08:
		return true
	case r == 0x0B || r == 0x0C:
		return true
	case r >= 0x0E && r <= 0x1F:
		return true
	case r >= 0x7F && r <= 0x9F:
		return true
	}
	return false
}
