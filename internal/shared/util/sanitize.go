package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

const maxFileNameRunes = 120

// ErrInvalidFileName is returned when nothing usable remains of a file name.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces an uploaded file name to a safe single path
// segment: directories are dropped and anything outside letters, digits,
// '.', '-' and '_' becomes '_'.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	s = path.Base(s)
	if s == "." || s == "/" || s == ".." {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "", ErrInvalidFileName
	}
	if runes := []rune(out); len(runes) > maxFileNameRunes {
		out = string(runes[len(runes)-maxFileNameRunes:])
	}
	return out, nil
}
