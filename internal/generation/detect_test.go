package generation

import (
	"strings"
	"testing"
)

func TestIsCorrupted(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		name      string
		content   string
		minLength int
		want      bool
	}{
		{name: "empty", content: "", minLength: MinLengthText, want: true},
		{name: "whitespace", content: "   \n\t ", minLength: MinLengthText, want: true},
		{name: "below text threshold", content: "short", minLength: MinLengthText, want: true},
		{name: "exact text threshold", content: "0123456789", minLength: MinLengthText, want: false},
		{name: "below structured threshold", content: `{"name":"Alice"}`, minLength: MinLengthStructured, want: true},
		{name: "structured ok", content: long, minLength: MinLengthStructured, want: false},
		{name: "nul byte", content: "valid text\x00here", minLength: MinLengthText, want: true},
		{name: "bell", content: "valid text\x07here", minLength: MinLengthText, want: true},
		{name: "vertical tab", content: "valid text\x0bhere", minLength: MinLengthText, want: true},
		{name: "escape", content: "valid text\x1bhere", minLength: MinLengthText, want: true},
		{name: "delete", content: "valid text\x7fhere", minLength: MinLengthText, want: true},
		{name: "c1 control", content: "valid text\u0085here", minLength: MinLengthText, want: true},
		{name: "stray byte", content: "valid text\xffhere", minLength: MinLengthText, want: true},
		{name: "tab newline cr allowed", content: "line one\tx\r\nline two", minLength: MinLengthText, want: false},
		{name: "multibyte allowed", content: "Ingénieure – 5€ café ✓", minLength: MinLengthText, want: false},
		{name: "rune length counts runes", content: "ééééééééé", minLength: MinLengthText, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCorrupted(tt.content, tt.minLength); got != tt.want {
				t.Fatalf("IsCorrupted(%q, %d) = %v, want %v", tt.content, tt.minLength, got, tt.want)
			}
		})
	}
}

func TestDetectorAccept(t *testing.T) {
	d := Detector{MinLength: MinLengthText}
	if !d.Accept("A perfectly fine bio.") {
		t.Fatalf("expected acceptance")
	}
	if d.Accept("") {
		t.Fatalf("expected rejection of empty content")
	}
}
