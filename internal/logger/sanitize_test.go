package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "clean path untouched",
			input:    "/api/v1/todos",
			expected: "/api/v1/todos",
		},
		{
			name:     "control characters removed",
			input:    "/api\x00/v1\x1b[31m/todos",
			expected: "/api/v1[31m/todos",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizePath(tt.input); got != tt.expected {
				t.Errorf("SanitizePath(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizePathTruncates(t *testing.T) {
	t.Parallel()

	long := "/" + strings.Repeat("a", MaxPathLength*2)
	got := SanitizePath(long)
	if len(got) != MaxPathLength+3 {
		t.Errorf("Expected truncation to %d chars plus ellipsis, got length %d", MaxPathLength, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated path to end with ellipsis")
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}

	err := errors.New("connection refused\x00: host\ndown")
	got := SanitizeError(err)
	if strings.Contains(got, "\x00") {
		t.Error("Expected null byte stripped from error message")
	}
	if !strings.Contains(got, "connection refused") {
		t.Errorf("Expected message preserved, got %q", got)
	}
}

func TestSanitizeStringInvalidUTF8(t *testing.T) {
	t.Parallel()

	got := SanitizeString("valid\xff\xfeinvalid", 0)
	if got != "validinvalid" {
		t.Errorf("Expected invalid bytes removed, got %q", got)
	}
}
