package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate is a shared validator instance used for request DTOs
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// SanitizeText sanitizes text input by trimming whitespace and removing
// control characters (newline and tab are kept)
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// NormalizeCategory trims the category and canonicalizes its casing: first
// letter upper, remainder lower. Empty input normalizes to the empty string.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	runes := []rune(strings.ToLower(category))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
