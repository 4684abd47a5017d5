// Package sanitizer normalizes free-text input before validation and
// storage. All functions are idempotent and never return errors;
// unusable input comes back as an empty string.
package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	rePhoneDigits = regexp.MustCompile(`[^\d+]`)
	reValidE164   = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)
)

// TrimAndNormalize trims the string and collapses any run of
// whitespace (including newlines and tabs) into a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// SanitizeTitle normalizes a booking title or client name: whitespace
// collapsed, control characters stripped.
func SanitizeTitle(s string) string {
	return TrimAndNormalize(stripControl(s))
}

// SanitizeDescription keeps interior newlines but strips other control
// characters and trims the ends.
func SanitizeDescription(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SanitizeEmail lowercases and trims an email address.
func SanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizePhone strips formatting characters and returns the number in
// E.164 form, or an empty string when the input cannot be one.
func SanitizePhone(s string) string {
	s = rePhoneDigits.ReplaceAllString(strings.TrimSpace(s), "")
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	if !reValidE164.MatchString(s) {
		return ""
	}
	return s
}

func stripControl(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
