package validators

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Maximum field lengths, in characters.
const (
	MaxTextLength       = 1000
	MaxNameLength       = 100
	MaxEmailLength      = 100
	MaxPhoneLength      = 20
	MaxStreetLength     = 200
	MaxRegionLength     = 100
	MaxDateLength       = 10
	MaxCourseLength     = 200
	MaxPassportICLength = 50
)

var (
	angleBrackets   = regexp.MustCompile(`[<>]`)
	scriptProtocol  = regexp.MustCompile(`(?i)javascript:`)
	eventHandler    = regexp.MustCompile(`(?i)on\w+=`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneDisallowed = regexp.MustCompile(`[^\d+\-\s()]`)
	passportInvalid = regexp.MustCompile(`[^a-zA-Z0-9\s\-]`)
)

// SanitizeText strips markup and script vectors from free text and limits it
// to max characters. A max of zero or less means MaxTextLength.
func SanitizeText(input string, max int) string {
	if input == "" {
		return ""
	}
	if max <= 0 {
		max = MaxTextLength
	}

	s := norm.NFC.String(input)
	// removing one match can splice a new one together ("javajavascript:script:")
	for {
		next := angleBrackets.ReplaceAllString(s, "")
		next = scriptProtocol.ReplaceAllString(next, "")
		next = eventHandler.ReplaceAllString(next, "")
		if next == s {
			break
		}
		s = next
	}

	return truncate(strings.TrimSpace(s), max)
}

// SanitizeEmail lower-cases and trims an address, returning "" when the
// result is not shaped like an email address.
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	s := strings.ToLower(strings.TrimSpace(email))
	if utf8.RuneCountInString(s) > MaxEmailLength || !emailPattern.MatchString(s) {
		return ""
	}
	return s
}

// SanitizePhone keeps digits, '+', '-', spaces and parentheses.
func SanitizePhone(phone string) string {
	if phone == "" {
		return ""
	}
	s := phoneDisallowed.ReplaceAllString(phone, "")
	return truncate(strings.TrimSpace(s), MaxPhoneLength)
}

// SanitizePassportIC keeps ASCII letters, digits, spaces and hyphens.
func SanitizePassportIC(passportIC string) string {
	if passportIC == "" {
		return ""
	}
	s := passportInvalid.ReplaceAllString(passportIC, "")
	return truncate(strings.TrimSpace(s), MaxPassportICLength)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}
