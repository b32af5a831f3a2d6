package patterns

import (
	"regexp"
	"strings"
)

// NewAccountThresholdDays is the account age below which a contact counts as new.
const NewAccountThresholdDays = 30

// foreignAreaCodes are calling-code prefixes over-represented in scam traffic.
var foreignAreaCodes = []string{
	"+234", // Nigeria
	"+233", // Ghana
	"+254", // Kenya
	"+91",  // India
	"+62",  // Indonesia
	"+60",  // Malaysia
}

var genericUsernames = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^user\d+$`),
	regexp.MustCompile(`(?i)^[a-z]+\d{4,}$`),
	regexp.MustCompile(`(?i)^(admin|support|service|help)`),
}

var (
	shortCodeSender = regexp.MustCompile(`^\d{5,6}$`)
	linkPattern     = regexp.MustCompile(`(?i)https?://`)
)

// IsForeignPhone reports whether phone starts with one of the flagged calling codes.
func IsForeignPhone(phone string) bool {
	for _, code := range foreignAreaCodes {
		if strings.HasPrefix(phone, code) {
			return true
		}
	}
	return false
}

// IsGenericUsername reports whether username looks templated or auto-generated.
func IsGenericUsername(username string) bool {
	for _, p := range genericUsernames {
		if p.MatchString(username) {
			return true
		}
	}
	return false
}

// IsShortCode reports whether sender is a 5 or 6 digit short code.
func IsShortCode(sender string) bool {
	return shortCodeSender.MatchString(sender)
}

// ContainsLink reports whether text carries an http(s) URL.
func ContainsLink(text string) bool {
	return linkPattern.MatchString(text)
}

// ForeignAreaCodes returns a copy of the flagged calling-code prefixes.
func ForeignAreaCodes() []string {
	return append([]string(nil), foreignAreaCodes...)
}
