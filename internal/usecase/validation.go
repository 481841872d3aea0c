package usecase

import (
	"regexp"
	"strings"
)

var nonPhoneChars = regexp.MustCompile(`[^0-9+]`)

// phoneRule rewrites a cleaned number when its pattern matches.
type phoneRule struct {
	pattern   *regexp.Regexp
	transform func(string) string
}

// phoneRules are evaluated in order; the first match wins. The rules assume
// Indian domestic numbers and are a heuristic, not a general E.164 validator.
var phoneRules = []phoneRule{
	{regexp.MustCompile(`^[0-9]{10}$`), func(n string) string { return "+91" + n }},
	{regexp.MustCompile(`^91[0-9]{10}$`), func(n string) string { return "+" + n }},
	{regexp.MustCompile(`^\+[0-9]{10,15}$`), func(n string) string { return n }},
}

// NormalizePhone converts raw user input into E.164. ok is false when the
// input is empty or matches none of the accepted shapes.
func NormalizePhone(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	cleaned := nonPhoneChars.ReplaceAllString(strings.TrimSpace(raw), "")
	for _, rule := range phoneRules {
		if rule.pattern.MatchString(cleaned) {
			return rule.transform(cleaned), true
		}
	}
	return "", false
}

func ValidateEnquireInput(input EnquireInput) (string, error) {
	if !bool(input.Consent) {
		return "", &ValidationError{Field: "consent", Message: "consent required"}
	}
	phone, ok := NormalizePhone(input.Phone)
	if !ok {
		return "", &ValidationError{Field: "phone", Message: "invalid phone format"}
	}
	return phone, nil
}
