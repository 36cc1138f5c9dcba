package auth

import (
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest password accepted
const MinPasswordLength = 8

// commonPasswords is a short list of passwords rejected outright
var commonPasswords = map[string]struct{}{
	"password":  {},
	"password1": {},
	"12345678":  {},
	"123456789": {},
	"qwertyui":  {},
	"qwerty123": {},
	"iloveyou":  {},
	"11111111":  {},
	"abc12345":  {},
	"letmein1":  {},
}

// ValidatePassword returns the problems with password for a user with the
// given username and email. An empty result means the password is acceptable.
func ValidatePassword(password, username, email string) []string {
	var problems []string

	if len(password) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}

	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}

	if similarTo(password, username) || similarTo(password, localPart(email)) {
		problems = append(problems, "The password is too similar to your account details.")
	}

	return problems
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func similarTo(password, attr string) bool {
	if attr == "" {
		return false
	}
	p := strings.ToLower(password)
	a := strings.ToLower(attr)
	return p == a || (len(a) >= 4 && strings.Contains(p, a))
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return ""
}
