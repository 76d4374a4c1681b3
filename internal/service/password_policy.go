package service

import "unicode"

// passwordMeetsPolicy enforces the registration password policy: at least 8
// characters with one lowercase, one uppercase, one digit and one symbol.
// A single regex would need lookahead, which Go's regexp does not support,
// so the classes are checked in one scan instead.
func passwordMeetsPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}
