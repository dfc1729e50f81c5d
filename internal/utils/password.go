package utils

import "strings"

const passwordSpecials = "@$!%*?&"

// MinPasswordLength is the shortest password accepted on reset.
const MinPasswordLength = 8

// StrongPassword reports whether password is at least eight characters long,
// uses only ASCII letters, digits and @$!%*?&, and contains at least one
// uppercase letter, one digit and one of the special characters.
func StrongPassword(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return upper && digit && special
}

// ValidPhone reports whether phone is exactly ten ASCII digits.
func ValidPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return false
		}
	}
	return true
}
