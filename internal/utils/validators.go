package utils

import "regexp"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail проверяет корректность email
func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}
	return emailRegex.MatchString(email)
}

// ValidatePassword проверяет требования к паролю (8+ символов)
func ValidatePassword(password string) bool {
	return len(password) >= 8
}
