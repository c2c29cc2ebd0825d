package validation

import (
	"fmt"
	"unicode"
)

// ValidatePassword требует минимум 8 символов, заглавную, строчную и цифру.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt обрезает всё после 72 байт
		return fmt.Errorf("Password must be at most 72 bytes")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("Password must contain an uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("Password must contain a lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("Password must contain a digit")
	}
	return nil
}
