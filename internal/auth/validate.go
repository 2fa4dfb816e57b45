package auth

import (
	"errors"
	"unicode"
)

var (
	ErrInvalidPhone    = errors.New("phone number must be exactly 10 digits")
	ErrInvalidPassword = errors.New("password must be at least 8 characters with a letter, a digit and a special character")
)

// ValidatePhoneNumber accepts exactly 10 digits, nothing else.
func ValidatePhoneNumber(phone string) error {
	if len(phone) != 10 {
		return ErrInvalidPhone
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ErrInvalidPhone
		}
	}
	return nil
}

// ValidatePassword requires at least 8 characters containing at least one
// letter, one digit and one non-alphanumeric character.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLetter || !hasDigit || !hasSpecial {
		return ErrInvalidPassword
	}
	return nil
}
