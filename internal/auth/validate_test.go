package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	t.Run("accepts exactly 10 digits", func(t *testing.T) {
		assert.NoError(t, ValidatePhoneNumber("3105551234"))
	})

	t.Run("rejects short and long numbers", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePhoneNumber("310555123"), ErrInvalidPhone)
		assert.ErrorIs(t, ValidatePhoneNumber("31055512345"), ErrInvalidPhone)
		assert.ErrorIs(t, ValidatePhoneNumber(""), ErrInvalidPhone)
	})

	t.Run("rejects formatting characters", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePhoneNumber("310-555-12"), ErrInvalidPhone)
		assert.ErrorIs(t, ValidatePhoneNumber("310555123a"), ErrInvalidPhone)
		assert.ErrorIs(t, ValidatePhoneNumber("+310555123"), ErrInvalidPhone)
	})
}

func TestValidatePassword(t *testing.T) {
	t.Run("accepts letter digit and special", func(t *testing.T) {
		assert.NoError(t, ValidatePassword("Passw0rd!"))
		assert.NoError(t, ValidatePassword("a1!aaaaa"))
	})

	t.Run("rejects missing character classes", func(t *testing.T) {
		// Long enough but no digit or special.
		assert.ErrorIs(t, ValidatePassword("abcdefgh"), ErrInvalidPassword)
		// Letter and digit, no special.
		assert.ErrorIs(t, ValidatePassword("abcdefg1"), ErrInvalidPassword)
		// Digit and special, no letter.
		assert.ErrorIs(t, ValidatePassword("12345678!"), ErrInvalidPassword)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePassword("a1!"), ErrInvalidPassword)
		assert.ErrorIs(t, ValidatePassword("Pass1!"), ErrInvalidPassword)
	})
}
