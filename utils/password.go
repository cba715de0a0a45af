package utils

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the bcrypt cost used for password hashes
	BcryptCost = 12
	// MinPasswordLength is the minimum accepted password length
	MinPasswordLength = 8
	// MaxPasswordLength is the maximum accepted password length
	MaxPasswordLength = 26
)

// PasswordError describes why a password failed complexity validation
type PasswordError struct {
	Code    string
	Message string
}

func (e *PasswordError) Error() string {
	return e.Message
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a plaintext password with a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordComplexity checks the password against the complexity rules:
// 8-26 characters with at least one lowercase letter, one uppercase letter,
// one digit and one symbol.
func ValidatePasswordComplexity(password string) error {
	if len(password) < MinPasswordLength {
		return &PasswordError{Code: "PASSWORD_TOO_SHORT", Message: "Password must be at least 8 characters long"}
	}
	if len(password) > MaxPasswordLength {
		return &PasswordError{Code: "PASSWORD_TOO_LONG", Message: "Password must be at most 26 characters long"}
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if !hasLower {
		return &PasswordError{Code: "PASSWORD_NO_LOWERCASE", Message: "Password must contain at least one lowercase letter"}
	}
	if !hasUpper {
		return &PasswordError{Code: "PASSWORD_NO_UPPERCASE", Message: "Password must contain at least one uppercase letter"}
	}
	if !hasDigit {
		return &PasswordError{Code: "PASSWORD_NO_DIGIT", Message: "Password must contain at least one digit"}
	}
	if !hasSymbol {
		return &PasswordError{Code: "PASSWORD_NO_SYMBOL", Message: "Password must contain at least one symbol"}
	}

	return nil
}
