package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yigit/uniadmin/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the hashing cost; tests lower it
var BcryptCost = bcrypt.DefaultCost

const (
	MinPasswordLength = 8
	// PasswordSymbols lists the symbols a new password must draw from
	PasswordSymbols = "!@#$%^&*"
)

// HashPassword hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a hash with a plain text password
func CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidatePasswordLength is the registration rule
func ValidatePasswordLength(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("password", fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	return nil
}

// ValidatePasswordPolicy is the rule for password changes: minimum length,
// at least one digit and at least one symbol from PasswordSymbols.
func ValidatePasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError("newPassword", fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		return apperrors.NewValidationError("newPassword", "password must contain at least one digit")
	}
	if !strings.ContainsAny(password, PasswordSymbols) {
		return apperrors.NewValidationError("newPassword", "password must contain at least one of "+PasswordSymbols)
	}
	return nil
}
