package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost factor used since the first production deploy.
// Changing it only affects newly stored hashes.
const bcryptCost = 10

// MinPasswordLength is the minimum accepted password length for registration
// and password reset.
const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt digest.
// It returns false for malformed digests instead of erroring.
func VerifyPassword(password, digest string) bool {
	if len(password) == 0 || len(digest) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

func ValidateNewPassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password too short")
	}
	return nil
}
