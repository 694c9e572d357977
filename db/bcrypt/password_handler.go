// Package bcrypt hashes account passwords before they are stored and checks claimed passwords against stored hashes.
package bcrypt

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHandler hashes and checks passwords.
type PasswordHandler struct {
	cost int
}

// NewPasswordHandler creates a password handler with the default cost.
func NewPasswordHandler() PasswordHandler {
	ph := PasswordHandler{
		cost: bcrypt.DefaultCost,
	}
	return ph
}

// Hash computes the hash to store for the password.
func (ph PasswordHandler) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), ph.cost)
}

// IsCorrect determines whether the hashed password was derived from the password.
func (PasswordHandler) IsCorrect(hashedPassword []byte, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hashedPassword, []byte(password))
	switch {
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}
