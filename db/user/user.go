// Package user stores player accounts and mints the player ids the session servers trust.
package user

import (
	"fmt"
	"unicode"

	"github.com/permutationlock/catacrawl/game"
)

// User contains the stored account of one player.
type User struct {
	Username string
	// Password is the plaintext password on requests and the hashed password when read from a backend.
	Password string
	// ID is the player id embedded in the account token.  Backends persist it so a player keeps the same id across logins.
	ID game.PlayerID
}

// ErrIncorrectLogin is returned when a username/password pair does not identify a stored user.
var ErrIncorrectLogin = fmt.Errorf("incorrect username/password")

// New creates a user with the specified name and password.
func New(u, p string) (*User, error) {
	if err := validateUsername(u); err != nil {
		return nil, err
	}
	if err := validatePassword(p); err != nil {
		return nil, err
	}
	user := User{
		Username: u,
		Password: p,
	}
	return &user, nil
}

// validateUsername returns an error if the username is not valid.
func validateUsername(u string) error {
	switch {
	case len(u) < 1:
		return fmt.Errorf("username required")
	case len(u) >= 32:
		return fmt.Errorf("username must be less than 32 characters long")
	default:
		for _, r := range u {
			if !unicode.IsLower(r) {
				return fmt.Errorf("username must be made of only lowercase letters")
			}
		}
	}
	return nil
}

// validatePassword returns an error if the password is not valid.
func validatePassword(p string) error {
	switch {
	case len(p) < 8:
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}
