package user

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/permutationlock/catacrawl/game"
)

type (
	// Dao contains the account operations the http handlers need.
	// It hashes passwords before they reach a backend and assigns each new user a random player id.
	Dao struct {
		backend Backend
		ph      PasswordHandler
	}

	// Backend stores users.  Read fills in the stored password hash and player id for the username.
	Backend interface {
		Create(ctx context.Context, u User) error
		Read(ctx context.Context, u User) (*User, error)
		UpdatePassword(ctx context.Context, u User) error
		Delete(ctx context.Context, u User) error
	}

	// PasswordHandler hashes new passwords and checks claimed ones against stored hashes.
	PasswordHandler interface {
		Hash(password string) ([]byte, error)
		IsCorrect(hashedPassword []byte, password string) (bool, error)
	}
)

// NewDao creates a Dao on the specified backend.
func NewDao(backend Backend, ph PasswordHandler) (*Dao, error) {
	if err := validate(backend, ph); err != nil {
		return nil, fmt.Errorf("creating user dao: validation: %w", err)
	}
	d := Dao{
		backend: backend,
		ph:      ph,
	}
	return &d, nil
}

// validate checks fields to set up the dao.
func validate(backend Backend, ph PasswordHandler) error {
	switch {
	case backend == nil:
		return fmt.Errorf("backend required")
	case ph == nil:
		return fmt.Errorf("password handler required")
	}
	return nil
}

// Create adds a user with a hashed password and a fresh player id.
func (d Dao) Create(ctx context.Context, u User) error {
	hashedPassword, err := d.ph.Hash(u.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	id, err := randomPlayerID()
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	u.ID = id
	if err := d.backend.Create(ctx, u); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Login verifies the username/password pair and returns the stored user, including the player id.
func (d Dao) Login(ctx context.Context, u User) (*User, error) {
	u2, err := d.backend.Read(ctx, u)
	if err != nil {
		if errors.Is(err, ErrIncorrectLogin) {
			return nil, err
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	isCorrect, err := d.ph.IsCorrect([]byte(u2.Password), u.Password)
	switch {
	case err != nil:
		return nil, fmt.Errorf("checking password: %w", err)
	case !isCorrect:
		return nil, ErrIncorrectLogin
	}
	return u2, nil
}

// UpdatePassword sets the password of a user after verifying the old one.
func (d Dao) UpdatePassword(ctx context.Context, u User, newP string) error {
	if _, err := d.Login(ctx, u); err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if err := validatePassword(newP); err != nil {
		return err
	}
	hashedPassword, err := d.ph.Hash(newP)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.Password = string(hashedPassword)
	if err := d.backend.UpdatePassword(ctx, u); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// Delete removes a user after verifying the password.
func (d Dao) Delete(ctx context.Context, u User) error {
	if _, err := d.Login(ctx, u); err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if err := d.backend.Delete(ctx, u); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// randomPlayerID creates a nonzero id that fits in the 53 bit integer range of a json number.
func randomPlayerID() (game.PlayerID, error) {
	for {
		var b [8]byte
		if _, err := rand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("generating player id: %w", err)
		}
		id := game.PlayerID(binary.BigEndian.Uint64(b[:]) & (1<<53 - 1))
		if id != 0 {
			return id, nil
		}
	}
}
