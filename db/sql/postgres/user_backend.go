// Package postgres stores users on a Postgres server through stored functions.
package postgres

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"

	"github.com/permutationlock/catacrawl/db/sql"
	"github.com/permutationlock/catacrawl/db/user"
)

//go:embed sql/*.sql
var setupSQL embed.FS

// setupFilenames are the embedded setup files, in the order they must run.
var setupFilenames = []string{
	"users",
	"user_create",
	"user_read",
	"user_update_password",
	"user_delete",
}

type (
	// UserBackend manages users on a Postgres database.
	UserBackend struct {
		Database
	}

	// Database contains the methods the backend sends its queries through.
	Database interface {
		// Setup initializes the database by executing the files.
		Setup(ctx context.Context, files []io.Reader) error
		// Query reads a single row into the destination arguments.
		Query(ctx context.Context, q sql.Query, dest ...interface{}) error
		// Exec changes data.
		Exec(ctx context.Context, queries ...sql.Query) error
	}
)

// NewUserBackend creates a backend that stores users on the database.
func NewUserBackend(database Database) (*UserBackend, error) {
	if database == nil {
		return nil, fmt.Errorf("creating postgres user backend: validation: database required")
	}
	ub := UserBackend{
		Database: database,
	}
	return &ub, nil
}

// Setup creates the users table and the stored functions that access it.
func (ub *UserBackend) Setup(ctx context.Context) error {
	files := make([]io.Reader, len(setupFilenames))
	for i, n := range setupFilenames {
		b, err := setupSQL.ReadFile("sql/" + n + ".sql")
		if err != nil {
			return fmt.Errorf("reading setup file %v: %w", n, err)
		}
		files[i] = bytes.NewReader(b)
	}
	if err := ub.Database.Setup(ctx, files); err != nil {
		return fmt.Errorf("setting up users database: %w", err)
	}
	return nil
}

// Create adds the user.
func (ub *UserBackend) Create(ctx context.Context, u user.User) error {
	q := sql.NewExecFunction("user_create", u.Username, u.Password, int64(u.ID))
	if err := ub.Database.Exec(ctx, q); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read queries the database for the user by username.
func (ub *UserBackend) Read(ctx context.Context, u user.User) (*user.User, error) {
	cols := []string{
		"username",
		"password",
		"id",
	}
	q := sql.NewQueryFunction("user_read", cols, u.Username)
	var u2 user.User
	if err := ub.Database.Query(ctx, q, &u2.Username, &u2.Password, &u2.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrIncorrectLogin
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u2, nil
}

// UpdatePassword updates the password for the user identified by the username.
func (ub *UserBackend) UpdatePassword(ctx context.Context, u user.User) error {
	q := sql.NewExecFunction("user_update_password", u.Username, u.Password)
	if err := ub.Database.Exec(ctx, q); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// Delete removes the user.
func (ub *UserBackend) Delete(ctx context.Context, u user.User) error {
	q := sql.NewExecFunction("user_delete", u.Username)
	if err := ub.Database.Exec(ctx, q); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
