// Package firestore stores users in a google cloud firestore database.
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/permutationlock/catacrawl/db"
	"github.com/permutationlock/catacrawl/db/user"
	"github.com/permutationlock/catacrawl/game"
)

const (
	passwordField = "password"
	idField       = "id"
)

// UserBackend manages users in a firestore collection.
// Documents are keyed by username, so usernames are unique without an index.
type UserBackend struct {
	client *firestore.Client
	db.Config
}

// NewUserBackend creates a backend for users in the project.
func NewUserBackend(ctx context.Context, cfg db.Config, projectID string) (*UserBackend, error) {
	if cfg.QueryPeriod <= 0 {
		return nil, fmt.Errorf("creating firestore user backend: validation: positive query period required")
	}
	ub := UserBackend{
		Config: cfg,
	}
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the backend
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	ub.client = client
	return &ub, nil
}

func (ub *UserBackend) usersCollection() *firestore.CollectionRef {
	return ub.client.Collection("services").Doc("catacrawl").Collection("users")
}

// withTimeoutContext configures the context to timeout when running the function.
func (ub *UserBackend) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// Create adds the user.  It fails if the username already has a document.
func (ub *UserBackend) Create(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		m := map[string]interface{}{
			passwordField: u.Password,
			idField:       int64(u.ID),
		}
		_, err := docRef.Create(ctx, m) // returns an error if the user already exists
		return err
	}); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read gets the stored password hash and player id for the username.
func (ub *UserBackend) Read(ctx context.Context, u user.User) (*user.User, error) {
	var doc struct {
		Password string `firestore:"password"`
		ID       int64  `firestore:"id"`
	}
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		snapshot, err := docRef.Get(ctx)
		if err != nil {
			if snapshot != nil && !snapshot.Exists() {
				return user.ErrIncorrectLogin
			}
			return err
		}
		return snapshot.DataTo(&doc)
	}); err != nil {
		if errors.Is(err, user.ErrIncorrectLogin) {
			return nil, err
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	u2 := user.User{
		Username: u.Username,
		Password: doc.Password,
		ID:       game.PlayerID(doc.ID),
	}
	return &u2, nil
}

// UpdatePassword updates the password for the user identified by the username.
func (ub *UserBackend) UpdatePassword(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		updates := []firestore.Update{
			{
				Path:  passwordField,
				Value: u.Password,
			},
		}
		_, err := docRef.Update(ctx, updates)
		return err
	}); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// Delete removes the user.
func (ub *UserBackend) Delete(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		_, err := docRef.Delete(ctx, firestore.Exists)
		return err
	}); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
