// Package mongo stores users in a mongodb collection.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/permutationlock/catacrawl/db"
	"github.com/permutationlock/catacrawl/db/user"
)

const (
	databaseName   = "catacrawl"
	collectionName = "users"
	usernameField  = "username"
	passwordField  = "password"
	idField        = "id"
)

// UserBackend manages users in a mongodb collection.
type UserBackend struct {
	Users *mongo.Collection
	db.Config
}

// NewUserBackend connects to the database at the url and creates a backend for the users collection.
func NewUserBackend(ctx context.Context, cfg db.Config, databaseURL string) (*UserBackend, error) {
	if cfg.QueryPeriod <= 0 {
		return nil, fmt.Errorf("creating mongo user backend: validation: positive query period required")
	}
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	users := client.Database(databaseName).Collection(collectionName)
	ub := UserBackend{
		Users:  users,
		Config: cfg,
	}
	return &ub, nil
}

// Setup creates the unique username index so duplicate users cannot be created.
func (ub *UserBackend) Setup(ctx context.Context) error {
	indexOptions := options.Index()
	indexOptions.SetUnique(true)
	model := mongo.IndexModel{
		Keys:    d(e(usernameField, 1)),
		Options: indexOptions,
	}
	indexes := ub.Users.Indexes()
	ctx, cancelFunc := context.WithTimeout(ctx, ub.Config.QueryPeriod)
	defer cancelFunc()
	if _, err := indexes.CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating unique username index: %w", err)
	}
	return nil
}

// Create adds the user.
func (ub *UserBackend) Create(ctx context.Context, u user.User) error {
	document := d(
		e(usernameField, u.Username),
		e(passwordField, u.Password),
		e(idField, int64(u.ID)),
	)
	ctx, cancelFunc := context.WithTimeout(ctx, ub.Config.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read gets the stored password hash and player id for the username.
func (ub *UserBackend) Read(ctx context.Context, u user.User) (*user.User, error) {
	filter := d(e(usernameField, u.Username))
	ctx, cancelFunc := context.WithTimeout(ctx, ub.Config.QueryPeriod)
	defer cancelFunc()
	result := ub.Users.FindOne(ctx, filter)
	var u2 user.User
	if err := result.Decode(&u2); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrIncorrectLogin
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u2, nil
}

// UpdatePassword updates the password for the user identified by the username.
func (ub *UserBackend) UpdatePassword(ctx context.Context, u user.User) error {
	filter := d(e(usernameField, u.Username))
	update := d(e("$set", d(e(passwordField, u.Password))))
	ctx, cancelFunc := context.WithTimeout(ctx, ub.Config.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// Delete removes the user.
func (ub *UserBackend) Delete(ctx context.Context, u user.User) error {
	filter := d(e(usernameField, u.Username))
	ctx, cancelFunc := context.WithTimeout(ctx, ub.Config.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// d is a helper function to create bson documents.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson document elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
