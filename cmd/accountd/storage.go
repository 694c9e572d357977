package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq" // register "postgres" database driver from package init() function

	"github.com/permutationlock/catacrawl/db"
	"github.com/permutationlock/catacrawl/db/firestore"
	"github.com/permutationlock/catacrawl/db/mongo"
	sqldb "github.com/permutationlock/catacrawl/db/sql"
	"github.com/permutationlock/catacrawl/db/sql/postgres"
	"github.com/permutationlock/catacrawl/db/user"
)

// queryPeriod is the amount of time any database operation can take before it should timeout.
const queryPeriod = 5 * time.Second

// newUserBackend creates the user store for the database url, picking the driver from the url scheme.
func newUserBackend(ctx context.Context, databaseURL string) (user.Backend, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg := db.Config{
		QueryPeriod: queryPeriod,
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		sqlDB, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres database: %w", err)
		}
		database, err := sqldb.NewDatabase(sqlDB, cfg)
		if err != nil {
			return nil, err
		}
		backend, err := postgres.NewUserBackend(database)
		if err != nil {
			return nil, err
		}
		if err := backend.Setup(ctx); err != nil {
			return nil, err
		}
		return backend, nil
	case "mongodb", "mongodb+srv":
		backend, err := mongo.NewUserBackend(ctx, cfg, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := backend.Setup(ctx); err != nil {
			return nil, err
		}
		return backend, nil
	case "firestore":
		// the url host names the google cloud project, as in firestore://my-project
		return firestore.NewUserBackend(ctx, cfg, u.Host)
	}
	return nil, fmt.Errorf("unknown database url scheme: %v", u.Scheme)
}
