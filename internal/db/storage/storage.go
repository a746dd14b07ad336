// Package storage declares the persistence contract shared by the
// PostgreSQL, SQLite and in-memory backends.
package storage

import (
	"context"
	"database/sql"

	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/user"
)

// Storage is the full persistence surface of the service.
// Methods accepting a *sql.Tx run inside that transaction when it is
// non-nil and directly against the database otherwise.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error)

	GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error)

	GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error)

	CreateProfile(ctx context.Context, profile *models.Profile, transaction *sql.Tx) error

	GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error)

	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error)

	UpdateProfileBio(ctx context.Context, profileID, bio string) error

	UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error

	GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error)

	InsertLink(ctx context.Context, link *models.Link) error

	DeleteLink(ctx context.Context, linkID string) error

	GetNumberOfProfiles(ctx context.Context) (int64, error)

	GetNumberOfLinks(ctx context.Context) (int64, error)

	BeginTransaction() (*sql.Tx, error)

	RollbackTransaction(transaction *sql.Tx) error

	CommitTransaction(transaction *sql.Tx) error

	Ping(ctx context.Context) error

	Close() error
}
