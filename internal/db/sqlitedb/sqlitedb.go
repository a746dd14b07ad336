// Package sqlitedb provides a SQLite-based implementation of the storage
// interface, backed by the pure-Go modernc.org/sqlite driver. It is used
// for single-node deployments without a PostgreSQL server.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"

	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/user"
)

// SqliteDB is a SQLite-backed implementation of the storage interface.
type SqliteDB struct {
	database *sql.DB
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// New opens (creating if needed) the SQLite database file, runs schema
// migrations, and returns a configured SqliteDB instance.
func New(fileName, migrationsDir string) (*SqliteDB, error) {
	database, err := sql.Open("sqlite", fileName)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; serialize access through one connection.
	database.SetMaxOpenConns(1)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return &SqliteDB{database: database}, nil
}

func (db *SqliteDB) queryerFor(transaction *sql.Tx) queryer {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func (db *SqliteDB) executorFor(transaction *sql.Tx) executor {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateUser inserts a new user record and returns the generated ID.
// SQLite has no uuid generation, so the identifier is assigned here when absent.
func (db *SqliteDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	userID := usr.ID
	if userID == "" {
		userID = uuid.New().String()
	}

	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		userID,
		usr.Email,
		usr.PasswordHash,
	)
	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrEmailTaken
		}
		return "", err
	}

	return userIDFromDB, nil
}

// GetUserByID fetches a user by their UUID.
// If the user does not exist, it returns a user with an empty ID field.
func (db *SqliteDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	if userID == "" {
		return &user.User{ID: ""}, nil
	}

	return db.getUser(
		ctx,
		transaction,
		`SELECT id, email, password_hash FROM users WHERE id = ?`,
		userID,
	)
}

// GetUserByEmail fetches a user by their sign-in address.
// If no such user exists, it returns a user with an empty ID field.
func (db *SqliteDB) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	return db.getUser(
		ctx,
		transaction,
		`SELECT id, email, password_hash FROM users WHERE email = ?`,
		email,
	)
}

func (db *SqliteDB) getUser(ctx context.Context, transaction *sql.Tx, query, arg string) (*user.User, error) {
	row := db.queryerFor(transaction).QueryRowContext(ctx, query, arg)
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &user.User{ID: ""}, nil
		}
		return &user.User{ID: ""}, err
	}

	return usr, nil
}

// CreateProfile inserts a new profile row.
func (db *SqliteDB) CreateProfile(ctx context.Context, profile *models.Profile, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`
			INSERT INTO profiles (id, username, bio, theme_primary, theme_secondary)
				VALUES (?, ?, ?, ?, ?)
		`,
		profile.ID,
		profile.Username,
		profile.Bio,
		profile.Theme.Primary,
		profile.Theme.Secondary,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrUsernameTaken
		}
		return err
	}

	return nil
}

// GetProfileByID retrieves a profile by its identifier.
func (db *SqliteDB) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error) {
	return db.getProfile(
		ctx,
		`SELECT id, username, bio, theme_primary, theme_secondary FROM profiles WHERE id = ?`,
		profileID,
	)
}

// GetProfileByUsername retrieves a profile by its unique handle.
func (db *SqliteDB) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	return db.getProfile(
		ctx,
		`SELECT id, username, bio, theme_primary, theme_secondary FROM profiles WHERE username = ?`,
		username,
	)
}

func (db *SqliteDB) getProfile(ctx context.Context, query, arg string) (*models.Profile, bool, error) {
	row := db.database.QueryRowContext(ctx, query, arg)
	profile := &models.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.Bio,
		&profile.Theme.Primary,
		&profile.Theme.Secondary,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return profile, true, nil
}

// UpdateProfileBio persists the bio text verbatim.
func (db *SqliteDB) UpdateProfileBio(ctx context.Context, profileID, bio string) error {
	_, err := db.database.ExecContext(
		ctx,
		`UPDATE profiles SET bio = ? WHERE id = ?`,
		bio,
		profileID,
	)

	return err
}

// UpdateProfileTheme persists the primary/secondary color pair.
func (db *SqliteDB) UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error {
	_, err := db.database.ExecContext(
		ctx,
		`UPDATE profiles SET theme_primary = ?, theme_secondary = ? WHERE id = ?`,
		theme.Primary,
		theme.Secondary,
		profileID,
	)

	return err
}

// GetLinksByProfile retrieves the links of a profile ordered ascending
// by display_order.
func (db *SqliteDB) GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, profile_id, url, title, display_order
				FROM links
				WHERE profile_id = ?
				ORDER BY display_order
		`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Link{}
	for rows.Next() {
		var link models.Link
		err = rows.Scan(&link.ID, &link.ProfileID, &link.URL, &link.Title, &link.DisplayOrder)
		if err != nil {
			return nil, err
		}

		result = append(result, link)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// InsertLink stores a new link row.
func (db *SqliteDB) InsertLink(ctx context.Context, link *models.Link) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO links (id, profile_id, url, title, display_order)
				VALUES (?, ?, ?, ?, ?)
		`,
		link.ID,
		link.ProfileID,
		link.URL,
		link.Title,
		link.DisplayOrder,
	)

	return err
}

// DeleteLink removes a link row by its identifier.
func (db *SqliteDB) DeleteLink(ctx context.Context, linkID string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM links WHERE id = ?`,
		linkID,
	)

	return err
}

// GetNumberOfProfiles returns the total count of profiles.
func (db *SqliteDB) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM profiles`)
}

// GetNumberOfLinks returns the total count of links.
func (db *SqliteDB) GetNumberOfLinks(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM links`)
}

func (db *SqliteDB) count(ctx context.Context, query string) (int64, error) {
	row := db.database.QueryRowContext(ctx, query)
	var result int64
	if err := row.Scan(&result); err != nil {
		return 0, err
	}

	return result, nil
}

// BeginTransaction starts a new SQL transaction and returns it.
func (db *SqliteDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// CommitTransaction commits the given SQL transaction.
func (db *SqliteDB) CommitTransaction(transaction *sql.Tx) error {
	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
func (db *SqliteDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// Ping verifies connectivity with the SQLite database.
func (db *SqliteDB) Ping(ctx context.Context) error {
	return db.database.PingContext(ctx)
}

// Close closes the database connection and releases any associated resources.
func (db *SqliteDB) Close() error {
	return db.database.Close()
}
