// Package postgresdb provides a PostgreSQL-based implementation of the storage
// interface for persisting users, profiles and their links.
// It supports transactional operations and schema migrations via goose.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the storage interface.
// It handles all persistence operations via a PostgreSQL database connection.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) queryerFor(transaction *sql.Tx) queryer {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func (db *PostgresDB) executorFor(transaction *sql.Tx) executor {
	if transaction == nil {
		return db.database
	}
	return transaction
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser inserts a new user record and returns the generated ID.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
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
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	if userID == "" {
		return &user.User{ID: ""}, nil
	}

	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE id = $1`,
		userID,
	)
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

// GetUserByEmail fetches a user by their sign-in address.
// If no such user exists, it returns a user with an empty ID field.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	row := db.queryerFor(transaction).QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		email,
	)
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
func (db *PostgresDB) CreateProfile(ctx context.Context, profile *models.Profile, transaction *sql.Tx) error {
	_, err := db.executorFor(transaction).ExecContext(
		ctx,
		`
			INSERT INTO profiles (id, username, bio, theme_primary, theme_secondary)
				VALUES ($1, $2, $3, $4, $5)
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
// The boolean result reports whether the profile exists.
func (db *PostgresDB) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error) {
	return db.getProfile(
		ctx,
		`SELECT id, username, bio, theme_primary, theme_secondary FROM profiles WHERE id = $1`,
		profileID,
	)
}

// GetProfileByUsername retrieves a profile by its unique handle.
// The boolean result reports whether the profile exists.
func (db *PostgresDB) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	return db.getProfile(
		ctx,
		`SELECT id, username, bio, theme_primary, theme_secondary FROM profiles WHERE username = $1`,
		username,
	)
}

func (db *PostgresDB) getProfile(ctx context.Context, query, arg string) (*models.Profile, bool, error) {
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
func (db *PostgresDB) UpdateProfileBio(ctx context.Context, profileID, bio string) error {
	_, err := db.database.ExecContext(
		ctx,
		`UPDATE profiles SET bio = $1 WHERE id = $2`,
		bio,
		profileID,
	)

	return err
}

// UpdateProfileTheme persists the primary/secondary color pair.
func (db *PostgresDB) UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error {
	_, err := db.database.ExecContext(
		ctx,
		`UPDATE profiles SET theme_primary = $1, theme_secondary = $2 WHERE id = $3`,
		theme.Primary,
		theme.Secondary,
		profileID,
	)

	return err
}

// GetLinksByProfile retrieves the links of a profile ordered ascending
// by display_order.
func (db *PostgresDB) GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, profile_id, url, title, display_order
				FROM links
				WHERE profile_id = $1
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
func (db *PostgresDB) InsertLink(ctx context.Context, link *models.Link) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO links (id, profile_id, url, title, display_order)
				VALUES ($1, $2, $3, $4, $5)
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
// Remaining display_order values are left as they are.
func (db *PostgresDB) DeleteLink(ctx context.Context, linkID string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM links WHERE id = $1`,
		linkID,
	)

	return err
}

// GetNumberOfProfiles returns the total count of profiles.
func (db *PostgresDB) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM profiles`)
}

// GetNumberOfLinks returns the total count of links.
func (db *PostgresDB) GetNumberOfLinks(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM links`)
}

func (db *PostgresDB) count(ctx context.Context, query string) (int64, error) {
	row := db.database.QueryRowContext(ctx, query)
	var result int64
	if err := row.Scan(&result); err != nil {
		return 0, err
	}

	return result, nil
}

// BeginTransaction starts a new SQL transaction and returns it.
// The caller is responsible for committing or rolling it back.
func (db *PostgresDB) BeginTransaction() (*sql.Tx, error) {
	return db.database.Begin()
}

// CommitTransaction commits the given SQL transaction.
func (db *PostgresDB) CommitTransaction(transaction *sql.Tx) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred while committing transaction: %v", r)
		}
	}()

	return transaction.Commit()
}

// RollbackTransaction rolls back the given SQL transaction.
func (db *PostgresDB) RollbackTransaction(transaction *sql.Tx) error {
	return transaction.Rollback()
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}
	return nil
}
