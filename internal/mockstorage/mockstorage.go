// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used for unit testing HTTP handlers
// and services by simulating storage behavior.
package mockstorage

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/user"
)

// StorageMock is a testify mock that implements the storage interface.
//
// Use it in router and service tests to simulate database behavior.
type StorageMock struct {
	mock.Mock

	// OnGetNumberOfProfiles optionally overrides GetNumberOfProfiles.
	// If set, the method delegates to it instead of testify's generic
	// mock handler.
	OnGetNumberOfProfiles func(ctx context.Context) (int64, error)

	// OnGetNumberOfLinks optionally overrides GetNumberOfLinks.
	OnGetNumberOfLinks func(ctx context.Context) (int64, error)
}

// CreateUser mocks user creation and returns a generated ID.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User, tx *sql.Tx) (string, error) {
	args := m.Called(ctx, usr, tx)
	return args.String(0), args.Error(1)
}

// GetUserByID mocks fetching a user by their ID.
func (m *StorageMock) GetUserByID(ctx context.Context, userID string, tx *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, userID, tx)
	return args.Get(0).(*user.User), args.Error(1)
}

// GetUserByEmail mocks fetching a user by their sign-in address.
func (m *StorageMock) GetUserByEmail(ctx context.Context, email string, tx *sql.Tx) (*user.User, error) {
	args := m.Called(ctx, email, tx)
	return args.Get(0).(*user.User), args.Error(1)
}

// CreateProfile mocks profile creation.
func (m *StorageMock) CreateProfile(ctx context.Context, profile *models.Profile, tx *sql.Tx) error {
	args := m.Called(ctx, profile, tx)
	return args.Error(0)
}

// GetProfileByID mocks fetching a profile by its identifier.
func (m *StorageMock) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error) {
	args := m.Called(ctx, profileID)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Bool(1), args.Error(2)
}

// GetProfileByUsername mocks fetching a profile by its handle.
func (m *StorageMock) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	args := m.Called(ctx, username)
	profile, _ := args.Get(0).(*models.Profile)
	return profile, args.Bool(1), args.Error(2)
}

// UpdateProfileBio mocks persisting a bio.
func (m *StorageMock) UpdateProfileBio(ctx context.Context, profileID, bio string) error {
	args := m.Called(ctx, profileID, bio)
	return args.Error(0)
}

// UpdateProfileTheme mocks persisting a theme.
func (m *StorageMock) UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error {
	args := m.Called(ctx, profileID, theme)
	return args.Error(0)
}

// GetLinksByProfile mocks fetching a profile's ordered links.
func (m *StorageMock) GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error) {
	args := m.Called(ctx, profileID)
	profileLinks, _ := args.Get(0).([]models.Link)
	return profileLinks, args.Error(1)
}

// InsertLink mocks storing a new link.
func (m *StorageMock) InsertLink(ctx context.Context, link *models.Link) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

// DeleteLink mocks removing a link by its identifier.
func (m *StorageMock) DeleteLink(ctx context.Context, linkID string) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

// GetNumberOfProfiles returns the profile count as defined by the mock.
//
// If OnGetNumberOfProfiles is non-nil, it is called to produce the
// result. Otherwise, the method returns 0 and no error by default.
func (m *StorageMock) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfProfiles != nil {
		return m.OnGetNumberOfProfiles(ctx)
	}
	return 0, nil
}

// GetNumberOfLinks returns the link count as defined by the mock.
func (m *StorageMock) GetNumberOfLinks(ctx context.Context) (int64, error) {
	if m.OnGetNumberOfLinks != nil {
		return m.OnGetNumberOfLinks(ctx)
	}
	return 0, nil
}

// BeginTransaction mocks the beginning of a transaction.
func (m *StorageMock) BeginTransaction() (*sql.Tx, error) {
	args := m.Called()
	tx, _ := args.Get(0).(*sql.Tx)
	return tx, args.Error(1)
}

// CommitTransaction mocks committing a transaction.
func (m *StorageMock) CommitTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// RollbackTransaction mocks rolling back a transaction.
func (m *StorageMock) RollbackTransaction(tx *sql.Tx) error {
	args := m.Called(tx)
	return args.Error(0)
}

// Ping mocks the storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks closing the storage and releasing resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
