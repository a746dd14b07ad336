// Package memorystorage provides a non-persistent, in-memory implementation
// of the storage interface. It is used in tests and when the service is
// started without a database configured.
package memorystorage

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/user"
)

// MemoryStorage keeps all records in process memory.
// Transactions are accepted but ignored; every operation is applied directly.
type MemoryStorage struct {
	mu       sync.Mutex
	users    map[string]user.User
	profiles map[string]models.Profile
	links    map[string][]models.Link
}

// New returns an empty MemoryStorage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:    map[string]user.User{},
		profiles: map[string]models.Profile{},
		links:    map[string][]models.Link{},
	}, nil
}

// CreateUser stores a new user and returns the generated ID.
func (m *MemoryStorage) CreateUser(ctx context.Context, usr *user.User, transaction *sql.Tx) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == usr.Email {
			return "", models.ErrEmailTaken
		}
	}

	userID := usr.ID
	if userID == "" {
		userID = uuid.New().String()
	}
	m.users[userID] = user.User{
		ID:           userID,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
	}

	return userID, nil
}

// GetUserByID returns the stored user, or a user with an empty ID when absent.
func (m *MemoryStorage) GetUserByID(ctx context.Context, userID string, transaction *sql.Tx) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	usr, found := m.users[userID]
	if !found {
		return &user.User{ID: ""}, nil
	}

	return &usr, nil
}

// GetUserByEmail returns the user registered under the given address,
// or a user with an empty ID when absent.
func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string, transaction *sql.Tx) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, usr := range m.users {
		if usr.Email == email {
			result := usr
			return &result, nil
		}
	}

	return &user.User{ID: ""}, nil
}

// CreateProfile stores a new profile.
func (m *MemoryStorage) CreateProfile(ctx context.Context, profile *models.Profile, transaction *sql.Tx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.profiles {
		if existing.Username == profile.Username {
			return models.ErrUsernameTaken
		}
	}

	m.profiles[profile.ID] = *profile

	return nil
}

// GetProfileByID returns the stored profile and whether it exists.
func (m *MemoryStorage) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, found := m.profiles[profileID]
	if !found {
		return nil, false, nil
	}

	return &profile, true, nil
}

// GetProfileByUsername returns the profile registered under the given
// handle and whether it exists.
func (m *MemoryStorage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, profile := range m.profiles {
		if profile.Username == username {
			result := profile
			return &result, true, nil
		}
	}

	return nil, false, nil
}

// UpdateProfileBio stores the bio text verbatim.
func (m *MemoryStorage) UpdateProfileBio(ctx context.Context, profileID, bio string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, found := m.profiles[profileID]
	if !found {
		return models.ErrProfileNotFound
	}
	profile.Bio = bio
	m.profiles[profileID] = profile

	return nil
}

// UpdateProfileTheme stores the primary/secondary color pair.
func (m *MemoryStorage) UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	profile, found := m.profiles[profileID]
	if !found {
		return models.ErrProfileNotFound
	}
	profile.Theme = theme
	m.profiles[profileID] = profile

	return nil
}

// GetLinksByProfile returns the profile's links in display order.
func (m *MemoryStorage) GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]models.Link, len(m.links[profileID]))
	copy(result, m.links[profileID])

	return result, nil
}

// InsertLink appends a link to the profile's sequence.
func (m *MemoryStorage) InsertLink(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.ProfileID] = append(m.links[link.ProfileID], *link)

	return nil
}

// DeleteLink removes a link by its identifier, keeping the relative order
// of the remaining links.
func (m *MemoryStorage) DeleteLink(ctx context.Context, linkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for profileID, profileLinks := range m.links {
		remaining := profileLinks[:0:0]
		for _, link := range profileLinks {
			if link.ID != linkID {
				remaining = append(remaining, link)
			}
		}
		m.links[profileID] = remaining
	}

	return nil
}

// GetNumberOfProfiles returns the total count of profiles.
func (m *MemoryStorage) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return int64(len(m.profiles)), nil
}

// GetNumberOfLinks returns the total count of links.
func (m *MemoryStorage) GetNumberOfLinks(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result int64
	for _, profileLinks := range m.links {
		result += int64(len(profileLinks))
	}

	return result, nil
}

// BeginTransaction is a no-op for the in-memory backend.
func (m *MemoryStorage) BeginTransaction() (*sql.Tx, error) {
	return nil, nil
}

// CommitTransaction is a no-op for the in-memory backend.
func (m *MemoryStorage) CommitTransaction(transaction *sql.Tx) error {
	return nil
}

// RollbackTransaction is a no-op for the in-memory backend.
func (m *MemoryStorage) RollbackTransaction(transaction *sql.Tx) error {
	return nil
}

// Ping always reports the in-memory backend as available.
func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *MemoryStorage) Close() error {
	return nil
}
