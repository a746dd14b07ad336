// Package profile implements the profile store: loading, lazily creating
// and mutating the single profile record owned by each identity. It keeps
// an in-memory replica of fetched profiles that is refreshed on session
// transitions and updated only after the database confirms a mutation.
package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dtechoracle/linkNest/internal/logger"
	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/session"
)

type profileKeeper interface {
	CreateProfile(ctx context.Context, profile *models.Profile, transaction *sql.Tx) error

	GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error)

	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error)

	UpdateProfileBio(ctx context.Context, profileID, bio string) error

	UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error
}

// Store fetches and mutates profile records.
type Store struct {
	db profileKeeper

	mu      sync.Mutex
	replica map[string]models.Profile
}

// New creates a Store over the given storage backend.
func New(db profileKeeper) *Store {
	return &Store{
		db:      db,
		replica: map[string]models.Profile{},
	}
}

// Bind subscribes the store to session transitions: an authenticated
// transition warms the replica for the new identity, an unauthenticated
// one clears all locally held profile state. A failed warm-up fetch is
// logged and leaves the replica empty; the caller sees no data.
func (s *Store) Bind(sessions *session.Manager) {
	sessions.Subscribe(func(identity *session.Identity) {
		if identity == nil {
			s.Clear()
			return
		}
		if _, err := s.Load(context.Background(), identity.UserID); err != nil {
			logger.Log.Debugln("Error warming the profile replica: ", zap.Error(err))
		}
	})
}

// Load fetches the profile for the given identity and refreshes the
// replica. Returns models.ErrProfileNotFound when no profile exists.
func (s *Store) Load(ctx context.Context, profileID string) (*models.Profile, error) {
	profile, found, err := s.db.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("error while `s.db.GetProfileByID()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrProfileNotFound
	}

	s.remember(*profile)

	return profile, nil
}

// LoadByUsername fetches a profile by its unique handle, for the public
// profile screen. Returns models.ErrProfileNotFound when absent.
func (s *Store) LoadByUsername(ctx context.Context, username string) (*models.Profile, error) {
	profile, found, err := s.db.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error while `s.db.GetProfileByUsername()` calling: %w", err)
	}
	if !found {
		return nil, models.ErrProfileNotFound
	}

	return profile, nil
}

// Cached returns the replica copy of the profile, if any.
func (s *Store) Cached(profileID string) (models.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, found := s.replica[profileID]

	return profile, found
}

// UpdateBio persists the bio text verbatim, then reflects it in the
// replica. No length validation is applied.
func (s *Store) UpdateBio(ctx context.Context, profileID, bio string) error {
	if err := s.db.UpdateProfileBio(ctx, profileID, bio); err != nil {
		return fmt.Errorf("error while `s.db.UpdateProfileBio()` calling: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if profile, found := s.replica[profileID]; found {
		profile.Bio = bio
		s.replica[profileID] = profile
	}

	return nil
}

// UpdateTheme persists the color pair, then reflects it in the replica.
// Membership of the value in the fixed palette is not enforced.
func (s *Store) UpdateTheme(ctx context.Context, profileID string, theme models.Theme) error {
	if err := s.db.UpdateProfileTheme(ctx, profileID, theme); err != nil {
		return fmt.Errorf("error while `s.db.UpdateProfileTheme()` calling: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if profile, found := s.replica[profileID]; found {
		profile.Theme = theme
		s.replica[profileID] = profile
	}

	return nil
}

// Ensure creates the profile for a first-time identity if it does not
// exist yet and returns the resulting record. The username is derived
// from the email local part; when that handle is already taken, a
// `user_`-prefixed fallback built from the identity is used instead.
// Availability is checked before the insert: a failed statement inside
// a PostgreSQL transaction aborts the whole transaction, so the insert
// must not be retried on the same one.
func (s *Store) Ensure(ctx context.Context, userID, email string, transaction *sql.Tx) (*models.Profile, error) {
	existing, found, err := s.db.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error while `s.db.GetProfileByID()` calling: %w", err)
	}
	if found {
		s.remember(*existing)
		return existing, nil
	}

	username := deriveUsername(userID, email)
	_, taken, err := s.db.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error while `s.db.GetProfileByUsername()` calling: %w", err)
	}
	if taken {
		username = fallbackUsername(userID)
	}

	profile := &models.Profile{
		ID:       userID,
		Username: username,
		Bio:      "",
		Theme:    models.DefaultTheme,
	}

	if err := s.db.CreateProfile(ctx, profile, transaction); err != nil {
		return nil, fmt.Errorf("error while `s.db.CreateProfile()` calling: %w", err)
	}

	s.remember(*profile)

	return profile, nil
}

// Clear drops all locally held profile state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replica = map[string]models.Profile{}
}

func (s *Store) remember(profile models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replica[profile.ID] = profile
}

func deriveUsername(userID, email string) string {
	localPart, _, found := strings.Cut(email, "@")
	if found && localPart != "" {
		return localPart
	}

	return fallbackUsername(userID)
}

func fallbackUsername(userID string) string {
	suffix := userID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}

	return "user_" + suffix
}
