package profile

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtechoracle/linkNest/internal/db/memorystorage"
	"github.com/dtechoracle/linkNest/internal/logger"
	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/session"
)

func TestMain(m *testing.M) {
	if err := logger.Init("debug"); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newStore(t *testing.T) (*Store, *memorystorage.MemoryStorage) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db), db
}

func TestLoadUnknownProfile(t *testing.T) {
	store, _ := newStore(t)

	profile, err := store.Load(context.Background(), "nobody")

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestEnsureCreatesProfileOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	created, err := store.Ensure(ctx, "user-1", "alice@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "user-1", created.ID)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "", created.Bio)
	assert.Equal(t, models.DefaultTheme, created.Theme)

	again, err := store.Ensure(ctx, "user-1", "alice@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, created, again)

	cached, found := store.Cached("user-1")
	require.True(t, found)
	assert.Equal(t, *created, cached)
}

func TestEnsureFallsBackWhenUsernameTaken(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	require.NoError(t, db.CreateProfile(ctx, &models.Profile{
		ID:       "other",
		Username: "alice",
		Theme:    models.DefaultTheme,
	}, nil))

	created, err := store.Ensure(ctx, "2fbc81a9-user", "alice@example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, "user_2fbc81a9", created.Username)
}

// abortingKeeper mimics PostgreSQL transaction semantics: once any
// statement fails, every following statement fails until the
// transaction ends.
type abortingKeeper struct {
	takenUsernames map[string]models.Profile
	inserted       []models.Profile
	aborted        bool
}

func (k *abortingKeeper) CreateProfile(ctx context.Context, profile *models.Profile, transaction *sql.Tx) error {
	if k.aborted {
		return errors.New("current transaction is aborted, commands ignored until end of transaction block")
	}
	if _, found := k.takenUsernames[profile.Username]; found {
		k.aborted = true
		return models.ErrUsernameTaken
	}
	k.inserted = append(k.inserted, *profile)
	return nil
}

func (k *abortingKeeper) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, bool, error) {
	return nil, false, nil
}

func (k *abortingKeeper) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	profile, found := k.takenUsernames[username]
	if !found {
		return nil, false, nil
	}
	return &profile, true, nil
}

func (k *abortingKeeper) UpdateProfileBio(ctx context.Context, profileID, bio string) error {
	return nil
}

func (k *abortingKeeper) UpdateProfileTheme(ctx context.Context, profileID string, theme models.Theme) error {
	return nil
}

func TestEnsureInsertsOnceWhenUsernameTaken(t *testing.T) {
	keeper := &abortingKeeper{
		takenUsernames: map[string]models.Profile{
			"alice": {ID: "other", Username: "alice"},
		},
	}
	store := New(keeper)

	created, err := store.Ensure(context.Background(), "2fbc81a9-user", "alice@example.com", nil)

	require.NoError(t, err)
	assert.Equal(t, "user_2fbc81a9", created.Username)
	// The fallback is chosen before the insert; a second insert on an
	// aborted transaction would fail.
	require.Len(t, keeper.inserted, 1)
	assert.Equal(t, "user_2fbc81a9", keeper.inserted[0].Username)
}

func TestEnsureDerivesUsernameFromEmail(t *testing.T) {
	testCases := []struct {
		name     string
		userID   string
		email    string
		expected string
	}{
		{name: "local part of the address", userID: "user-1", email: "bob.builder@example.com", expected: "bob.builder"},
		{name: "no at sign", userID: "abcdef1234", email: "not-an-address", expected: "user_abcdef12"},
		{name: "empty local part", userID: "abcdef1234", email: "@example.com", expected: "user_abcdef12"},
		{name: "short identifier", userID: "u1", email: "", expected: "user_u1"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			store, _ := newStore(t)

			created, err := store.Ensure(context.Background(), testCase.userID, testCase.email, nil)

			require.NoError(t, err)
			assert.Equal(t, testCase.expected, created.Username)
		})
	}
}

func TestUpdateBioStoresTextVerbatim(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	_, err := store.Ensure(ctx, "user-1", "alice@example.com", nil)
	require.NoError(t, err)

	bio := "  multi\nline\n\tbio with   spacing  "
	require.NoError(t, store.UpdateBio(ctx, "user-1", bio))

	stored, found, err := db.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, bio, stored.Bio)

	cached, found := store.Cached("user-1")
	require.True(t, found)
	assert.Equal(t, bio, cached.Bio)
}

func TestUpdateTheme(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	_, err := store.Ensure(ctx, "user-1", "alice@example.com", nil)
	require.NoError(t, err)

	theme := models.Theme{Primary: "#4ECDC4", Secondary: "#F0FFFD"}
	require.NoError(t, store.UpdateTheme(ctx, "user-1", theme))
	// Re-selecting the active theme is a no-op, not an error.
	require.NoError(t, store.UpdateTheme(ctx, "user-1", theme))

	stored, found, err := db.GetProfileByID(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, theme, stored.Theme)
}

func TestLoadByUsername(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	created, err := store.Ensure(ctx, "user-1", "alice@example.com", nil)
	require.NoError(t, err)

	found, err := store.LoadByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = store.LoadByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrProfileNotFound)
}

func TestBindWarmsAndClearsReplica(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	require.NoError(t, db.CreateProfile(ctx, &models.Profile{
		ID:       "user-1",
		Username: "alice",
		Theme:    models.DefaultTheme,
	}, nil))

	sessions := session.New()
	store.Bind(sessions)

	_, found := store.Cached("user-1")
	assert.False(t, found)

	sessions.SignIn(session.Identity{UserID: "user-1", Email: "alice@example.com"})
	cached, found := store.Cached("user-1")
	require.True(t, found)
	assert.Equal(t, "alice", cached.Username)

	sessions.SignOut()
	_, found = store.Cached("user-1")
	assert.False(t, found)
}
