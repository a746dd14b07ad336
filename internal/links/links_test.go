package links

import (
	"context"
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

func newCollection(t *testing.T) *Collection {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db)
}

func TestAppendAssignsSequentialDisplayOrder(t *testing.T) {
	collection := newCollection(t)
	ctx := context.Background()

	first, err := collection.Append(ctx, "profile-1", "https://github.com/octocat", "Code")
	require.NoError(t, err)
	second, err := collection.Append(ctx, "profile-1", "https://youtube.com/@octocat", "")
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
}

func TestAppendRejectsEmptyURL(t *testing.T) {
	collection := newCollection(t)

	link, err := collection.Append(context.Background(), "profile-1", "", "No URL")

	assert.Nil(t, link)
	assert.ErrorIs(t, err, models.ErrEmptyURL)
}

func TestListSortsByDisplayOrder(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	ctx := context.Background()

	// Inserted out of order on purpose.
	require.NoError(t, db.InsertLink(ctx, &models.Link{ID: "b", ProfileID: "profile-1", URL: "https://example.com/b", DisplayOrder: 2}))
	require.NoError(t, db.InsertLink(ctx, &models.Link{ID: "a", ProfileID: "profile-1", URL: "https://example.com/a", DisplayOrder: 0}))
	require.NoError(t, db.InsertLink(ctx, &models.Link{ID: "c", ProfileID: "profile-1", URL: "https://example.com/c", DisplayOrder: 1}))

	collection := New(db)
	listed, err := collection.List(ctx, "profile-1")
	require.NoError(t, err)

	require.Len(t, listed, 3)
	assert.Equal(t, "a", listed[0].ID)
	assert.Equal(t, "c", listed[1].ID)
	assert.Equal(t, "b", listed[2].ID)
}

func TestListReturnsEmptySequenceForUnknownProfile(t *testing.T) {
	collection := newCollection(t)

	listed, err := collection.List(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRemoveKeepsRelativeOrderAndOrderValues(t *testing.T) {
	collection := newCollection(t)
	ctx := context.Background()

	_, err := collection.Append(ctx, "profile-1", "https://example.com/first", "First")
	require.NoError(t, err)
	middle, err := collection.Append(ctx, "profile-1", "https://example.com/middle", "Middle")
	require.NoError(t, err)
	_, err = collection.Append(ctx, "profile-1", "https://example.com/last", "Last")
	require.NoError(t, err)

	require.NoError(t, collection.Remove(ctx, middle.ID))

	remaining := collection.Cached("profile-1")
	require.Len(t, remaining, 2)
	assert.Equal(t, "First", remaining[0].Title)
	assert.Equal(t, "Last", remaining[1].Title)

	// Deletion leaves a gap; the orders of survivors are not compacted.
	assert.Equal(t, 0, remaining[0].DisplayOrder)
	assert.Equal(t, 2, remaining[1].DisplayOrder)

	listed, err := collection.List(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, remaining, listed)
}

func TestBindWarmsAndClearsReplica(t *testing.T) {
	db, err := memorystorage.New()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, db.InsertLink(ctx, &models.Link{ID: "a", ProfileID: "user-1", URL: "https://example.com/a"}))

	collection := New(db)
	sessions := session.New()
	collection.Bind(sessions)

	assert.Empty(t, collection.Cached("user-1"))

	sessions.SignIn(session.Identity{UserID: "user-1", Email: "user-1@example.com"})
	assert.Len(t, collection.Cached("user-1"), 1)

	sessions.SignOut()
	assert.Empty(t, collection.Cached("user-1"))
}

type failingLinkKeeper struct{}

func (failingLinkKeeper) GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error) {
	return nil, errors.New("backend unavailable")
}

func (failingLinkKeeper) InsertLink(ctx context.Context, link *models.Link) error {
	return errors.New("backend unavailable")
}

func (failingLinkKeeper) DeleteLink(ctx context.Context, linkID string) error {
	return errors.New("backend unavailable")
}

func TestBackendFailuresSurfaceAsErrors(t *testing.T) {
	collection := New(failingLinkKeeper{})
	ctx := context.Background()

	_, err := collection.List(ctx, "profile-1")
	assert.Error(t, err)

	_, err = collection.Append(ctx, "profile-1", "https://example.com", "")
	assert.Error(t, err)

	assert.Error(t, collection.Remove(ctx, "link-1"))
}
