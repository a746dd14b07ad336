// Package links implements the ordered link collection of a profile.
// The collection mirrors the persisted display_order in an in-memory
// replica; a new link's order is derived from the local count, and
// deletions do not compact the remaining order values.
package links

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/dtechoracle/linkNest/internal/logger"
	"github.com/dtechoracle/linkNest/internal/models"
	"github.com/dtechoracle/linkNest/internal/session"
)

type linkKeeper interface {
	GetLinksByProfile(ctx context.Context, profileID string) ([]models.Link, error)

	InsertLink(ctx context.Context, link *models.Link) error

	DeleteLink(ctx context.Context, linkID string) error
}

// Collection fetches, appends and removes the links of profiles.
type Collection struct {
	db linkKeeper

	mu      sync.Mutex
	replica map[string][]models.Link
}

// New creates a Collection over the given storage backend.
func New(db linkKeeper) *Collection {
	return &Collection{
		db:      db,
		replica: map[string][]models.Link{},
	}
}

// Bind subscribes the collection to session transitions: an authenticated
// transition warms the replica for the new identity, an unauthenticated
// one clears all locally held link state. A failed warm-up fetch is
// logged and surfaces as an empty sequence.
func (c *Collection) Bind(sessions *session.Manager) {
	sessions.Subscribe(func(identity *session.Identity) {
		if identity == nil {
			c.Clear()
			return
		}
		if _, err := c.List(context.Background(), identity.UserID); err != nil {
			logger.Log.Debugln("Error warming the links replica: ", zap.Error(err))
		}
	})
}

// List fetches the profile's links sorted ascending by display_order and
// refreshes the replica. An empty slice is returned when there are none.
func (c *Collection) List(ctx context.Context, profileID string) ([]models.Link, error) {
	fetched, err := c.db.GetLinksByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("error while `c.db.GetLinksByProfile()` calling: %w", err)
	}

	sort.SliceStable(fetched, func(i, j int) bool {
		return fetched[i].DisplayOrder < fetched[j].DisplayOrder
	})

	c.mu.Lock()
	c.replica[profileID] = fetched
	c.mu.Unlock()

	return c.Cached(profileID), nil
}

// Cached returns the replica copy of the profile's ordered sequence.
func (c *Collection) Cached(profileID string) []models.Link {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]models.Link, len(c.replica[profileID]))
	copy(result, c.replica[profileID])

	return result
}

// Append stores a new link at the end of the sequence. The display order
// is the current local count, not a server-derived maximum, so concurrent
// sessions of the same owner may produce duplicate order values.
// The title is optional; an empty URL is rejected.
func (c *Collection) Append(ctx context.Context, profileID, url, title string) (*models.Link, error) {
	if url == "" {
		return nil, models.ErrEmptyURL
	}

	link := &models.Link{
		ID:           uuid.New().String(),
		ProfileID:    profileID,
		URL:          url,
		Title:        title,
		DisplayOrder: len(c.Cached(profileID)),
	}

	if err := c.db.InsertLink(ctx, link); err != nil {
		return nil, fmt.Errorf("error while `c.db.InsertLink()` calling: %w", err)
	}

	c.mu.Lock()
	c.replica[profileID] = append(c.replica[profileID], *link)
	c.mu.Unlock()

	return link, nil
}

// Remove deletes a link by its identifier and filters it out of the
// replica. The relative order of the remaining links is unchanged and
// their display_order values are not compacted.
func (c *Collection) Remove(ctx context.Context, linkID string) error {
	if err := c.db.DeleteLink(ctx, linkID); err != nil {
		return fmt.Errorf("error while `c.db.DeleteLink()` calling: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for profileID, profileLinks := range c.replica {
		c.replica[profileID] = funk.Filter(profileLinks, func(link models.Link) bool {
			return link.ID != linkID
		}).([]models.Link)
	}

	return nil
}

// Clear drops all locally held link state.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replica = map[string][]models.Link{}
}
