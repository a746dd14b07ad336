package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentStartsEmpty(t *testing.T) {
	manager := New()

	assert.Nil(t, manager.Current())
}

func TestSignInSetsCurrentAndNotifies(t *testing.T) {
	manager := New()

	var notified []*Identity
	manager.Subscribe(func(identity *Identity) {
		notified = append(notified, identity)
	})

	manager.SignIn(Identity{UserID: "user-1", Email: "alice@example.com"})

	current := manager.Current()
	require.NotNil(t, current)
	assert.Equal(t, "user-1", current.UserID)
	assert.Equal(t, "alice@example.com", current.Email)

	require.Len(t, notified, 1)
	require.NotNil(t, notified[0])
	assert.Equal(t, "user-1", notified[0].UserID)
}

func TestSignOutClearsCurrentAndNotifiesWithNil(t *testing.T) {
	manager := New()
	manager.SignIn(Identity{UserID: "user-1"})

	var notified []*Identity
	manager.Subscribe(func(identity *Identity) {
		notified = append(notified, identity)
	})

	manager.SignOut()

	assert.Nil(t, manager.Current())
	require.Len(t, notified, 1)
	assert.Nil(t, notified[0])
}

func TestAllSubscribersReceiveEveryTransition(t *testing.T) {
	manager := New()

	counts := make([]int, 2)
	manager.Subscribe(func(*Identity) { counts[0]++ })
	manager.Subscribe(func(*Identity) { counts[1]++ })

	manager.SignIn(Identity{UserID: "user-1"})
	manager.SignOut()
	manager.SignIn(Identity{UserID: "user-2"})

	assert.Equal(t, []int{3, 3}, counts)
}

func TestCurrentReturnsACopy(t *testing.T) {
	manager := New()
	manager.SignIn(Identity{UserID: "user-1"})

	current := manager.Current()
	current.UserID = "mutated"

	assert.Equal(t, "user-1", manager.Current().UserID)
}
