package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bioSaverStub struct {
	saved map[string]string
	err   error
}

func newBioSaverStub() *bioSaverStub {
	return &bioSaverStub{saved: map[string]string{}}
}

func (s *bioSaverStub) UpdateBio(ctx context.Context, profileID, bio string) error {
	if s.err != nil {
		return s.err
	}
	s.saved[profileID] = bio
	return nil
}

func TestBioEditorStartsViewing(t *testing.T) {
	editor := NewBioEditor(newBioSaverStub(), "profile-1", "hello")

	assert.Equal(t, Viewing, editor.State())
	assert.Equal(t, "hello", editor.Bio())
}

func TestEditSeedsDraftWithPersistedText(t *testing.T) {
	editor := NewBioEditor(newBioSaverStub(), "profile-1", "hello")

	editor.Edit()

	assert.Equal(t, Editing, editor.State())
	assert.Equal(t, "hello", editor.Draft())
}

func TestCancelDiscardsDraft(t *testing.T) {
	store := newBioSaverStub()
	editor := NewBioEditor(store, "profile-1", "hello")

	editor.Edit()
	editor.Type("scratch that")
	editor.Cancel()

	assert.Equal(t, Viewing, editor.State())
	assert.Equal(t, "hello", editor.Bio())
	assert.Empty(t, store.saved)

	// A fresh editing round starts from the persisted text again.
	editor.Edit()
	assert.Equal(t, "hello", editor.Draft())
}

func TestSavePersistsDraftAndReturnsToViewing(t *testing.T) {
	store := newBioSaverStub()
	editor := NewBioEditor(store, "profile-1", "hello")

	editor.Edit()
	editor.Type("updated bio")
	require.NoError(t, editor.Save(context.Background()))

	assert.Equal(t, Viewing, editor.State())
	assert.Equal(t, "updated bio", editor.Bio())
	assert.Equal(t, "updated bio", store.saved["profile-1"])
}

func TestSaveFailureKeepsEditing(t *testing.T) {
	store := newBioSaverStub()
	store.err = errors.New("backend unavailable")
	editor := NewBioEditor(store, "profile-1", "hello")

	editor.Edit()
	editor.Type("updated bio")

	assert.Error(t, editor.Save(context.Background()))
	assert.Equal(t, Editing, editor.State())
	assert.Equal(t, "hello", editor.Bio())
	assert.Equal(t, "updated bio", editor.Draft())
}

func TestTypeOutsideEditingIsIgnored(t *testing.T) {
	editor := NewBioEditor(newBioSaverStub(), "profile-1", "hello")

	editor.Type("should not stick")

	assert.Equal(t, "hello", editor.Draft())
}

func TestSaveOutsideEditingIsANoOp(t *testing.T) {
	store := newBioSaverStub()
	editor := NewBioEditor(store, "profile-1", "hello")

	require.NoError(t, editor.Save(context.Background()))
	assert.Empty(t, store.saved)
}

func TestDropdownToggle(t *testing.T) {
	dropdown := &Dropdown{}

	assert.False(t, dropdown.Open())

	dropdown.Toggle()
	assert.True(t, dropdown.Open())

	dropdown.Toggle()
	assert.False(t, dropdown.Open())
}

func TestDropdownOutsideInteraction(t *testing.T) {
	dropdown := &Dropdown{}

	dropdown.Toggle()
	dropdown.OutsideInteraction()
	assert.False(t, dropdown.Open())

	// Outside interactions while closed stay closed.
	dropdown.OutsideInteraction()
	assert.False(t, dropdown.Open())
}
