// Package dashboard models the ephemeral view state of the owner
// dashboard: the bio editor with its Viewing/Editing states and the
// account dropdown with its explicit outside-interaction dismissal.
package dashboard

import "context"

// BioEditorState enumerates the states of the bio editor.
type BioEditorState int

const (
	// Viewing shows the persisted bio read-only.
	Viewing BioEditorState = iota

	// Editing shows the draft in a text area.
	Editing
)

type bioSaver interface {
	UpdateBio(ctx context.Context, profileID, bio string) error
}

// BioEditor is the dashboard bio editing state machine. Editing keeps a
// draft in memory; Cancel discards it, Save persists it and returns to
// Viewing. There is no intermediate "saving" state.
type BioEditor struct {
	store     bioSaver
	profileID string
	saved     string
	draft     string
	state     BioEditorState
}

// NewBioEditor creates an editor in the Viewing state holding the
// currently persisted bio.
func NewBioEditor(store bioSaver, profileID, persistedBio string) *BioEditor {
	return &BioEditor{
		store:     store,
		profileID: profileID,
		saved:     persistedBio,
		draft:     persistedBio,
		state:     Viewing,
	}
}

// State returns the current editor state.
func (e *BioEditor) State() BioEditorState {
	return e.state
}

// Bio returns the persisted bio text.
func (e *BioEditor) Bio() string {
	return e.saved
}

// Draft returns the in-memory draft text.
func (e *BioEditor) Draft() string {
	return e.draft
}

// Edit transitions Viewing to Editing, seeding the draft with the
// persisted text. It has no effect while already editing.
func (e *BioEditor) Edit() {
	if e.state != Viewing {
		return
	}
	e.draft = e.saved
	e.state = Editing
}

// Type replaces the draft text. It has no effect outside Editing.
func (e *BioEditor) Type(text string) {
	if e.state != Editing {
		return
	}
	e.draft = text
}

// Cancel discards the draft and returns to Viewing.
func (e *BioEditor) Cancel() {
	e.draft = e.saved
	e.state = Viewing
}

// Save persists the draft and returns to Viewing. On failure the editor
// stays in Editing and the persisted text is unchanged.
func (e *BioEditor) Save(ctx context.Context) error {
	if e.state != Editing {
		return nil
	}

	if err := e.store.UpdateBio(ctx, e.profileID, e.draft); err != nil {
		return err
	}

	e.saved = e.draft
	e.state = Viewing

	return nil
}

// Dropdown is the open/closed state of the account menu.
type Dropdown struct {
	open bool
}

// Open reports whether the dropdown is currently shown.
func (d *Dropdown) Open() bool {
	return d.open
}

// Toggle flips the dropdown state.
func (d *Dropdown) Toggle() {
	d.open = !d.open
}

// OutsideInteraction dismisses the dropdown when it is open. Interactions
// outside the dropdown's bounds while it is closed are ignored.
func (d *Dropdown) OutsideInteraction() {
	d.open = false
}
