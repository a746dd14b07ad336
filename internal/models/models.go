// Package models defines the domain entities of the LinkNest service:
// profiles, links, themes, API request/response bodies and the sentinel
// errors shared between the storage and service layers.
package models

import "errors"

// Theme is a primary/secondary color pair applied to a profile page.
type Theme struct {
	Primary   string `json:"primary" validate:"required,hexcolor"`
	Secondary string `json:"secondary" validate:"required,hexcolor"`
}

// ThemePalette is the fixed set of themes a profile may choose from.
// Palette membership is not enforced on update.
var ThemePalette = []Theme{
	{Primary: "#FF6B6B", Secondary: "#FFF3F3"},
	{Primary: "#4ECDC4", Secondary: "#F0FFFD"},
	{Primary: "#45B7D1", Secondary: "#E6F8FC"},
	{Primary: "#96C93D", Secondary: "#F5FAE9"},
	{Primary: "#A78BFA", Secondary: "#F5F3FF"},
	{Primary: "#F7B731", Secondary: "#FFF9E6"},
}

// DefaultTheme is applied to profiles that never picked a theme.
var DefaultTheme = ThemePalette[0]

// Profile is a user's public identity record.
// Its ID always equals the owning user's ID.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Theme    Theme  `json:"theme"`
}

// Link is a single ordered outbound URL entry owned by a profile.
type Link struct {
	ID           string `json:"id"`
	ProfileID    string `json:"profile_id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	DisplayOrder int    `json:"display_order"`
}

// SignUpRequest is the body of POST /api/signup.
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SignInRequest is the body of POST /api/login.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateBioRequest is the body of POST /api/profile/bio.
// The text is persisted verbatim, without length validation.
type UpdateBioRequest struct {
	Bio string `json:"bio"`
}

// UpdateThemeRequest is the body of POST /api/profile/theme.
type UpdateThemeRequest struct {
	Theme Theme `json:"theme"`
}

// AddLinkRequest is the body of POST /api/links.
type AddLinkRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title"`
}

// StatsResponse is the body of GET /api/internal/stats.
type StatsResponse struct {
	Profiles int64 `json:"profiles"`
	Links    int64 `json:"links"`
}

// Storage backend selection, decided from the configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeSqlite
	StorageTypeMemory
)

// ErrProfileNotFound is returned when a profile lookup by ID or username
// matches no row.
var ErrProfileNotFound = errors.New("profile not found")

// ErrEmptyURL is returned by the link collection when an append is
// attempted with an empty destination URL.
var ErrEmptyURL = errors.New("link URL must not be empty")

// ErrEmailTaken is returned on sign-up when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// ErrUsernameTaken is returned when a profile username collides with an
// existing one.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidCredentials is returned on sign-in when the email is unknown
// or the password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")
