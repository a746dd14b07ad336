// Package user defines the account model used for authentication.
// A user owns exactly one profile sharing the same identifier.
package user

// User represents a registered account.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string

	// Email is the sign-in address; unique across accounts.
	Email string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string
}
