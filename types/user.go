package types

import "time"

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Email is the user's email address, stored lowercase and unique.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Avatar is the stored filename of the user's avatar in the asset
	// store, empty when no avatar has been uploaded.
	Avatar string `json:"avatar,omitempty" db:"avatar"`

	// Posts is the denormalized count of posts authored by the user.
	// It is kept in sync by the post workflow and never goes negative.
	Posts int `json:"posts" db:"posts"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Author holds the public fields of a post's creator that are safe to
// embed in post responses.
type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
