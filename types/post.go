package types

import "time"

// Post represents a published article.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the headline of the post.
	Title string `json:"title" db:"title"`

	// Category is one of the fixed set returned by Categories.
	Category string `json:"category" db:"category"`

	// Description is the body of the post.
	Description string `json:"description" db:"description"`

	// Thumbnail is the stored filename of the post's thumbnail image
	// in the asset store.
	Thumbnail string `json:"thumbnail" db:"thumbnail"`

	// CreatorID references the user who created the post. It never
	// changes for the lifetime of the post.
	CreatorID int `json:"creator_id" db:"creator_id"`

	// Creator carries the creator's public fields when the post was
	// loaded with its author joined in.
	Creator *Author `json:"creator,omitempty"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Categories is the fixed set of post categories accepted by the API.
var Categories = []string{
	"Agriculture",
	"Business",
	"Education",
	"Entertainment",
	"Art",
	"Investment",
	"Uncategorized",
	"Weather",
}

// ValidCategory reports whether category is a member of Categories.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
