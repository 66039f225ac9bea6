package models

import "time"

// Category groups videos under a unique name. Categories are referenced by
// videos but do not own them.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CategoryRef is the denormalized category reference attached to expanded
// video listings.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
