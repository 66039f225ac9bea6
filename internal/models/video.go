package models

import "time"

// Platforms a video can be sourced from.
const (
	PlatformYoutube   = "Youtube"
	PlatformTikTok    = "TikTok"
	PlatformInstagram = "Instagram"
)

// IsValidPlatform reports whether p is one of the accepted platform values.
func IsValidPlatform(p string) bool {
	switch p {
	case PlatformYoutube, PlatformTikTok, PlatformInstagram:
		return true
	}
	return false
}

// Video is a catalog entry owned by the user that posted it. UserID is the
// sole authorization boundary for edit and delete.
type Video struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CategoryID  string    `json:"category,omitempty"`
	Platform    string    `json:"platform"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// VideoWithRefs is a video with its user and category references expanded
// for display.
type VideoWithRefs struct {
	Video
	User     *UserRef     `json:"userRef,omitempty"`
	Category *CategoryRef `json:"categoryRef,omitempty"`
}
