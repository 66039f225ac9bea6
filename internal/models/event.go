package models

import "time"

// Event represents a loggable lifecycle action in the catalog.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "video.create", "user.delete"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	SubjectID *string   `json:"subjectId,omitempty"` // Nullable for system-wide events
	CreatedAt time.Time `json:"createdAt"`
}
