package handlers

import (
	"net/http"
	"strconv"

	"github.com/avelar/vidshelf-be/internal/api/respond"
	"github.com/avelar/vidshelf-be/internal/services"
)

// EventHandler handles HTTP requests for the activity log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles listing the most recent events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.service.GetRecentEvents(limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Listing recent events", respond.Envelope{"events": events})
}
