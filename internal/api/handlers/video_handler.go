package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/api/respond"
	"github.com/avelar/vidshelf-be/internal/auth"
	"github.com/avelar/vidshelf-be/internal/services"
	"github.com/avelar/vidshelf-be/internal/storage"
)

// VideoHandler handles HTTP requests for the video lifecycle.
type VideoHandler struct {
	service services.VideoServiceProvider
	assets  *storage.Store
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(service services.VideoServiceProvider, assets *storage.Store) *VideoHandler {
	return &VideoHandler{service: service, assets: assets}
}

// Create handles posting a new video. The request is a multipart form with
// title, description, url, category and platform fields plus an image file;
// all of them are required. The owner is always the authenticated caller.
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.VideoInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		URL:         r.FormValue("url"),
		CategoryID:  r.FormValue("category"),
		Platform:    r.FormValue("platform"),
	}
	if in.Title == "" || in.Description == "" || in.URL == "" || in.CategoryID == "" || in.Platform == "" {
		respond.Error(w, http.StatusBadRequest, "Parameters missing")
		return
	}

	image, err := saveUpload(r, h.assets, storage.KindVideos, "image")
	if err != nil {
		log.Error().Err(err).Msg("Failed to store video image")
		respond.Error(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	if image == "" {
		respond.Error(w, http.StatusBadRequest, "Parameters missing")
		return
	}
	in.Image = image

	video, err := h.service.Create(claims.UserID, in)
	if err != nil {
		// The saved image would be orphaned; drop it right away.
		if removeErr := h.assets.Remove(storage.KindVideos, image); removeErr != nil {
			log.Warn().Err(removeErr).Str("asset", image).Msg("Failed to remove image of rejected video")
		}
		writeServiceError(w, err)
		return
	}

	respond.Success(w, http.StatusOK, "Video posted successfully", respond.Envelope{"video": video})
}

// GetAll handles listing every video.
func (h *VideoHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.GetAll()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Listing all the videos", respond.Envelope{"videos": videos})
}

// Get handles retrieving a single video by its ID.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.service.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Video found", respond.Envelope{"video": video})
}

// GetByCategory handles listing the videos of a category.
func (h *VideoHandler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.GetByCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Getting videos by category", respond.Envelope{"videosFound": videos})
}

// GetByPlatform handles listing the videos of a platform.
func (h *VideoHandler) GetByPlatform(w http.ResponseWriter, r *http.Request) {
	videos, err := h.service.GetByPlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Getting videos by platform", respond.Envelope{"videos": videos})
}

// GetByFilter handles the combined platform+category filter; both query
// parameters are required.
func (h *VideoHandler) GetByFilter(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	category := r.URL.Query().Get("category")

	videos, err := h.service.GetByPlatformAndCategory(platform, category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Returning videos by platform and category", respond.Envelope{"videos": videos})
}

// GetByUser handles listing a user's videos with expanded references. When
// no id is supplied in the path, the caller's own id is used.
func (h *VideoHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		claims, ok := auth.CallerFromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
			return
		}
		userID = claims.UserID
	}

	videos, err := h.service.GetByUser(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Getting videos by user", respond.Envelope{"videos": videos})
}

type videoUpdatePayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         *string `json:"url"`
	Category    *string `json:"category"`
	Platform    *string `json:"platform"`
	Image       *string `json:"image"`
}

// Update handles a sparse edit of a video. Only the caller that owns the
// video may edit it.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload videoUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	video, err := h.service.Update(claims.UserID, chi.URLParam(r, "id"), services.VideoUpdate{
		Title:       payload.Title,
		Description: payload.Description,
		URL:         payload.URL,
		CategoryID:  payload.Category,
		Platform:    payload.Platform,
		Image:       payload.Image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Video edited successfully", respond.Envelope{"video": video})
}

// Delete handles the deletion of a single video owned by the caller.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	video, err := h.service.Delete(claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Video deleted successfully", respond.Envelope{"video": video})
}

// DeleteBulk handles the deletion of a set of videos. Ids the caller does
// not own are skipped; the response reports exactly what was deleted.
func (h *VideoHandler) DeleteBulk(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deleted, err := h.service.DeleteBulk(claims.UserID, payload.IDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Videos deleted successfully", respond.Envelope{
		"deleted": deleted,
		"count":   len(deleted),
	})
}
