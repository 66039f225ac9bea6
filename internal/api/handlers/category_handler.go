package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/api/respond"
	"github.com/avelar/vidshelf-be/internal/models"
	"github.com/avelar/vidshelf-be/internal/services"
	"github.com/avelar/vidshelf-be/internal/storage"
)

// CategoryHandler handles HTTP requests for the category registry.
type CategoryHandler struct {
	service services.CategoryServiceProvider
	assets  *storage.Store
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service services.CategoryServiceProvider, assets *storage.Store) *CategoryHandler {
	return &CategoryHandler{service: service, assets: assets}
}

// Create handles creating a new category. The request is a multipart form
// with name and description fields plus an image file, all required.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.CategoryInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
	if in.Name == "" || in.Description == "" {
		respond.Error(w, http.StatusBadRequest, "Parameters missing")
		return
	}

	image, err := saveUpload(r, h.assets, storage.KindCategories, "image")
	if err != nil {
		log.Error().Err(err).Msg("Failed to store category image")
		respond.Error(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	if image == "" {
		respond.Error(w, http.StatusBadRequest, "Parameters missing")
		return
	}
	in.Image = image

	category, err := h.service.Create(in)
	if err != nil {
		if removeErr := h.assets.Remove(storage.KindCategories, image); removeErr != nil {
			log.Warn().Err(removeErr).Str("asset", image).Msg("Failed to remove image of rejected category")
		}
		writeServiceError(w, err)
		return
	}

	respond.Success(w, http.StatusOK, "New category created", respond.Envelope{"category": category})
}

// GetAll handles listing every category.
func (h *CategoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetAll()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	respond.Success(w, http.StatusOK, "Categories listed", respond.Envelope{"categories": categories})
}

// Get handles retrieving a single category by its ID.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Category found", respond.Envelope{"category": category})
}

// Update handles a sparse edit of a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Image       *string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.Update(chi.URLParam(r, "id"), services.CategoryUpdate{
		Name:        payload.Name,
		Description: payload.Description,
		Image:       payload.Image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Category updated successfully", respond.Envelope{"category": category})
}

// Delete handles the deletion of a category, cascading to the videos that
// reference it.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	category, videosDeleted, err := h.service.Delete(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Category deleted successfully", respond.Envelope{
		"category":      category,
		"videosDeleted": videosDeleted,
	})
}
