package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/api/respond"
	"github.com/avelar/vidshelf-be/internal/auth"
	"github.com/avelar/vidshelf-be/internal/services"
	"github.com/avelar/vidshelf-be/internal/storage"
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	service services.UserServiceProvider
	assets  *storage.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, assets *storage.Store) *UserHandler {
	return &UserHandler{service: service, assets: assets}
}

// Register handles new user registration. The request is a multipart form
// with username, email and password fields plus an optional avatar image.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in := services.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Missing parameters")
		return
	}

	avatar, err := saveUpload(r, h.assets, storage.KindOthers, "image")
	if err != nil {
		log.Error().Err(err).Msg("Failed to store avatar")
		respond.Error(w, http.StatusInternalServerError, "Failed to store image")
		return
	}
	in.Avatar = avatar

	user, err := h.service.Register(in)
	if err != nil {
		if removeErr := h.assets.Remove(storage.KindOthers, avatar); removeErr != nil {
			log.Warn().Err(removeErr).Str("asset", avatar).Msg("Failed to remove avatar of rejected registration")
		}
		writeServiceError(w, err)
		return
	}

	respond.Success(w, http.StatusOK, "User registered successfully", respond.Envelope{"user": user})
}

// Login handles user authentication and token generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Authenticate(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		writeServiceError(w, err)
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respond.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respond.Success(w, http.StatusOK, "Login successful", respond.Envelope{
		"token": token,
		"user":  user,
	})
}

// Profile retrieves the currently authenticated user from the token.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "User profile", respond.Envelope{"user": user})
}

// Update handles a sparse edit of the caller's profile.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateUser(claims.UserID, services.UserUpdate{
		Username: payload.Username,
		Email:    payload.Email,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "User updated successfully", respond.Envelope{"user": user})
}

// ChangePassword handles changing the caller's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdatePassword(claims.UserID, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "Password updated successfully", nil)
}

// Delete handles the permanent deletion of the caller's account, cascading
// to their videos and image assets. When the datastore could not provide a
// transaction the response says so explicitly.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.CallerFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	report, err := h.service.DeleteAccount(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to delete user account")
		writeServiceError(w, err)
		return
	}

	message := "User account deleted"
	if !report.Transactional {
		message = "User account deleted without transactional guarantees"
	}
	respond.Success(w, http.StatusOK, message, respond.Envelope{
		"videosDeleted": report.VideosDeleted,
		"transactional": report.Transactional,
	})
}
