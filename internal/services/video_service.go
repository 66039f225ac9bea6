package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/avelar/vidshelf-be/internal/apperr"
	"github.com/avelar/vidshelf-be/internal/models"
	"github.com/avelar/vidshelf-be/internal/storage"
)

// VideoInput carries the fields required to post a new video. All of them,
// including the stored image name, are mandatory.
type VideoInput struct {
	Title       string
	Description string
	URL         string
	CategoryID  string
	Platform    string
	Image       string
}

// VideoUpdate carries the sparse field set of an edit. Only non-nil fields
// are applied.
type VideoUpdate struct {
	Title       *string
	Description *string
	URL         *string
	CategoryID  *string
	Platform    *string
	Image       *string
}

func (u VideoUpdate) empty() bool {
	return u.Title == nil && u.Description == nil && u.URL == nil &&
		u.CategoryID == nil && u.Platform == nil && u.Image == nil
}

// VideoServiceProvider defines the interface for video services.
type VideoServiceProvider interface {
	Create(userID string, in VideoInput) (models.Video, error)
	GetAll() ([]models.Video, error)
	GetByID(id string) (models.Video, error)
	GetByCategory(categoryID string) ([]models.Video, error)
	GetByPlatform(platform string) ([]models.Video, error)
	GetByPlatformAndCategory(platform, categoryID string) ([]models.Video, error)
	GetByUser(userID string) ([]models.VideoWithRefs, error)
	Update(callerID, id string, in VideoUpdate) (models.Video, error)
	Delete(callerID, id string) (models.Video, error)
	DeleteBulk(callerID string, ids []string) ([]string, error)
}

// VideoService provides business logic for the video lifecycle: creation,
// listing, ownership-gated edits and single or bulk deletion.
type VideoService struct {
	db     *sql.DB
	assets *storage.Store
	events EventServiceProvider
}

// NewVideoService creates a new VideoService.
func NewVideoService(db *sql.DB, assets *storage.Store, events EventServiceProvider) *VideoService {
	return &VideoService{db: db, assets: assets, events: events}
}

const videoColumns = "id, user_id, title, description, url, category_id, platform, image, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVideo(row rowScanner) (models.Video, error) {
	var v models.Video
	var categoryID, image sql.NullString
	err := row.Scan(&v.ID, &v.UserID, &v.Title, &v.Description, &v.URL, &categoryID, &v.Platform, &image, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return models.Video{}, err
	}
	v.CategoryID = categoryID.String
	v.Image = image.String
	return v, nil
}

func (s *VideoService) queryVideos(query string, args ...interface{}) ([]models.Video, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (s *VideoService) categoryExists(id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)", id).Scan(&exists)
	return exists, err
}

// Create persists a new video owned by the authenticated caller. The
// category reference must name an existing category.
func (s *VideoService) Create(userID string, in VideoInput) (models.Video, error) {
	if in.Title == "" || in.Description == "" || in.URL == "" || in.CategoryID == "" || in.Platform == "" || in.Image == "" {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "Parameters missing")
	}
	if !models.IsValidPlatform(in.Platform) {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "The platform provided is not valid")
	}
	if _, err := uuid.Parse(in.CategoryID); err != nil {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "Category not found")
	}
	exists, err := s.categoryExists(in.CategoryID)
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to look up category: %w", err)
	}
	if !exists {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "Category not found")
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		CategoryID:  in.CategoryID,
		Platform:    in.Platform,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.Exec(
		"INSERT INTO videos ("+videoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		video.ID, video.UserID, video.Title, video.Description, video.URL, video.CategoryID, video.Platform, video.Image, video.CreatedAt, video.UpdatedAt,
	)
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to write video to database: %w", err)
	}

	if err := s.events.CreateEvent("video.create", "info", fmt.Sprintf("Video '%s' was posted.", video.Title), &video.ID); err != nil {
		log.Warn().Err(err).Str("video_id", video.ID).Msg("Failed to record video.create event")
	}
	return s.GetByID(video.ID)
}

// GetAll returns every video in the catalog. An empty catalog is reported as
// not found rather than an empty list.
func (s *VideoService) GetAll() ([]models.Video, error) {
	videos, err := s.queryVideos("SELECT " + videoColumns + " FROM videos")
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "Videos not found")
	}
	return videos, nil
}

// GetByID retrieves a single video by its ID.
func (s *VideoService) GetByID(id string) (models.Video, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "The id provided is not valid")
	}
	video, err := scanVideo(s.db.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Video{}, apperr.New(apperr.ErrNotFound, "Video not found")
		}
		return models.Video{}, err
	}
	return video, nil
}

// GetByCategory returns the videos referencing a category.
func (s *VideoService) GetByCategory(categoryID string) ([]models.Video, error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return nil, apperr.New(apperr.ErrInvalidInput, "The id provided is not valid")
	}
	videos, err := s.queryVideos("SELECT "+videoColumns+" FROM videos WHERE category_id = ?", categoryID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		// Empty result reported as 400 to match the existing API contract.
		return nil, apperr.New(apperr.ErrInvalidInput, "No videos found from the category provided")
	}
	return videos, nil
}

// GetByPlatform returns the videos sourced from a platform.
func (s *VideoService) GetByPlatform(platform string) ([]models.Video, error) {
	if platform == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "Missing parameters")
	}
	videos, err := s.queryVideos("SELECT "+videoColumns+" FROM videos WHERE platform = ?", platform)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, apperr.New(apperr.ErrNotFound, fmt.Sprintf("No videos from platform %s", platform))
	}
	return videos, nil
}

// GetByPlatformAndCategory returns the videos matching both filters. Both
// parameters are required.
func (s *VideoService) GetByPlatformAndCategory(platform, categoryID string) ([]models.Video, error) {
	if platform == "" || categoryID == "" {
		return nil, apperr.New(apperr.ErrInvalidInput, "Missing parameters")
	}
	if _, err := uuid.Parse(categoryID); err != nil {
		return nil, apperr.New(apperr.ErrInvalidInput, "The category id provided is not valid")
	}
	videos, err := s.queryVideos("SELECT "+videoColumns+" FROM videos WHERE platform = ? AND category_id = ?", platform, categoryID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "No videos found")
	}
	return videos, nil
}

// GetByUser returns the videos owned by a user, with the user and category
// references expanded for display. The user must exist.
func (s *VideoService) GetByUser(userID string) ([]models.VideoWithRefs, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperr.New(apperr.ErrInvalidInput, "The user id provided is not valid")
	}

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.New(apperr.ErrNotFound, "User not found")
	}

	rows, err := s.db.Query(`
	SELECT v.id, v.user_id, v.title, v.description, v.url, v.category_id, v.platform, v.image, v.created_at, v.updated_at,
	       u.username, u.email, u.avatar, c.name
	FROM videos v
	JOIN users u ON u.id = v.user_id
	LEFT JOIN categories c ON c.id = v.category_id
	WHERE v.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []models.VideoWithRefs
	for rows.Next() {
		var v models.VideoWithRefs
		var categoryID, image, avatar, categoryName sql.NullString
		var username, email string
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Title, &v.Description, &v.URL, &categoryID, &v.Platform, &image, &v.CreatedAt, &v.UpdatedAt,
			&username, &email, &avatar, &categoryName,
		)
		if err != nil {
			return nil, err
		}
		v.CategoryID = categoryID.String
		v.Image = image.String
		v.User = &models.UserRef{ID: v.UserID, Username: username, Email: email, Avatar: avatar.String}
		if categoryID.Valid {
			v.Category = &models.CategoryRef{ID: categoryID.String, Name: categoryName.String}
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "Videos not found")
	}
	return videos, nil
}

// Update applies a sparse edit to a video. Existence is checked before
// ownership, so a missing id never reveals an ownership signal. On success
// the updated timestamp is refreshed and the updated record returned.
func (s *VideoService) Update(callerID, id string, in VideoUpdate) (models.Video, error) {
	if in.empty() {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "No fields to update provided")
	}
	if _, err := uuid.Parse(id); err != nil {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "The id provided is not valid")
	}

	video, err := scanVideo(s.db.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Video{}, apperr.New(apperr.ErrNotFound, "No video found")
		}
		return models.Video{}, err
	}
	if video.UserID != callerID {
		return models.Video{}, apperr.New(apperr.ErrForbidden, "You are not allowed to edit this post")
	}

	if in.CategoryID != nil {
		if _, err := uuid.Parse(*in.CategoryID); err != nil {
			return models.Video{}, apperr.New(apperr.ErrInvalidInput, "The category id provided is not valid")
		}
		exists, err := s.categoryExists(*in.CategoryID)
		if err != nil {
			return models.Video{}, fmt.Errorf("failed to look up category: %w", err)
		}
		if !exists {
			return models.Video{}, apperr.New(apperr.ErrInvalidInput, "Category not found")
		}
	}
	if in.Platform != nil && !models.IsValidPlatform(*in.Platform) {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "The platform provided is not valid")
	}

	sets := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	appendSet := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	appendSet("title", in.Title)
	appendSet("description", in.Description)
	appendSet("url", in.URL)
	appendSet("category_id", in.CategoryID)
	appendSet("platform", in.Platform)
	appendSet("image", in.Image)

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	_, err = s.db.Exec("UPDATE videos SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to update video: %w", err)
	}

	// A replaced image leaves its old asset unreferenced; drop it now.
	if in.Image != nil && video.Image != "" && video.Image != *in.Image {
		if err := s.assets.Remove(storage.KindVideos, video.Image); err != nil {
			log.Warn().Err(err).Str("asset", video.Image).Msg("Failed to remove replaced video image")
		}
	}

	return s.GetByID(id)
}

// Delete removes a single video owned by the caller and returns the deleted
// record. The stored image asset is removed best-effort.
func (s *VideoService) Delete(callerID, id string) (models.Video, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Video{}, apperr.New(apperr.ErrInvalidInput, "The id provided is not valid")
	}

	video, err := scanVideo(s.db.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Video{}, apperr.New(apperr.ErrNotFound, "Video not found")
		}
		return models.Video{}, err
	}
	if video.UserID != callerID {
		return models.Video{}, apperr.New(apperr.ErrForbidden, "You are not allowed to delete this post")
	}

	if _, err := s.db.Exec("DELETE FROM videos WHERE id = ?", id); err != nil {
		return models.Video{}, fmt.Errorf("failed to delete video: %w", err)
	}

	if err := s.assets.Remove(storage.KindVideos, video.Image); err != nil {
		log.Warn().Err(err).Str("asset", video.Image).Msg("Failed to remove video image")
	}
	if err := s.events.CreateEvent("video.delete", "info", fmt.Sprintf("Video '%s' was deleted.", video.Title), nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record video.delete event")
	}
	return video, nil
}

// DeleteBulk removes the subset of the requested ids owned by the caller and
// returns the ids actually deleted. Ids owned by someone else are silently
// skipped (owned-subset policy); an id with invalid syntax fails the whole
// request before anything is deleted.
func (s *VideoService) DeleteBulk(callerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, apperr.New(apperr.ErrInvalidInput, "Parameters missing")
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperr.New(apperr.ErrInvalidInput, "The id provided is not valid")
		}
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, callerID)

	rows, err := s.db.Query("SELECT id, image FROM videos WHERE id IN ("+placeholders+") AND user_id = ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deleted []string
	var images []string
	for rows.Next() {
		var id string
		var image sql.NullString
		if err := rows.Scan(&id, &image); err != nil {
			return nil, err
		}
		deleted = append(deleted, id)
		if image.Valid && image.String != "" {
			images = append(images, image.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(deleted) == 0 {
		// Reported as 400 to match the existing API contract.
		return nil, apperr.New(apperr.ErrInvalidInput, "No videos found")
	}

	_, err = s.db.Exec("DELETE FROM videos WHERE id IN ("+placeholders+") AND user_id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete videos: %w", err)
	}

	for _, image := range images {
		if err := s.assets.Remove(storage.KindVideos, image); err != nil {
			log.Warn().Err(err).Str("asset", image).Msg("Failed to remove video image")
		}
	}
	if err := s.events.CreateEvent("video.delete.bulk", "info", fmt.Sprintf("%d videos were deleted.", len(deleted)), nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record video.delete.bulk event")
	}
	return deleted, nil
}
