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

// CategoryInput carries the fields required to create a category. Image is
// the stored asset name of an already-saved upload.
type CategoryInput struct {
	Name        string
	Description string
	Image       string
}

// CategoryUpdate carries the sparse field set of a category edit.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Image       *string
}

// CategoryServiceProvider defines the interface for category services.
type CategoryServiceProvider interface {
	Create(in CategoryInput) (models.Category, error)
	GetAll() ([]models.Category, error)
	GetByID(id string) (models.Category, error)
	Update(id string, in CategoryUpdate) (models.Category, error)
	Delete(id string) (models.Category, int, error)
}

// CategoryService provides business logic for the category registry,
// including the cascade that removes a category's videos on delete.
type CategoryService struct {
	db     *sql.DB
	assets *storage.Store
	events EventServiceProvider
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(db *sql.DB, assets *storage.Store, events EventServiceProvider) *CategoryService {
	return &CategoryService{db: db, assets: assets, events: events}
}

const categoryColumns = "id, name, description, image, created_at, updated_at"

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	var image sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Description, &image, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Category{}, err
	}
	c.Image = image.String
	return c, nil
}

// Create persists a new category. Names are unique.
func (s *CategoryService) Create(in CategoryInput) (models.Category, error) {
	if in.Name == "" || in.Description == "" || in.Image == "" {
		return models.Category{}, apperr.New(apperr.ErrInvalidInput, "Parameters missing")
	}

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)", in.Name).Scan(&exists); err != nil {
		return models.Category{}, fmt.Errorf("failed to check for existing category: %w", err)
	}
	if exists {
		return models.Category{}, apperr.New(apperr.ErrConflict, "Category already exists with that name")
	}

	now := time.Now().UTC()
	category := models.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.Exec(
		"INSERT INTO categories ("+categoryColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		category.ID, category.Name, category.Description, category.Image, category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to write category to database: %w", err)
	}
	return category, nil
}

// GetAll lists every category. An empty registry is a valid empty list.
func (s *CategoryService) GetAll() ([]models.Category, error) {
	rows, err := s.db.Query("SELECT " + categoryColumns + " FROM categories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByID retrieves a single category by its ID.
func (s *CategoryService) GetByID(id string) (models.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Category{}, apperr.New(apperr.ErrInvalidInput, "The id provided is not valid")
	}
	category, err := scanCategory(s.db.QueryRow("SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Category{}, apperr.New(apperr.ErrNotFound, "Category not found")
		}
		return models.Category{}, err
	}
	return category, nil
}

// Update applies a sparse edit to a category. A new name must stay unique.
func (s *CategoryService) Update(id string, in CategoryUpdate) (models.Category, error) {
	if in.Name == nil && in.Description == nil && in.Image == nil {
		return models.Category{}, apperr.New(apperr.ErrInvalidInput, "No fields to update provided")
	}

	category, err := s.GetByID(id)
	if err != nil {
		return models.Category{}, err
	}

	if in.Name != nil {
		var taken bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM categories WHERE name = ? AND id != ?)", *in.Name, id).Scan(&taken); err != nil {
			return models.Category{}, err
		}
		if taken {
			return models.Category{}, apperr.New(apperr.ErrConflict, "Category already exists with that name")
		}
	}

	sets := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	appendSet := func(column string, value *string) {
		if value != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *value)
		}
	}
	appendSet("name", in.Name)
	appendSet("description", in.Description)
	appendSet("image", in.Image)
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	_, err = s.db.Exec("UPDATE categories SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to update category: %w", err)
	}

	if in.Image != nil && category.Image != "" && category.Image != *in.Image {
		if err := s.assets.Remove(storage.KindCategories, category.Image); err != nil {
			log.Warn().Err(err).Str("asset", category.Image).Msg("Failed to remove replaced category image")
		}
	}
	return s.GetByID(id)
}

// Delete removes a category after cascading: every video referencing it is
// deleted first, keeping video references non-dangling. Returns the deleted
// category and the number of videos removed with it.
func (s *CategoryService) Delete(id string) (models.Category, int, error) {
	category, err := s.GetByID(id)
	if err != nil {
		return models.Category{}, 0, err
	}

	rows, err := s.db.Query("SELECT id, image FROM videos WHERE category_id = ?", id)
	if err != nil {
		return models.Category{}, 0, err
	}
	defer rows.Close()

	var images []string
	count := 0
	for rows.Next() {
		var videoID string
		var image sql.NullString
		if err := rows.Scan(&videoID, &image); err != nil {
			return models.Category{}, 0, err
		}
		count++
		if image.Valid && image.String != "" {
			images = append(images, image.String)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Category{}, 0, err
	}

	if _, err := s.db.Exec("DELETE FROM videos WHERE category_id = ?", id); err != nil {
		return models.Category{}, 0, fmt.Errorf("failed to delete videos of category: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM categories WHERE id = ?", id); err != nil {
		return models.Category{}, 0, fmt.Errorf("failed to delete category: %w", err)
	}

	for _, image := range images {
		if err := s.assets.Remove(storage.KindVideos, image); err != nil {
			log.Warn().Err(err).Str("asset", image).Msg("Failed to remove video image during category deletion")
		}
	}
	if err := s.assets.Remove(storage.KindCategories, category.Image); err != nil {
		log.Warn().Err(err).Str("asset", category.Image).Msg("Failed to remove category image")
	}

	msg := fmt.Sprintf("Category '%s' was deleted along with %d videos.", category.Name, count)
	if err := s.events.CreateEvent("category.delete", "warn", msg, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record category.delete event")
	}
	return category, count, nil
}
