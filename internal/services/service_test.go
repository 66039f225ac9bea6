package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/avelar/vidshelf-be/internal/database"
	"github.com/avelar/vidshelf-be/internal/models"
	"github.com/avelar/vidshelf-be/internal/storage"
)

func newTestEnv(t *testing.T) (*sql.DB, *storage.Store) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	assets, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create asset store: %v", err)
	}
	return db, assets
}

func createTestUser(t *testing.T, svc *UserService, username, email string) models.User {
	t.Helper()

	user, err := svc.Register(RegisterInput{Username: username, Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("register user %s: %v", username, err)
	}
	return user
}

func createTestCategory(t *testing.T, svc *CategoryService, name string) models.Category {
	t.Helper()

	category, err := svc.Create(CategoryInput{Name: name, Description: name + " description", Image: "category.png"})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return category
}

func createTestVideo(t *testing.T, svc *VideoService, userID, categoryID, title, platform string) models.Video {
	t.Helper()

	video, err := svc.Create(userID, VideoInput{
		Title:       title,
		Description: title + " description",
		URL:         "https://example.com/" + title,
		CategoryID:  categoryID,
		Platform:    platform,
		Image:       title + ".png",
	})
	if err != nil {
		t.Fatalf("create video %s: %v", title, err)
	}
	return video
}
