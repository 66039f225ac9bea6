package services

import (
	"errors"
	"os"
	"testing"

	"github.com/avelar/vidshelf-be/internal/apperr"
	"github.com/avelar/vidshelf-be/internal/models"
	"github.com/avelar/vidshelf-be/internal/storage"
)

func TestCategoryCreateAndGet(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	categories := NewCategoryService(db, assets, events)

	created := createTestCategory(t, categories, "Music")

	got, err := categories.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if got.Name != "Music" || got.Description != "Music description" {
		t.Errorf("round-trip mismatch: %+v", got)
	}

	if _, err := categories.Create(CategoryInput{Name: "Music", Description: "again", Image: "x.png"}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict on duplicate name, got %v", err)
	}
	if _, err := categories.Create(CategoryInput{Name: "", Description: "d", Image: "x.png"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing name, got %v", err)
	}
	if _, err := categories.GetByID("not-a-uuid"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for malformed id, got %v", err)
	}
	if _, err := categories.GetByID("44444444-4444-4444-4444-444444444444"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for absent id, got %v", err)
	}
}

func TestCategoryGetAllEmptyIsValid(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	categories := NewCategoryService(db, assets, events)

	listed, err := categories.GetAll()
	if err != nil {
		t.Fatalf("expected empty registry to list cleanly: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected no categories, got %d", len(listed))
	}

	createTestCategory(t, categories, "One")
	createTestCategory(t, categories, "Two")
	listed, err = categories.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 categories, got %d", len(listed))
	}
}

func TestCategoryUpdate(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	categories := NewCategoryService(db, assets, events)

	music := createTestCategory(t, categories, "Music")
	createTestCategory(t, categories, "Gaming")

	if _, err := categories.Update(music.ID, CategoryUpdate{}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for empty update, got %v", err)
	}
	taken := "Gaming"
	if _, err := categories.Update(music.ID, CategoryUpdate{Name: &taken}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("expected conflict on taken name, got %v", err)
	}

	newDesc := "All things musical"
	updated, err := categories.Update(music.ID, CategoryUpdate{Description: &newDesc})
	if err != nil {
		t.Fatalf("update category: %v", err)
	}
	if updated.Description != newDesc {
		t.Errorf("expected new description, got %q", updated.Description)
	}
	if updated.Name != "Music" {
		t.Errorf("expected untouched name to survive, got %q", updated.Name)
	}
}

func TestCategoryDeleteCascadesToVideos(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	user := createTestUser(t, users, "alice", "alice@example.com")
	doomed := createTestCategory(t, categories, "Doomed")
	safe := createTestCategory(t, categories, "Safe")

	v1 := createTestVideo(t, videos, user.ID, doomed.ID, "one", models.PlatformYoutube)
	v2 := createTestVideo(t, videos, user.ID, doomed.ID, "two", models.PlatformTikTok)
	kept := createTestVideo(t, videos, user.ID, safe.ID, "kept", models.PlatformYoutube)

	path := assets.Path(storage.KindVideos, v1.Image)
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	deleted, count, err := categories.Delete(doomed.ID)
	if err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if deleted.ID != doomed.ID {
		t.Errorf("expected the deleted category back, got %+v", deleted)
	}
	if count != 2 {
		t.Errorf("expected 2 videos cascaded, got %d", count)
	}

	if _, err := categories.GetByID(doomed.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected category to be gone, got %v", err)
	}
	for _, id := range []string{v1.ID, v2.ID} {
		if _, err := videos.GetByID(id); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected video %s to be cascaded away, got %v", id, err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected video asset to be removed, stat err: %v", err)
	}

	if _, err := videos.GetByID(kept.ID); err != nil {
		t.Errorf("expected the other category's video to survive: %v", err)
	}
	if _, count, err := categories.Delete(safe.ID); err != nil || count != 1 {
		t.Errorf("expected second cascade of 1 video, got count=%d err=%v", count, err)
	}
}
