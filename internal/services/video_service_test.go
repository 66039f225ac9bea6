package services

import (
	"errors"
	"os"
	"testing"

	"github.com/avelar/vidshelf-be/internal/apperr"
	"github.com/avelar/vidshelf-be/internal/models"
	"github.com/avelar/vidshelf-be/internal/storage"
)

func TestVideoCreateAndGetRoundTrip(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	user := createTestUser(t, users, "alice", "alice@example.com")
	category := createTestCategory(t, categories, "Music")

	created, err := videos.Create(user.ID, VideoInput{
		Title:       "My video",
		Description: "A description",
		URL:         "https://youtube.com/watch?v=1",
		CategoryID:  category.ID,
		Platform:    models.PlatformYoutube,
		Image:       "video.png",
	})
	if err != nil {
		t.Fatalf("create video: %v", err)
	}
	if created.UserID != user.ID {
		t.Errorf("expected owner %s, got %s", user.ID, created.UserID)
	}

	got, err := videos.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if got.Title != "My video" || got.Description != "A description" ||
		got.URL != "https://youtube.com/watch?v=1" || got.CategoryID != category.ID ||
		got.Platform != models.PlatformYoutube {
		t.Errorf("round-trip mismatch: %+v", got)
	}
}

func TestVideoCreateValidation(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	user := createTestUser(t, users, "bob", "bob@example.com")
	category := createTestCategory(t, categories, "Gaming")

	valid := VideoInput{
		Title:       "t",
		Description: "d",
		URL:         "u",
		CategoryID:  category.ID,
		Platform:    models.PlatformTikTok,
		Image:       "i.png",
	}

	missing := valid
	missing.Title = ""
	if _, err := videos.Create(user.ID, missing); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing title, got %v", err)
	}

	badPlatform := valid
	badPlatform.Platform = "Vimeo"
	if _, err := videos.Create(user.ID, badPlatform); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for unknown platform, got %v", err)
	}

	badCategory := valid
	badCategory.CategoryID = "not-a-uuid"
	if _, err := videos.Create(user.ID, badCategory); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for malformed category id, got %v", err)
	}

	// A syntactically valid but nonexistent category blocks the create.
	ghostCategory := valid
	ghostCategory.CategoryID = "11111111-1111-1111-1111-111111111111"
	if _, err := videos.Create(user.ID, ghostCategory); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing category, got %v", err)
	}
}

func TestVideoListEmptyIsNotFound(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	videos := NewVideoService(db, assets, events)

	if _, err := videos.GetAll(); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for empty catalog, got %v", err)
	}
	_, err := videos.GetByPlatform(models.PlatformTikTok)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for empty platform listing, got %v", err)
	}
	if msg := apperr.Message(err); msg != "No videos from platform TikTok" {
		t.Errorf("expected message naming the platform, got %q", msg)
	}
}

func TestVideoFilterRequiresBothParameters(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	videos := NewVideoService(db, assets, events)

	if _, err := videos.GetByPlatformAndCategory("", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing parameters, got %v", err)
	}
	if _, err := videos.GetByPlatformAndCategory(models.PlatformYoutube, ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for missing category, got %v", err)
	}
	if _, err := videos.GetByPlatformAndCategory(models.PlatformYoutube, "12345"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for malformed category id, got %v", err)
	}
}

func TestVideoListByPlatformAndCategory(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	user := createTestUser(t, users, "carol", "carol@example.com")
	catA := createTestCategory(t, categories, "Tech")
	catB := createTestCategory(t, categories, "Food")

	createTestVideo(t, videos, user.ID, catA.ID, "video1", models.PlatformYoutube)
	createTestVideo(t, videos, user.ID, catA.ID, "video2", models.PlatformInstagram)
	createTestVideo(t, videos, user.ID, catB.ID, "video3", models.PlatformYoutube)

	byCategory, err := videos.GetByCategory(catA.ID)
	if err != nil {
		t.Fatalf("get by category: %v", err)
	}
	if len(byCategory) != 2 {
		t.Errorf("expected 2 videos in category A, got %d", len(byCategory))
	}

	byPlatform, err := videos.GetByPlatform(models.PlatformYoutube)
	if err != nil {
		t.Fatalf("get by platform: %v", err)
	}
	if len(byPlatform) != 2 {
		t.Errorf("expected 2 Youtube videos, got %d", len(byPlatform))
	}

	filtered, err := videos.GetByPlatformAndCategory(models.PlatformYoutube, catA.ID)
	if err != nil {
		t.Fatalf("get by platform and category: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Title != "video1" {
		t.Errorf("expected only video1 in the combined filter, got %+v", filtered)
	}
}

func TestVideoListByUserExpandsReferences(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	user := createTestUser(t, users, "dave", "dave@example.com")
	category := createTestCategory(t, categories, "Travel")
	createTestVideo(t, videos, user.ID, category.ID, "trip", models.PlatformInstagram)

	listed, err := videos.GetByUser(user.ID)
	if err != nil {
		t.Fatalf("get by user: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 video, got %d", len(listed))
	}
	if listed[0].User == nil || listed[0].User.Username != "dave" {
		t.Errorf("expected expanded user reference, got %+v", listed[0].User)
	}
	if listed[0].Category == nil || listed[0].Category.Name != "Travel" {
		t.Errorf("expected expanded category reference, got %+v", listed[0].Category)
	}

	if _, err := videos.GetByUser("not-a-uuid"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for malformed user id, got %v", err)
	}
	if _, err := videos.GetByUser("22222222-2222-2222-2222-222222222222"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for absent user, got %v", err)
	}
}

func TestVideoUpdateOwnershipAndPartialSemantics(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	owner := createTestUser(t, users, "owner", "owner@example.com")
	intruder := createTestUser(t, users, "intruder", "intruder@example.com")
	category := createTestCategory(t, categories, "News")
	video := createTestVideo(t, videos, owner.ID, category.ID, "original", models.PlatformYoutube)

	newTitle := "edited"
	if _, err := videos.Update(owner.ID, video.ID, VideoUpdate{}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for empty update, got %v", err)
	}

	// Existence is checked before ownership, so a missing id reports not
	// found even to a non-owner.
	if _, err := videos.Update(intruder.ID, "33333333-3333-3333-3333-333333333333", VideoUpdate{Title: &newTitle}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found before any ownership signal, got %v", err)
	}

	if _, err := videos.Update(intruder.ID, video.ID, VideoUpdate{Title: &newTitle}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden for non-owner edit, got %v", err)
	}

	updated, err := videos.Update(owner.ID, video.ID, VideoUpdate{Title: &newTitle})
	if err != nil {
		t.Fatalf("owner edit: %v", err)
	}
	if updated.Title != "edited" {
		t.Errorf("expected title to change, got %q", updated.Title)
	}
	if updated.Description != "original description" {
		t.Errorf("expected untouched field to survive a sparse edit, got %q", updated.Description)
	}
	if updated.UpdatedAt.Before(video.UpdatedAt) {
		t.Errorf("expected updatedAt to advance: %v -> %v", video.UpdatedAt, updated.UpdatedAt)
	}
}

func TestVideoDeleteOwnershipAndIdempotence(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	owner := createTestUser(t, users, "erin", "erin@example.com")
	intruder := createTestUser(t, users, "frank", "frank@example.com")
	category := createTestCategory(t, categories, "Sports")
	video := createTestVideo(t, videos, owner.ID, category.ID, "match", models.PlatformTikTok)

	if _, err := videos.Delete(intruder.ID, video.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden for non-owner delete, got %v", err)
	}

	deleted, err := videos.Delete(owner.ID, video.ID)
	if err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if deleted.ID != video.ID {
		t.Errorf("expected the deleted record back, got %+v", deleted)
	}

	// Retrying is safe and reports not found on every attempt.
	for i := 0; i < 2; i++ {
		if _, err := videos.Delete(owner.ID, video.ID); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected not found on retry %d, got %v", i, err)
		}
	}
}

func TestVideoDeleteRemovesImageAsset(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	owner := createTestUser(t, users, "gail", "gail@example.com")
	category := createTestCategory(t, categories, "Art")
	video := createTestVideo(t, videos, owner.ID, category.ID, "painting", models.PlatformYoutube)

	path := assets.Path(storage.KindVideos, video.Image)
	if err := os.WriteFile(path, []byte("img"), 0644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	if _, err := videos.Delete(owner.ID, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected image asset to be removed, stat err: %v", err)
	}
}

func TestVideoBulkDeleteOwnedSubsetPolicy(t *testing.T) {
	db, assets := newTestEnv(t)
	events := NewEventService(db)
	users := NewUserService(db, assets, events)
	categories := NewCategoryService(db, assets, events)
	videos := NewVideoService(db, assets, events)

	alice := createTestUser(t, users, "alice", "alice@example.com")
	mallory := createTestUser(t, users, "mallory", "mallory@example.com")
	category := createTestCategory(t, categories, "Mixed")

	mine := createTestVideo(t, videos, alice.ID, category.ID, "mine", models.PlatformYoutube)
	theirs := createTestVideo(t, videos, mallory.ID, category.ID, "theirs", models.PlatformYoutube)

	// One id with invalid syntax fails the whole batch before anything is
	// touched.
	if _, err := videos.DeleteBulk(alice.ID, []string{mine.ID, "oops"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected invalid input for malformed id in batch, got %v", err)
	}
	if _, err := videos.GetByID(mine.ID); err != nil {
		t.Fatalf("expected video to survive a rejected batch: %v", err)
	}

	// The unowned id is silently skipped; exactly the owned subset goes.
	deleted, err := videos.DeleteBulk(alice.ID, []string{mine.ID, theirs.ID})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != mine.ID {
		t.Errorf("expected only the owned video to be deleted, got %v", deleted)
	}
	if _, err := videos.GetByID(theirs.ID); err != nil {
		t.Errorf("expected the unowned video to survive: %v", err)
	}

	// A batch matching nothing is rejected.
	if _, err := videos.DeleteBulk(alice.ID, []string{mine.ID}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected error for batch with no matches, got %v", err)
	}
	if _, err := videos.DeleteBulk(alice.ID, nil); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected error for empty batch, got %v", err)
	}
}
