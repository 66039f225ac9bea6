package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelar/vidshelf-be/internal/apperr"
	"github.com/avelar/vidshelf-be/internal/models"
	"github.com/avelar/vidshelf-be/internal/storage"
	"github.com/avelar/vidshelf-be/internal/validate"
)

// RegisterInput carries the fields of a registration request. Avatar is the
// stored asset name of an already-saved upload, or empty.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// UserUpdate carries the sparse field set of a profile edit.
type UserUpdate struct {
	Username *string
	Email    *string
}

// DeletionReport summarizes a completed account deletion.
type DeletionReport struct {
	VideosDeleted int
	Transactional bool
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(in RegisterInput) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	UpdateUser(id string, in UserUpdate) (models.User, error)
	UpdatePassword(id, currentPassword, newPassword string) error
	DeleteAccount(id string) (DeletionReport, error)
}

// UserService provides business logic for account management, including the
// cascading removal of a user's videos and assets on account deletion.
type UserService struct {
	db     *sql.DB
	assets *storage.Store
	events EventServiceProvider

	// begin starts the deletion transaction; swappable when the datastore
	// cannot provide one.
	begin func() (*sql.Tx, error)
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, assets *storage.Store, events EventServiceProvider) *UserService {
	return &UserService{db: db, assets: assets, events: events, begin: db.Begin}
}

// Register creates a new user, hashing their password. Username and email
// must be unused.
func (s *UserService) Register(in RegisterInput) (models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return models.User{}, apperr.New(apperr.ErrInvalidInput, "Missing parameters")
	}
	if err := validate.UserData(in.Username, in.Email, in.Password); err != nil {
		return models.User{}, apperr.New(apperr.ErrInvalidInput, err.Error())
	}

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)", in.Username, in.Email).Scan(&exists)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if exists {
		return models.User{}, apperr.New(apperr.ErrConflict, "User already exists with that username or email")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Avatar:       in.Avatar,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO users (id, username, email, password_hash, avatar, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.Avatar, user.CreatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to write user to database: %w", err)
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	user, err := s.getUserWithHash("email", email)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.New(apperr.ErrUnauthorized, "Invalid credentials")
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, apperr.New(apperr.ErrUnauthorized, "Invalid credentials")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID, without the password hash.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	user, err := s.getUserWithHash("id", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.New(apperr.ErrNotFound, "User not found")
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) getUserWithHash(column, value string) (models.User, error) {
	var user models.User
	var avatar sql.NullString
	row := s.db.QueryRow("SELECT id, username, email, password_hash, avatar, created_at FROM users WHERE "+column+" = ?", value)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &avatar, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.Avatar = avatar.String
	return user, nil
}

// UpdateUser applies a sparse edit to a user's profile. The new username or
// email must not already be in use by another account.
func (s *UserService) UpdateUser(id string, in UserUpdate) (models.User, error) {
	if in.Username == nil && in.Email == nil {
		return models.User{}, apperr.New(apperr.ErrInvalidInput, "No fields to update provided")
	}
	if _, err := s.GetUserByID(id); err != nil {
		return models.User{}, err
	}

	sets := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if in.Username != nil {
		var taken bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE username = ? AND id != ?)", *in.Username, id).Scan(&taken); err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, apperr.New(apperr.ErrConflict, "Username already in use")
		}
		sets = append(sets, "username = ?")
		args = append(args, *in.Username)
	}
	if in.Email != nil {
		var taken bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)", *in.Email, id).Scan(&taken); err != nil {
			return models.User{}, err
		}
		if taken {
			return models.User{}, apperr.New(apperr.ErrConflict, "Email already in use")
		}
		sets = append(sets, "email = ?")
		args = append(args, *in.Email)
	}
	args = append(args, id)

	_, err := s.db.Exec("UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUserByID(id)
}

// UpdatePassword verifies the current password, then hashes and sets a new
// password for a user.
func (s *UserService) UpdatePassword(id, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return apperr.New(apperr.ErrInvalidInput, "Missing parameters")
	}

	user, err := s.getUserWithHash("id", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.New(apperr.ErrNotFound, "User not found")
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return apperr.New(apperr.ErrUnauthorized, "Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hashedPassword), id)
	return err
}

// DeleteAccount removes the user, every video they own and, best-effort, the
// image assets those videos reference plus the user's avatar. The database
// mutations run inside a transaction when the datastore supports one; on any
// failure to start or commit, the same steps rerun sequentially with no
// atomicity guarantee, and the report says so.
func (s *UserService) DeleteAccount(id string) (DeletionReport, error) {
	user, err := s.getUserWithHash("id", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return DeletionReport{}, apperr.New(apperr.ErrNotFound, "User not found")
		}
		return DeletionReport{}, err
	}

	report := DeletionReport{Transactional: true}
	images, count, err := s.deleteAccountTx(id)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Transactional account deletion failed, falling back to sequential deletion")
		images, count, err = s.deleteAccountSequential(id)
		if err != nil {
			return DeletionReport{}, fmt.Errorf("failed to delete account: %w", err)
		}
		report.Transactional = false
	}
	report.VideosDeleted = count

	// Asset storage is not transactional; deletion happens only after the
	// database mutations are durable, and each file is best-effort.
	for _, image := range images {
		if err := s.assets.Remove(storage.KindVideos, image); err != nil {
			log.Warn().Err(err).Str("asset", image).Msg("Failed to remove video image during account deletion")
		}
	}
	if err := s.assets.Remove(storage.KindOthers, user.Avatar); err != nil {
		log.Warn().Err(err).Str("asset", user.Avatar).Msg("Failed to remove avatar during account deletion")
	}

	msg := fmt.Sprintf("User '%s' deleted their account along with %d videos.", user.Username, count)
	if err := s.events.CreateEvent("user.delete", "warn", msg, nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record user.delete event")
	}
	return report, nil
}

func (s *UserService) deleteAccountTx(id string) ([]string, int, error) {
	tx, err := s.begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	images, count, err := enumerateOwnedVideos(tx, id)
	if err != nil {
		return nil, 0, err
	}
	if _, err := tx.Exec("DELETE FROM videos WHERE user_id = ?", id); err != nil {
		return nil, 0, err
	}
	if _, err := tx.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return images, count, nil
}

func (s *UserService) deleteAccountSequential(id string) ([]string, int, error) {
	images, count, err := enumerateOwnedVideos(s.db, id)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.db.Exec("DELETE FROM videos WHERE user_id = ?", id); err != nil {
		return nil, 0, err
	}
	if _, err := s.db.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return nil, 0, err
	}
	return images, count, nil
}

type querier interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// enumerateOwnedVideos projects only id and image name; nothing else is
// needed for the cascade.
func enumerateOwnedVideos(q querier, userID string) ([]string, int, error) {
	rows, err := q.Query("SELECT id, image FROM videos WHERE user_id = ?", userID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var images []string
	count := 0
	for rows.Next() {
		var videoID string
		var image sql.NullString
		if err := rows.Scan(&videoID, &image); err != nil {
			return nil, 0, err
		}
		count++
		if image.Valid && image.String != "" {
			images = append(images, image.String)
		}
	}
	return images, count, rows.Err()
}
