package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"rohis/internal/domain/account"
)

// MaxPictureBytes bounds a profile picture upload.
const MaxPictureBytes = 2 << 20

// Picture upload errors
var (
	ErrNotImage        = errors.New("profile picture must be an image")
	ErrPictureTooLarge = errors.New("profile picture cannot exceed 2 MB")
	ErrNoPicture       = errors.New("choose a picture to upload")
)

// ProfileStore defines the store interface needed by the profile orchestrators.
type ProfileStore interface {
	UpdateProfile(ctx context.Context, username string) error
	UploadPicture(ctx context.Context, filename, contentType string, r io.Reader) error
}

// --- Update Profile ---

// UpdateProfileInput carries input for the update profile orchestrator.
type UpdateProfileInput struct {
	UserID   int64
	Username string `validate:"required,max=80" label:"Username"`
}

// UpdateProfileDeps holds dependencies for UpdateProfile.
type UpdateProfileDeps struct {
	ProfileStore ProfileStore
}

// ExecuteUpdateProfile changes the signed-in user's username.
// PRE: the user is signed in
// POST: the backend holds the trimmed username
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps UpdateProfileDeps) error {
	input.Username = trimmed(input.Username)
	if err := account.ValidateUsername(input.Username); err != nil {
		return err
	}
	if err := validateInput(input); err != nil {
		return err
	}
	if err := deps.ProfileStore.UpdateProfile(ctx, input.Username); err != nil {
		return err
	}
	slog.Info("profile_updated", "user_id", input.UserID)
	return nil
}

// --- Upload Picture ---

// UploadPictureInput carries input for the upload picture orchestrator.
// Size is the declared size; the content is also capped while streaming.
type UploadPictureInput struct {
	UserID   int64
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadPictureDeps holds dependencies for UploadPicture.
type UploadPictureDeps struct {
	ProfileStore ProfileStore
}

// ExecuteUploadPicture checks the file is an image of at most MaxPictureBytes and streams it to the backend.
// PRE: Content is positioned at the start of the file
// POST: the content type sent is sniffed from the bytes, not taken from the browser
func ExecuteUploadPicture(ctx context.Context, input UploadPictureInput, deps UploadPictureDeps) error {
	if input.Content == nil || input.Size == 0 {
		return ErrNoPicture
	}
	if input.Size > MaxPictureBytes {
		return ErrPictureTooLarge
	}

	raw, err := io.ReadAll(io.LimitReader(input.Content, MaxPictureBytes+1))
	if err != nil {
		return err
	}
	if len(raw) > MaxPictureBytes {
		return ErrPictureTooLarge
	}
	contentType := http.DetectContentType(raw)
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}

	name := filepath.Base(input.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "picture"
	}
	if err := deps.ProfileStore.UploadPicture(ctx, name, contentType, bytes.NewReader(raw)); err != nil {
		return err
	}
	slog.Info("profile_picture_uploaded", "user_id", input.UserID, "bytes", len(raw), "content_type", contentType)
	return nil
}
