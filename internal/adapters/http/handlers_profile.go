package web

import (
	"errors"
	"log/slog"
	"net/http"

	"rohis/internal/adapters/http/middleware"
	"rohis/internal/adapters/storage/websession"
	"rohis/internal/application/orchestrators"
	"rohis/internal/domain/account"
)

// handleProfile handles GET /profile[?change_password=true]
func handleProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	renderTemplate(w, r, "profile.html", map[string]any{
		"User":           user,
		"Forced":         user.MustChangePassword || r.URL.Query().Get("change_password") == "true",
		"MaxPictureMB":   orchestrators.MaxPictureBytes >> 20,
		"UsernameMaxLen": account.MaxUsernameLength,
	})
}

// handleUpdateProfile handles POST /profile
func handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	user, _ := currentUser(r)
	err := orchestrators.ExecuteUpdateProfile(r.Context(),
		orchestrators.UpdateProfileInput{UserID: user.ID, Username: r.FormValue("username")},
		orchestrators.UpdateProfileDeps{ProfileStore: stores.Users})
	mutationResult(w, r, "/profile", err, "Profile updated")
}

// handleChangePassword handles POST /profile/password
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	user, _ := currentUser(r)
	input := orchestrators.ChangePasswordInput{
		UserID:          user.ID,
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), input,
		orchestrators.ChangePasswordDeps{PasswordStore: stores.Auth})
	if err != nil {
		back := "/profile"
		if user.MustChangePassword {
			back = middleware.ChangePasswordPath
		}
		mutationResult(w, r, back, err, "")
		return
	}
	flashRedirect(w, r, "/dashboard", websession.FlashSuccess, "Password changed")
}

// handleUploadPicture handles POST /profile/picture (multipart, field profile_picture)
func handleUploadPicture(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r)
	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) {
			slog.Warn("picture_form_invalid", "error", err)
		}
		flashRedirect(w, r, "/profile", websession.FlashError, orchestrators.ErrNoPicture.Error())
		return
	}
	defer file.Close()

	err = orchestrators.ExecuteUploadPicture(r.Context(), orchestrators.UploadPictureInput{
		UserID:   user.ID,
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, orchestrators.UploadPictureDeps{ProfileStore: stores.Users})
	mutationResult(w, r, "/profile", err, "Profile picture updated")
}
