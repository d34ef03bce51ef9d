package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"moneymap/internal/config"
	apperrors "moneymap/internal/errors"
	"moneymap/internal/logger"
	"moneymap/internal/models"
	"moneymap/internal/services"
)

// maxProfilePictureSize is the upload cap for profile pictures (5 MB).
const maxProfilePictureSize = 5 << 20

var allowedPictureExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SettingsHandler handles account settings requests.
type SettingsHandler struct {
	userService services.UserServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(userService services.UserServicer) *SettingsHandler {
	return &SettingsHandler{userService: userService}
}

// UpdateProfileRequest represents the profile update payload. Every field
// is optional; omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name   string   `json:"name" binding:"omitempty,min=1,max=100"`
	Email  string   `json:"email" binding:"omitempty,email,max=255"`
	Phone  string   `json:"phone" binding:"max=30"`
	Salary *float64 `json:"salary" binding:"omitempty,gte=0"`
}

// UpdatePasswordRequest represents the password change payload.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6,max=128"`
}

// UpdatePreferencesRequest represents the preferences payload.
type UpdatePreferencesRequest struct {
	Theme              string `json:"theme" binding:"required,theme"`
	Currency           string `json:"currency" binding:"required,iso4217"`
	NotifyEmail        bool   `json:"email_notifications"`
	NotifyPush         bool   `json:"push_notifications"`
	NotifyBudgetAlerts bool   `json:"budget_alerts"`
}

// GetProfile returns the authenticated user's profile.
// @Summary     Get profile
// @Description Get the authenticated user's profile and preferences
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/profile [get]
func (h *SettingsHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile updates the authenticated user's profile fields.
// @Summary     Update profile
// @Description Update name, email, phone, and salary
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} map[string]interface{} "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Email already in use"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/profile [put]
func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.Name, req.Email, req.Phone, req.Salary)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdatePassword changes the authenticated user's password.
// @Summary     Update password
// @Description Change the password after verifying the current one
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePasswordRequest true "Current and new password"
// @Success     200 {object} MessageResponse "Password updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized or wrong current password"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/password [put]
func (h *SettingsHandler) UpdatePassword(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.userService.UpdatePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// UpdatePreferences updates display and notification preferences.
// @Summary     Update preferences
// @Description Update theme, currency, and notification preferences
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdatePreferencesRequest true "Preferences"
// @Success     200 {object} map[string]interface{} "Updated user"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/preferences [put]
func (h *SettingsHandler) UpdatePreferences(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdatePreferences(userID, models.Preferences{
		Theme:              req.Theme,
		Currency:           req.Currency,
		NotifyEmail:        req.NotifyEmail,
		NotifyPush:         req.NotifyPush,
		NotifyBudgetAlerts: req.NotifyBudgetAlerts,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UploadProfilePicture stores a new profile picture for the user.
// @Summary     Upload profile picture
// @Description Upload a JPG or PNG profile picture (max 5 MB)
// @Tags        settings
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       picture formData file true "Image file"
// @Success     200 {object} map[string]interface{} "Updated user"
// @Failure     400 {object} ErrorResponse "Missing, oversized, or unsupported file"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings/profile-picture [post]
func (h *SettingsHandler) UploadProfilePicture(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	file, err := c.FormFile("picture")
	if err != nil {
		respondWithError(c, apperrors.ErrNoFileUploaded)
		return
	}

	if err := validateProfilePicture(file); err != nil {
		respondWithError(c, err)
		return
	}

	cfg := config.Get()
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := fmt.Sprintf("profile-%s%s", uuid.NewString(), ext)
	dst := filepath.Join(cfg.UploadDir, filename)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	previous, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	pictureURL := fmt.Sprintf("%s/uploads/profile-pictures/%s", cfg.BackendURL, filename)
	user, err := h.userService.UpdateProfilePicture(userID, pictureURL)
	if err != nil {
		respondWithError(c, err)
		return
	}

	removeOldPicture(cfg, previous.ProfilePicture)

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// validateProfilePicture checks the upload's size, extension, and declared
// content type.
func validateProfilePicture(file *multipart.FileHeader) error {
	if file.Size > maxProfilePictureSize {
		return apperrors.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPictureExts[ext] {
		return apperrors.ErrInvalidFileType
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		return apperrors.ErrInvalidFileType
	}

	return nil
}

// removeOldPicture deletes a previously uploaded picture once it has been
// replaced. Only files inside the upload directory are touched; failures
// are logged and otherwise ignored.
func removeOldPicture(cfg *config.Config, pictureURL string) {
	if pictureURL == "" {
		return
	}

	filename := filepath.Base(pictureURL)
	if filename == "." || filename == "/" {
		return
	}

	path := filepath.Join(cfg.UploadDir, filename)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Get().Warnw("failed to remove old profile picture",
			"path", path,
			"error", err,
		)
	}
}
