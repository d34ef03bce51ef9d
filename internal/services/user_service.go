package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/middleware"
	"moneymap/internal/models"
)

const verificationTokenTTL = 24 * time.Hour

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// newVerificationToken returns a raw token and its SHA-256 digest.
func newVerificationToken() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw := hex.EncodeToString(buf)
	return raw, middleware.HashToken(raw), nil
}

// newTempPassword returns a random 12-character temporary password.
func newTempPassword() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CreateUser registers a new user and returns the raw verification token.
func (s *userService) CreateUser(name, email, password, phone string) (*models.User, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}

	// Check if user with email exists
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", strings.ToLower(email)).Count(&count)
	if count > 0 {
		return nil, "", apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rawToken, tokenHash, err := newVerificationToken()
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	expiry := time.Now().Add(verificationTokenTTL)
	user := &models.User{
		Name:               name,
		Email:              strings.ToLower(email),
		Password:           string(hashedPassword),
		Phone:              phone,
		VerificationToken:  tokenHash,
		VerificationExpiry: &expiry,
		Preferences: models.Preferences{
			Theme:       "light",
			Currency:    "USD",
			NotifyEmail: true,
		},
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, rawToken, nil
}

// VerifyEmail marks the user holding the given token as verified.
func (s *userService) VerifyEmail(token string) error {
	tokenHash := middleware.HashToken(token)

	var user models.User
	err := s.db.Where("verification_token = ? AND verification_expiry > ?", tokenHash, time.Now()).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrInvalidToken
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{
		"is_verified":         true,
		"verification_token":  "",
		"verification_expiry": nil,
	}
	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AttemptLogin authenticates a verified user by email and password.
func (s *userService) AttemptLogin(email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// ResetPassword replaces a verified user's password with a temporary one.
func (s *userService) ResetPassword(email string) (*models.User, string, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if !user.IsVerified {
		return nil, "", apperrors.ErrUserNotFound
	}

	tempPassword, err := newTempPassword()
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(user).Update("password", string(hashed)).Error; err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, tempPassword, nil
}

// UpdateProfile updates basic profile fields.
func (s *userService) UpdateProfile(userID uint, name, email, phone string, salary *float64) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if email != "" && strings.ToLower(email) != user.Email {
		var count int64
		s.db.Model(&models.User{}).Where("email = ? AND id <> ?", strings.ToLower(email), userID).Count(&count)
		if count > 0 {
			return nil, apperrors.ErrDuplicateEmail
		}
		updates["email"] = strings.ToLower(email)
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if salary != nil {
		updates["salary"] = *salary
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return user, nil
}

// UpdatePassword changes the password after checking the current one.
func (s *userService) UpdatePassword(userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if !s.VerifyPassword(user, currentPassword) {
		return apperrors.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Model(user).Update("password", string(hashed)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdatePreferences replaces the user's preference settings.
func (s *userService) UpdatePreferences(userID uint, prefs models.Preferences) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.Preferences = prefs
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"pref_theme":                prefs.Theme,
		"pref_currency":             prefs.Currency,
		"pref_notify_email":         prefs.NotifyEmail,
		"pref_notify_push":          prefs.NotifyPush,
		"pref_notify_budget_alerts": prefs.NotifyBudgetAlerts,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// UpdateProfilePicture stores the URL of the user's uploaded picture.
func (s *userService) UpdateProfilePicture(userID uint, pictureURL string) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	user.ProfilePicture = pictureURL
	if err := s.db.Model(user).Update("profile_picture", pictureURL).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}
