package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/logger"
	"moneymap/internal/middleware"
	"moneymap/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	userService services.UserServicer
	mailer      services.Mailer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService services.UserServicer, mailer services.Mailer) *AuthHandler {
	return &AuthHandler{userService: userService, mailer: mailer}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Phone    string `json:"phone" binding:"max=30"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest represents the forgot-password request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user and send a verification email
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} MessageResponse "User registered, verification email sent"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, verificationToken, err := h.userService.CreateUser(req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Registration stands even if the mail bounces; the user can ask for a
	// new verification link later.
	if err := h.mailer.SendVerificationEmail(user.Email, verificationToken); err != nil {
		logger.Get().Errorw("failed to send verification email",
			"user_id", user.ID,
			"error", err,
		)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

// VerifyEmail handles email verification links
// @Summary     Verify email
// @Description Verify a user's email address using the emailed token
// @Tags        auth
// @Produce     json
// @Param       token path string true "Verification token"
// @Success     200 {object} MessageResponse "Email verified"
// @Failure     400 {object} ErrorResponse "Invalid or expired token"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/verify-email/{token} [get]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		respondWithError(c, apperrors.ErrInvalidToken)
		return
	}

	if err := h.userService.VerifyEmail(token); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully. You can now login.",
	})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a verified user and get a token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated and token generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials or unverified email"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// ForgotPassword handles temporary password requests
// @Summary     Request a temporary password
// @Description Email a temporary password to a verified account
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Account email"
// @Success     200 {object} MessageResponse "Generic acknowledgement"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	// The response never reveals whether the account exists.
	acknowledgement := gin.H{
		"message": "If a verified account exists, a temporary password will be sent.",
	}

	user, tempPassword, err := h.userService.ResetPassword(req.Email)
	if err != nil {
		c.JSON(http.StatusOK, acknowledgement)
		return
	}

	if err := h.mailer.SendTempPasswordEmail(user.Email, tempPassword); err != nil {
		logger.Get().Errorw("failed to send temporary password email",
			"user_id", user.ID,
			"error", err,
		)
	}

	c.JSON(http.StatusOK, acknowledgement)
}

// GetUser returns the authenticated user's data
// @Summary     Get current user
// @Description Get the authenticated user's account data
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "User data"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /auth/user [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
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
