package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/models"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.GET("/auth/verify-email/:token", handler.VerifyEmail)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/forgot-password", handler.ForgotPassword)
	r.GET("/auth/user", injectUserID(1), handler.GetUser)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 and sends verification email", func(t *testing.T) {
		mailer := &mockMailer{}
		userSvc := &mockUserService{
			createUserFn: func(name, email, _, _ string) (*models.User, string, error) {
				return &models.User{Name: name, Email: email}, "raw-token", nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, mailer))

		rec := doRequest(r, http.MethodPost, "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(mailer.verifications) != 1 {
			t.Errorf("expected 1 verification email, got %d", len(mailer.verifications))
		}
	})

	t.Run("returns 400 on invalid body", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockMailer{}))

		rec := doRequest(r, http.MethodPost, "/auth/register", `{"email":"not-an-email"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(_, _, _, _ string) (*models.User, string, error) {
				return nil, "", apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockMailer{}))

		rec := doRequest(r, http.MethodPost, "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})

	t.Run("still succeeds when email send fails", func(t *testing.T) {
		mailer := &mockMailer{sendErr: apperrors.ErrInternalServer}
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, mailer))

		rec := doRequest(r, http.MethodPost, "/auth/register",
			`{"name":"Alice","email":"alice@example.com","password":"secret123"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 despite mail failure, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	t.Run("returns 200 on valid token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockUserService{}, &mockMailer{}))

		rec := doRequest(r, http.MethodGet, "/auth/verify-email/sometoken", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid token", func(t *testing.T) {
		userSvc := &mockUserService{
			verifyEmailFn: func(string) error { return apperrors.ErrInvalidToken },
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockMailer{}))

		rec := doRequest(r, http.MethodGet, "/auth/verify-email/bad", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns token and user", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(email, _ string) (*models.User, error) {
				user := &models.User{Name: "Alice", Email: email, IsVerified: true}
				user.ID = 7
				return user, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockMailer{}))

		rec := doRequest(r, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"secret123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["token"] == nil || result["token"] == "" {
			t.Error("expected a token in the response")
		}
		user, ok := result["user"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected user object, got %v", result)
		}
		if user["email"] != "alice@example.com" {
			t.Errorf("expected user email in response, got %v", user["email"])
		}
	})

	t.Run("returns 401 on bad credentials", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockMailer{}))

		rec := doRequest(r, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 401 for unverified email", func(t *testing.T) {
		userSvc := &mockUserService{
			attemptLoginFn: func(_, _ string) (*models.User, error) {
				return nil, apperrors.ErrEmailNotVerified
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockMailer{}))

		rec := doRequest(r, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"secret123"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EMAIL_NOT_VERIFIED")
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	t.Run("sends temp password to known account", func(t *testing.T) {
		mailer := &mockMailer{}
		userSvc := &mockUserService{
			resetPasswordFn: func(email string) (*models.User, string, error) {
				return &models.User{Email: email, IsVerified: true}, "temp123", nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, mailer))

		rec := doRequest(r, http.MethodPost, "/auth/forgot-password",
			`{"email":"alice@example.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(mailer.tempPasswords) != 1 {
			t.Errorf("expected 1 temp password email, got %d", len(mailer.tempPasswords))
		}
	})

	t.Run("gives identical response for unknown account", func(t *testing.T) {
		mailer := &mockMailer{}
		userSvc := &mockUserService{
			resetPasswordFn: func(string) (*models.User, string, error) {
				return nil, "", apperrors.ErrUserNotFound
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, mailer))

		rec := doRequest(r, http.MethodPost, "/auth/forgot-password",
			`{"email":"nobody@example.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("account enumeration: expected 200 for unknown email, got %d", rec.Code)
		}
		if len(mailer.tempPasswords) != 0 {
			t.Error("no email should be sent for an unknown account")
		}
	})
}

func TestAuthHandler_GetUser(t *testing.T) {
	t.Run("returns the authenticated user", func(t *testing.T) {
		userSvc := &mockUserService{
			getUserByIDFn: func(id uint) (*models.User, error) {
				user := &models.User{Name: "Alice", Email: "alice@example.com"}
				user.ID = id
				return user, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(userSvc, &mockMailer{}))

		rec := doRequest(r, http.MethodGet, "/auth/user", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["user"] == nil {
			t.Error("expected user in response")
		}
	})
}
