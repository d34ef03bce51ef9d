package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"moneymap/internal/models"
	"moneymap/internal/pagination"
	"moneymap/internal/services"
	"moneymap/internal/validator"
)

// --- mock services ---

type mockUserService struct {
	createUserFn           func(name, email, password, phone string) (*models.User, string, error)
	verifyEmailFn          func(token string) error
	attemptLoginFn         func(email, password string) (*models.User, error)
	getUserByEmailFn       func(email string) (*models.User, error)
	getUserByIDFn          func(id uint) (*models.User, error)
	verifyPasswordFn       func(user *models.User, password string) bool
	resetPasswordFn        func(email string) (*models.User, string, error)
	updateProfileFn        func(userID uint, name, email, phone string, salary *float64) (*models.User, error)
	updatePasswordFn       func(userID uint, currentPassword, newPassword string) error
	updatePreferencesFn    func(userID uint, prefs models.Preferences) (*models.User, error)
	updateProfilePictureFn func(userID uint, pictureURL string) (*models.User, error)
}

func (m *mockUserService) CreateUser(name, email, password, phone string) (*models.User, string, error) {
	if m.createUserFn != nil {
		return m.createUserFn(name, email, password, phone)
	}
	return &models.User{}, "token", nil
}

func (m *mockUserService) VerifyEmail(token string) error {
	if m.verifyEmailFn != nil {
		return m.verifyEmailFn(token)
	}
	return nil
}

func (m *mockUserService) AttemptLogin(email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByEmail(email string) (*models.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(email)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(id uint) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) VerifyPassword(user *models.User, password string) bool {
	if m.verifyPasswordFn != nil {
		return m.verifyPasswordFn(user, password)
	}
	return true
}

func (m *mockUserService) ResetPassword(email string) (*models.User, string, error) {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(email)
	}
	return &models.User{}, "temp", nil
}

func (m *mockUserService) UpdateProfile(userID uint, name, email, phone string, salary *float64) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(userID, name, email, phone, salary)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdatePassword(userID uint, currentPassword, newPassword string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(userID, currentPassword, newPassword)
	}
	return nil
}

func (m *mockUserService) UpdatePreferences(userID uint, prefs models.Preferences) (*models.User, error) {
	if m.updatePreferencesFn != nil {
		return m.updatePreferencesFn(userID, prefs)
	}
	return &models.User{}, nil
}

func (m *mockUserService) UpdateProfilePicture(userID uint, pictureURL string) (*models.User, error) {
	if m.updateProfilePictureFn != nil {
		return m.updateProfilePictureFn(userID, pictureURL)
	}
	return &models.User{}, nil
}

type mockMailer struct {
	verifications []string
	tempPasswords []string
	alerts        []services.AlertDecision
	sendErr       error
}

func (m *mockMailer) SendVerificationEmail(to, token string) error {
	m.verifications = append(m.verifications, to)
	return m.sendErr
}

func (m *mockMailer) SendTempPasswordEmail(to, tempPassword string) error {
	m.tempPasswords = append(m.tempPasswords, to)
	return m.sendErr
}

func (m *mockMailer) SendBudgetAlert(to string, alert services.AlertDecision) error {
	m.alerts = append(m.alerts, alert)
	return m.sendErr
}

type mockBudgetService struct {
	setBudgetFn           func(userID uint, category string, amount float64, alerts *services.AlertSettings) (*models.Budget, error)
	getUserBudgetsFn      func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	getBudgetByIDFn       func(userID, budgetID uint) (*models.Budget, error)
	updateBudgetFn        func(userID, budgetID uint, category string, amount float64, alerts *services.AlertSettings) (*models.Budget, error)
	deleteBudgetFn        func(userID, budgetID uint) error
	updateAlertSettingsFn func(userID, budgetID uint, enabled bool, threshold float64) (*models.Budget, error)
	getComparisonFn       func(userID uint, ref time.Time) ([]services.BudgetComparison, error)
}

func (m *mockBudgetService) SetBudget(userID uint, category string, amount float64, alerts *services.AlertSettings) (*models.Budget, error) {
	if m.setBudgetFn != nil {
		return m.setBudgetFn(userID, category, amount, alerts)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	if m.getBudgetByIDFn != nil {
		return m.getBudgetByIDFn(userID, budgetID)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID uint, category string, amount float64, alerts *services.AlertSettings) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, category, amount, alerts)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID uint) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) UpdateAlertSettings(userID, budgetID uint, enabled bool, threshold float64) (*models.Budget, error) {
	if m.updateAlertSettingsFn != nil {
		return m.updateAlertSettingsFn(userID, budgetID, enabled, threshold)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetComparison(userID uint, ref time.Time) ([]services.BudgetComparison, error) {
	if m.getComparisonFn != nil {
		return m.getComparisonFn(userID, ref)
	}
	return []services.BudgetComparison{}, nil
}

type mockAlertService struct {
	evaluateBudgetFn func(budget *models.Budget, now time.Time) (*services.AlertDecision, error)
	evaluateUserFn   func(userID uint) ([]services.BudgetEvaluation, error)
}

func (m *mockAlertService) EvaluateBudget(budget *models.Budget, now time.Time) (*services.AlertDecision, error) {
	if m.evaluateBudgetFn != nil {
		return m.evaluateBudgetFn(budget, now)
	}
	return nil, nil
}

func (m *mockAlertService) EvaluateUser(userID uint) ([]services.BudgetEvaluation, error) {
	if m.evaluateUserFn != nil {
		return m.evaluateUserFn(userID)
	}
	return []services.BudgetEvaluation{}, nil
}

func (m *mockAlertService) RunDailyCheck() {}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
