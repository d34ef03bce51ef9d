package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"moneymap/internal/handlers"
	"moneymap/internal/logger"
	"moneymap/internal/middleware"
	"moneymap/internal/models"
	"moneymap/internal/services"
	"moneymap/internal/validator"
)

// captureMailer records outgoing mail instead of sending it.
type captureMailer struct {
	mu                 sync.Mutex
	verificationTokens map[string]string
	tempPasswords      map[string]string
	alerts             []services.AlertDecision
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{
		verificationTokens: make(map[string]string),
		tempPasswords:      make(map[string]string),
	}
}

func (m *captureMailer) SendVerificationEmail(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verificationTokens[to] = token
	return nil
}

func (m *captureMailer) SendTempPasswordEmail(to, tempPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tempPasswords[to] = tempPassword
	return nil
}

func (m *captureMailer) SendBudgetAlert(to string, alert services.AlertDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *captureMailer) verificationToken(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verificationTokens[email]
}

func (m *captureMailer) sentAlerts() []services.AlertDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]services.AlertDecision(nil), m.alerts...)
}

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
	Mailer *captureMailer
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Expense{},
		&models.Budget{},
		&models.SavingsGoal{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	mailer := newCaptureMailer()

	// Services
	userService := services.NewUserService(db)
	expenseService := services.NewExpenseService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	alertService := services.NewAlertService(db, userService, mailer)
	dashboardService := services.NewDashboardService(db, expenseService)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, mailer)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, alertService)
	goalHandler := handlers.NewGoalHandler(goalService)
	settingsHandler := handlers.NewSettingsHandler(userService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.GET("/verify-email/:token", authHandler.VerifyEmail)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/auth/user", authHandler.GetUser)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.GET("/summary", expenseHandler.GetSummary)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.SetBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/comparison", budgetHandler.GetComparison)
	budgets.POST("/check-alerts", budgetHandler.CheckAlerts)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.PUT("/:id/alerts", budgetHandler.UpdateAlertSettings)

	goals := protected.Group("/savings-goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.PUT("/:id/progress", goalHandler.UpdateProgress)

	settings := protected.Group("/settings")
	settings.GET("/profile", settingsHandler.GetProfile)
	settings.PUT("/profile", settingsHandler.UpdateProfile)
	settings.PUT("/password", settingsHandler.UpdatePassword)
	settings.PUT("/preferences", settingsHandler.UpdatePreferences)

	protected.GET("/dashboard", dashboardHandler.GetSummary)

	return &testApp{DB: db, Router: router, Mailer: mailer}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerVerifiedUser registers a user, follows the emailed verification
// link, logs in, and returns the session token.
func (app *testApp) registerVerifiedUser(t *testing.T, email, password string) string {
	t.Helper()

	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	token := app.Mailer.verificationToken(strings.ToLower(email))
	if token == "" {
		t.Fatal("no verification email was captured")
	}

	rec = app.request("GET", "/api/v1/auth/verify-email/"+token, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("verification failed: %d %s", rec.Code, rec.Body.String())
	}

	return app.loginUser(t, email, password)
}

// loginUser logs in and returns the session token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["token"].(string)
}
