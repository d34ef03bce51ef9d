package services

import (
	"time"

	"moneymap/internal/models"
	"moneymap/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	// CreateUser registers a new user and returns the raw verification token
	// to be mailed to them. Only the SHA-256 digest of the token is stored.
	CreateUser(name, email, password, phone string) (*models.User, string, error)
	VerifyEmail(token string) error
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	// ResetPassword replaces the user's password with a generated temporary
	// one and returns it for mailing. Unverified users are rejected.
	ResetPassword(email string) (*models.User, string, error)
	UpdateProfile(userID uint, name, email, phone string, salary *float64) (*models.User, error)
	UpdatePassword(userID uint, currentPassword, newPassword string) error
	UpdatePreferences(userID uint, prefs models.Preferences) (*models.User, error)
	UpdateProfilePicture(userID uint, pictureURL string) (*models.User, error)
}

// ExpenseSummary contains month-to-date spending totals.
type ExpenseSummary struct {
	Total      float64            `json:"total"`
	ByCategory map[string]float64 `json:"by_category"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID uint, category string, amount float64, date *time.Time, description string) (*models.Expense, error)
	GetUserExpenses(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(userID, expenseID uint, category string, amount float64, date *time.Time, description string) (*models.Expense, error)
	DeleteExpense(userID, expenseID uint) error
	GetMonthlySummary(userID uint, ref time.Time) (*ExpenseSummary, error)
}

// AlertSettings holds a budget's email alert configuration.
type AlertSettings struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
}

// BudgetComparison contains budgeted vs spent amounts for one category
// in the current month.
type BudgetComparison struct {
	Category       string  `json:"category"`
	Budgeted       float64 `json:"budgeted"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	// SetBudget creates a budget for (user, category) or updates the
	// existing one in place.
	SetBudget(userID uint, category string, amount float64, alerts *AlertSettings) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, category string, amount float64, alerts *AlertSettings) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	UpdateAlertSettings(userID, budgetID uint, enabled bool, threshold float64) (*models.Budget, error)
	GetComparison(userID uint, ref time.Time) ([]BudgetComparison, error)
}

// GoalServicer defines the contract for savings-goal business logic.
type GoalServicer interface {
	CreateGoal(userID uint, title string, targetAmount, currentAmount float64, deadline time.Time, category, notes string) (*models.SavingsGoal, error)
	GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error)
	GetGoalByID(userID, goalID uint) (*models.SavingsGoal, error)
	UpdateGoal(userID, goalID uint, title string, targetAmount, currentAmount float64, deadline time.Time, category, notes string) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID uint) error
	UpdateProgress(userID, goalID uint, currentAmount float64) (*models.SavingsGoal, error)
}

// AlertDecision is the outcome of evaluating one budget against its
// current monthly spend. It is derived on each evaluation pass and never
// persisted; the only persisted trace of a fired alert is the budget's
// AlertLastSent timestamp.
type AlertDecision struct {
	BudgetID     uint    `json:"budget_id"`
	Category     string  `json:"category"`
	BudgetAmount float64 `json:"budget_amount"`
	Spent        float64 `json:"spent"`
	Percentage   float64 `json:"percentage"`
	Threshold    float64 `json:"threshold"`
	Fired        bool    `json:"fired"`
}

// BudgetEvaluation pairs a budget with its evaluation outcome. A failed
// evaluation carries the error instead of a decision so one budget's
// failure never aborts the others.
type BudgetEvaluation struct {
	BudgetID uint           `json:"budget_id"`
	Category string         `json:"category"`
	Decision *AlertDecision `json:"decision,omitempty"`
	Err      error          `json:"-"`
}

// AlertServicer defines the contract for budget threshold alerting.
type AlertServicer interface {
	EvaluateBudget(budget *models.Budget, now time.Time) (*AlertDecision, error)
	EvaluateUser(userID uint) ([]BudgetEvaluation, error)
	RunDailyCheck()
}

// DashboardSummary aggregates the current month's activity for a user.
type DashboardSummary struct {
	TotalSpent     float64            `json:"total_spent"`
	ByCategory     map[string]float64 `json:"by_category"`
	Budgets        []models.Budget    `json:"budgets"`
	RecentExpenses []models.Expense   `json:"recent_expenses"`
}

// DashboardServicer defines the contract for the dashboard summary.
type DashboardServicer interface {
	GetSummary(userID uint, ref time.Time) (*DashboardSummary, error)
}

// Mailer sends transactional email on behalf of the API. Implemented by
// the mail package; a failed send is never fatal to the caller's flow.
type Mailer interface {
	SendVerificationEmail(to, token string) error
	SendTempPasswordEmail(to, tempPassword string) error
	SendBudgetAlert(to string, alert AlertDecision) error
}
