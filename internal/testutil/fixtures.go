package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneymap/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a verified user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a verified user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:       fmt.Sprintf("Test User %d", nextID()),
		Email:      email,
		Password:   string(hash),
		IsVerified: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestExpense creates an expense dated now for the given category.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID uint, category string, amount float64) *models.Expense {
	t.Helper()
	return CreateTestExpenseAt(t, db, userID, category, amount, time.Now())
}

// CreateTestExpenseAt creates an expense with an explicit date.
func CreateTestExpenseAt(t *testing.T, db *gorm.DB, userID uint, category string, amount float64, date time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		Category:    category,
		Amount:      amount,
		Date:        date,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestBudget creates a budget with alerts enabled at the default threshold.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint, category string, amount float64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:         userID,
		Category:       category,
		Amount:         amount,
		AlertsEnabled:  true,
		AlertThreshold: models.DefaultAlertThreshold,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates an in-progress savings goal with a deadline 30 days out.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint, targetAmount float64) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:       userID,
		Title:        fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount: targetAmount,
		Deadline:     time.Now().AddDate(0, 0, 30),
		Status:       models.GoalStatusInProgress,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
