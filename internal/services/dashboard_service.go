package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/models"
)

// recentExpenseLimit caps the recent-activity list on the dashboard.
const recentExpenseLimit = 5

// dashboardService aggregates the current month's activity for a user.
type dashboardService struct {
	db       *gorm.DB
	expenses ExpenseServicer
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, expenses ExpenseServicer) DashboardServicer {
	return &dashboardService{db: db, expenses: expenses}
}

// GetSummary returns month-to-date totals, budgets, and recent expenses.
func (s *dashboardService) GetSummary(userID uint, ref time.Time) (*DashboardSummary, error) {
	summary, err := s.expenses.GetMonthlySummary(userID, ref)
	if err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthWindow(ref)
	var recent []models.Expense
	err = s.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date DESC").
		Limit(recentExpenseLimit).
		Find(&recent).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &DashboardSummary{
		TotalSpent:     summary.Total,
		ByCategory:     summary.ByCategory,
		Budgets:        budgets,
		RecentExpenses: recent,
	}, nil
}
