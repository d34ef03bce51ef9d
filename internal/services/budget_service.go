package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/models"
	"moneymap/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// SetBudget creates a budget for (user, category) or updates the existing
// one in place. Categories are budgeted at most once per user.
func (s *budgetService) SetBudget(userID uint, category string, amount float64, alerts *AlertSettings) (*models.Budget, error) {
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	var budget models.Budget
	err := s.db.Where("user_id = ? AND category = ?", userID, category).First(&budget).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{"amount": amount}
		if alerts != nil {
			updates["alerts_enabled"] = alerts.Enabled
			updates["alert_threshold"] = alerts.Threshold
		}
		if err := s.db.Model(&budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &budget, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		budget = models.Budget{
			UserID:         userID,
			Category:       category,
			Amount:         amount,
			AlertsEnabled:  true,
			AlertThreshold: models.DefaultAlertThreshold,
		}
		if alerts != nil {
			budget.AlertsEnabled = alerts.Enabled
			budget.AlertThreshold = alerts.Threshold
		}
		if err := s.db.Create(&budget).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &budget, nil

	default:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

// GetUserBudgets returns a paginated list of budgets for the user, newest first.
func (s *budgetService) GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates an existing budget's fields.
func (s *budgetService) UpdateBudget(userID, budgetID uint, category string, amount float64, alerts *AlertSettings) (*models.Budget, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"amount": amount}
	if category != "" {
		updates["category"] = category
	}
	if alerts != nil {
		updates["alerts_enabled"] = alerts.Enabled
		updates["alert_threshold"] = alerts.Threshold
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateAlertSettings changes a budget's email alert configuration.
func (s *budgetService) UpdateAlertSettings(userID, budgetID uint, enabled bool, threshold float64) (*models.Budget, error) {
	if threshold <= 0 || threshold > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "threshold must be between 0 and 100")
	}

	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"alerts_enabled":  enabled,
		"alert_threshold": threshold,
	}
	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetComparison returns budgeted vs spent amounts per category for the
// month containing ref.
func (s *budgetService) GetComparison(userID uint, ref time.Time) ([]BudgetComparison, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	start, end := monthWindow(ref)

	comparison := make([]BudgetComparison, 0, len(budgets))
	for _, budget := range budgets {
		var spent float64
		err := s.db.Model(&models.Expense{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND category = ? AND date BETWEEN ? AND ?", userID, budget.Category, start, end).
			Scan(&spent).Error
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var pct float64
		if budget.Amount > 0 {
			pct = spent / budget.Amount * 100
		}
		comparison = append(comparison, BudgetComparison{
			Category:       budget.Category,
			Budgeted:       budget.Amount,
			Spent:          spent,
			Remaining:      budget.Amount - spent,
			PercentageUsed: pct,
		})
	}

	return comparison, nil
}
