package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/models"
	"moneymap/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense records a new expense. The date defaults to now.
func (s *expenseService) CreateExpense(userID uint, category string, amount float64, date *time.Time, description string) (*models.Expense, error) {
	if category == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	expenseDate := time.Now()
	if date != nil {
		expenseDate = *date
	}

	expense := &models.Expense{
		UserID:      userID,
		Category:    category,
		Amount:      amount,
		Date:        expenseDate,
		Description: strings.TrimSpace(description),
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// GetUserExpenses returns a paginated list of the user's expenses, newest first.
func (s *expenseService) GetUserExpenses(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Order("date DESC").Scopes(pagination.Paginate(page)).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// getExpenseByID returns an expense if it belongs to the user.
func (s *expenseService) getExpenseByID(userID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense updates an existing expense's fields.
func (s *expenseService) UpdateExpense(userID, expenseID uint, category string, amount float64, date *time.Time, description string) (*models.Expense, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	expense, err := s.getExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"amount":      amount,
		"description": strings.TrimSpace(description),
	}
	if category != "" {
		updates["category"] = category
	}
	if date != nil {
		updates["date"] = *date
	}

	if err := s.db.Model(expense).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// DeleteExpense removes an expense owned by the user.
func (s *expenseService) DeleteExpense(userID, expenseID uint) error {
	expense, err := s.getExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetMonthlySummary returns the total and per-category spend for the month
// containing ref.
func (s *expenseService) GetMonthlySummary(userID uint, ref time.Time) (*ExpenseSummary, error) {
	start, end := monthWindow(ref)

	var total float64
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Scan(&total).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	type categoryTotal struct {
		Category string
		Total    float64
	}
	var rows []categoryTotal
	err = s.db.Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byCategory := make(map[string]float64, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row.Total
	}

	return &ExpenseSummary{Total: total, ByCategory: byCategory}, nil
}
