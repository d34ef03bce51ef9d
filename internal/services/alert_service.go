package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/logger"
	"moneymap/internal/models"
)

// alertCooldown is the minimum interval between two alert firings for the
// same budget.
const alertCooldown = 24 * time.Hour

// monthWindow returns the calendar-month window containing ref as a closed
// interval: [first day 00:00:00, last day 23:59:59.999999999]. Expenses
// dated exactly midnight on the first of the next month are excluded.
func monthWindow(ref time.Time) (time.Time, time.Time) {
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// alertService evaluates budgets against monthly spend and dispatches
// threshold alerts.
type alertService struct {
	db     *gorm.DB
	users  UserServicer
	mailer Mailer
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB, users UserServicer, mailer Mailer) AlertServicer {
	return &alertService{db: db, users: users, mailer: mailer}
}

// sumMonthlySpend returns the total expense amount for (user, category)
// within the month containing ref. Returns 0 when nothing matches.
func (s *alertService) sumMonthlySpend(userID uint, category string, ref time.Time) (float64, error) {
	start, end := monthWindow(ref)

	var spent float64
	err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category = ? AND date BETWEEN ? AND ?", userID, category, start, end).
		Scan(&spent).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spent, nil
}

// EvaluateBudget decides whether the budget's threshold alert should fire.
//
// It returns nil (no decision) when alerts are disabled or the budget
// amount is non-positive. When the threshold is crossed, the cooldown is
// claimed with a single conditional UPDATE: AlertLastSent advances only if
// it still satisfies "unset or older than 24h" at write time, so two
// concurrent evaluations of the same budget can fire at most one alert.
// A decision with Fired=false means the threshold was crossed but the
// cooldown window has not elapsed (or another evaluation claimed it first).
func (s *alertService) EvaluateBudget(budget *models.Budget, now time.Time) (*AlertDecision, error) {
	if !budget.AlertsEnabled {
		return nil, nil
	}
	if budget.Amount <= 0 {
		return nil, nil
	}

	spent, err := s.sumMonthlySpend(budget.UserID, budget.Category, now)
	if err != nil {
		return nil, err
	}

	threshold := budget.AlertThreshold
	if threshold <= 0 {
		threshold = models.DefaultAlertThreshold
	}

	decision := &AlertDecision{
		BudgetID:     budget.ID,
		Category:     budget.Category,
		BudgetAmount: budget.Amount,
		Spent:        spent,
		Percentage:   spent / budget.Amount * 100,
		Threshold:    threshold,
	}

	if decision.Percentage < threshold {
		return decision, nil
	}

	cutoff := now.Add(-alertCooldown)
	res := s.db.Model(&models.Budget{}).
		Where("id = ? AND alerts_enabled = ? AND (alert_last_sent IS NULL OR alert_last_sent <= ?)",
			budget.ID, true, cutoff).
		Update("alert_last_sent", now)
	if res.Error != nil {
		// The write failed, so no cooldown was claimed and nothing fires.
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	decision.Fired = res.RowsAffected == 1
	if decision.Fired {
		budget.AlertLastSent = &now
	}
	return decision, nil
}

// dispatch sends the alert email for a fired decision. Send failures are
// logged and swallowed: the cooldown claim stands regardless, since it
// rate-limits evaluation attempts rather than guaranteeing delivery.
func (s *alertService) dispatch(userID uint, decision *AlertDecision) {
	user, err := s.users.GetUserByID(userID)
	if err != nil || user.Email == "" {
		logger.Get().Errorw("budget alert recipient lookup failed",
			"user_id", userID,
			"budget_id", decision.BudgetID,
			"error", err,
		)
		return
	}

	if err := s.mailer.SendBudgetAlert(user.Email, *decision); err != nil {
		logger.Get().Errorw("failed to send budget alert email",
			"user_id", userID,
			"budget_id", decision.BudgetID,
			"category", decision.Category,
			"error", err,
		)
		return
	}

	logger.Get().Infow("budget alert sent",
		"user_id", userID,
		"budget_id", decision.BudgetID,
		"category", decision.Category,
		"percentage", decision.Percentage,
	)
}

// evaluateBudgets evaluates each budget independently and dispatches fired
// decisions. One budget's failure never aborts the others.
func (s *alertService) evaluateBudgets(budgets []models.Budget, now time.Time) []BudgetEvaluation {
	results := make([]BudgetEvaluation, 0, len(budgets))
	for i := range budgets {
		budget := &budgets[i]
		evaluation := BudgetEvaluation{BudgetID: budget.ID, Category: budget.Category}

		decision, err := s.EvaluateBudget(budget, now)
		if err != nil {
			logger.Get().Errorw("budget evaluation failed",
				"budget_id", budget.ID,
				"category", budget.Category,
				"error", err,
			)
			evaluation.Err = err
			results = append(results, evaluation)
			continue
		}

		evaluation.Decision = decision
		if decision != nil && decision.Fired {
			s.dispatch(budget.UserID, decision)
		}
		results = append(results, evaluation)
	}
	return results
}

// EvaluateUser runs an on-demand evaluation over all of the user's
// alerts-enabled budgets and returns the per-budget outcomes.
func (s *alertService) EvaluateUser(userID uint) ([]BudgetEvaluation, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ? AND alerts_enabled = ?", userID, true).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.evaluateBudgets(budgets, time.Now()), nil
}

// RunDailyCheck evaluates every alerts-enabled budget across all users.
// Invoked by the scheduler; it has no caller to report to, so failures are
// only logged.
func (s *alertService) RunDailyCheck() {
	var budgets []models.Budget
	if err := s.db.Where("alerts_enabled = ?", true).Find(&budgets).Error; err != nil {
		logger.Get().Errorw("failed to load budgets for daily alert check", "error", err)
		return
	}

	results := s.evaluateBudgets(budgets, time.Now())

	fired, failed := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		} else if r.Decision != nil && r.Decision.Fired {
			fired++
		}
	}
	logger.Get().Infow("daily budget alert check completed",
		"budgets", len(budgets),
		"fired", fired,
		"failed", failed,
	)
}
