package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneymap/internal/errors"
	"moneymap/internal/pagination"
	"moneymap/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	alertService  services.AlertServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, alertService services.AlertServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, alertService: alertService}
}

// AlertSettingsRequest represents a budget's alert configuration in requests.
type AlertSettingsRequest struct {
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold" binding:"required,alert_threshold"`
}

// SetBudgetRequest represents the request payload for creating or updating a budget.
type SetBudgetRequest struct {
	Category string                `json:"category" binding:"required,min=1,max=100"`
	Amount   float64               `json:"amount" binding:"required,gt=0"`
	Alerts   *AlertSettingsRequest `json:"alerts"`
}

func alertSettings(req *AlertSettingsRequest) *services.AlertSettings {
	if req == nil {
		return nil
	}
	return &services.AlertSettings{Enabled: req.Enabled, Threshold: req.Threshold}
}

// SetBudget handles creating or updating the budget for a category.
// @Summary     Set a budget
// @Description Create a budget for a category, or update the existing one
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SetBudgetRequest true "Budget details"
// @Success     200 {object} models.Budget "Budget set"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) SetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.SetBudget(userID, req.Category, req.Amount, alertSettings(req.Alerts))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets for the authenticated user
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.budgetService.GetUserBudgets(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update an existing budget by ID
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int              true "Budget ID"
// @Param       request body SetBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, req.Category, req.Amount, alertSettings(req.Alerts))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully", "id": budgetID})
}

// UpdateAlertSettings handles changing a budget's alert configuration.
// @Summary     Update budget alert settings
// @Description Enable/disable email alerts and set the firing threshold
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                  true "Budget ID"
// @Param       request body AlertSettingsRequest true "Alert settings"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/alerts [put]
func (h *BudgetHandler) UpdateAlertSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AlertSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	budget, err := h.budgetService.UpdateAlertSettings(userID, budgetID, req.Enabled, req.Threshold)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// CheckAlerts handles an on-demand budget alert evaluation.
// @Summary     Check budget alerts
// @Description Evaluate all of the user's budgets now and send any due alerts
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Evaluation outcome"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/check-alerts [post]
func (h *BudgetHandler) CheckAlerts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	results, err := h.alertService.EvaluateUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	fired := make([]services.AlertDecision, 0)
	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			continue
		}
		if r.Decision != nil && r.Decision.Fired {
			fired = append(fired, *r.Decision)
		}
	}

	message := "No budget alerts needed"
	if len(fired) > 0 {
		message = fmt.Sprintf("Sent %d budget alerts", len(fired))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  message,
		"alerts":   fired,
		"checked":  len(results),
		"failures": failures,
	})
}

// GetComparison handles the budget vs spend comparison.
// @Summary     Get budget comparison
// @Description Compare each budget with the current month's spend
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.BudgetComparison "Per-category comparison"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/comparison [get]
func (h *BudgetHandler) GetComparison(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	comparison, err := h.budgetService.GetComparison(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}
