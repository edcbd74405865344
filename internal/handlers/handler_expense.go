package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/splittab/split_tab_app/internal/apperrors"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
)

// expenseHandler handles HTTP requests related to expenses within a group.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

// registerExpenseRoutes registers expense routes nested under a specific group.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expense_id", h.getExpense)
		expenses.PUT("/:expense_id", h.updateExpense)
		expenses.DELETE("/:expense_id", h.deleteExpense)
	}
}

// createExpense godoc
// @Summary Create an expense
// @Description Records a new expense in the group, maintaining member balances atomically.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   expense body dto.CreateExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input or split mismatch"
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var req dto.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("creator_user_id", creatorUserID))

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), groupID, req, creatorUserID)
	if err != nil {
		h.respondExpenseError(c, logger, err, "Failed to create expense")
		return
	}

	logger.Info("Expense created successfully", slog.String("expense_id", expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseResponse(expense))
}

// listExpenses godoc
// @Summary List expenses in a group
// @Description Retrieves a paginated list of group expenses, newest first. Use nextToken from the response to fetch the following page.
// @Tags expenses
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListExpensesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 403 {object} map[string]string "Not a group member"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.expenseService.ListExpenses(c.Request.Context(), groupID, userID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.respondExpenseError(c, logger, err, "Failed to list expenses")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getExpense godoc
// @Summary Get an expense
// @Description Retrieves a single expense with its splits.
// @Tags expenses
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   expense_id path string true "Expense ID"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Expense not found"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	expense, err := h.expenseService.GetExpenseByID(c.Request.Context(), groupID, expenseID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		h.respondExpenseError(c, logger, err, "Failed to get expense")
		return
	}

	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// updateExpense godoc
// @Summary Update an expense
// @Description Replaces an expense's content, reversing the old balance effects and applying the new ones in one transaction.
// @Tags expenses
// @Accept  json
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   expense_id path string true "Expense ID"
// @Param   expense body dto.UpdateExpenseRequest true "New expense content"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} map[string]string "Invalid input or split mismatch"
// @Failure 403 {object} map[string]string "Not a group member"
// @Failure 404 {object} map[string]string "Expense not found"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	var req dto.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateExpense", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("expense_id", expenseID))

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), groupID, expenseID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		h.respondExpenseError(c, logger, err, "Failed to update expense")
		return
	}

	logger.Info("Expense updated successfully")
	c.JSON(http.StatusOK, dto.ToExpenseResponse(expense))
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Deletes an expense and reverses its balance effects. Allowed for the expense creator, or subject to the delete-expense policy.
// @Tags expenses
// @Produce  json
// @Param   group_id path string true "Group ID"
// @Param   expense_id path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Not permitted to delete"
// @Failure 404 {object} map[string]string "Expense not found"
// @Security BearerAuth
// @Router /groups/{group_id}/expenses/{expense_id} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("group_id")
	expenseID := c.Param("expense_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("group_id", groupID), slog.String("expense_id", expenseID))

	if err := h.expenseService.DeleteExpense(c.Request.Context(), groupID, expenseID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
			return
		}
		h.respondExpenseError(c, logger, err, "Failed to delete expense")
		return
	}

	logger.Info("Expense deleted successfully")
	c.Status(http.StatusNoContent)
}

// respondExpenseError maps the common expense service errors to HTTP statuses.
func (h *expenseHandler) respondExpenseError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error on expense operation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not permitted"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
