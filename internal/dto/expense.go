package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splittab/split_tab_app/internal/core/domain"
)

// SplitInput is one participant's share in a create/update expense request.
// Amount carries an exact amount for EXACT splits and a percentage for
// PERCENTAGE splits; it is ignored for EQUAL splits.
type SplitInput struct {
	UserID string          `json:"userID" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// CreateExpenseRequest defines the data needed to record a new expense.
type CreateExpenseRequest struct {
	Title     string           `json:"title" binding:"required"`
	Details   string           `json:"details"`
	PaidBy    string           `json:"paidBy" binding:"required"` // payer account ID
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	SplitType domain.SplitType `json:"splitType" binding:"required,oneof=EQUAL EXACT PERCENTAGE"`
	PaidOn    time.Time        `json:"paidOn" binding:"required"`
	Splits    []SplitInput     `json:"splits" binding:"required,min=1,dive"`
}

// UpdateExpenseRequest defines the data for replacing an expense's content.
// The full split list is always resubmitted.
type UpdateExpenseRequest struct {
	Title     string           `json:"title" binding:"required"`
	Details   string           `json:"details"`
	PaidBy    string           `json:"paidBy" binding:"required"`
	Amount    decimal.Decimal  `json:"amount" binding:"required"`
	SplitType domain.SplitType `json:"splitType" binding:"required,oneof=EQUAL EXACT PERCENTAGE"`
	PaidOn    time.Time        `json:"paidOn" binding:"required"`
	Splits    []SplitInput     `json:"splits" binding:"required,min=1,dive"`
}

// SplitResponse defines the data returned for a single split.
type SplitResponse struct {
	UserID string          `json:"userID"`
	Amount decimal.Decimal `json:"amount"`
}

// ExpenseResponse defines the data returned for an expense.
type ExpenseResponse struct {
	ExpenseID string           `json:"expenseID"`
	GroupID   string           `json:"groupID"`
	Title     string           `json:"title"`
	Details   string           `json:"details"`
	PaidBy    string           `json:"paidBy"`
	Amount    decimal.Decimal  `json:"amount"`
	SplitType domain.SplitType `json:"splitType"`
	PaidOn    time.Time        `json:"paidOn"`
	Splits    []SplitResponse  `json:"splits,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	CreatedBy string           `json:"createdBy"`
}

// ToExpenseResponse converts a domain.Expense to ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	splits := make([]SplitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = SplitResponse{UserID: s.UserID, Amount: s.Amount}
	}
	return ExpenseResponse{
		ExpenseID: e.ExpenseID,
		GroupID:   e.GroupID,
		Title:     e.Title,
		Details:   e.Details,
		PaidBy:    e.PaidBy,
		Amount:    e.Amount,
		SplitType: e.SplitType,
		PaidOn:    e.PaidOn,
		Splits:    splits,
		CreatedAt: e.CreatedAt,
		CreatedBy: e.CreatedBy,
	}
}

// ListExpensesParams defines query parameters for listing expenses.
type ListExpensesParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListExpensesResponse wraps a page of expenses with the next-page token.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToListExpensesResponse converts a page of domain.Expense to DTO.
func ToListExpensesResponse(es []domain.Expense, nextToken *string) ListExpensesResponse {
	list := make([]ExpenseResponse, len(es))
	for i, e := range es {
		list[i] = ToExpenseResponse(&e)
	}
	return ListExpensesResponse{Expenses: list, NextToken: nextToken}
}
