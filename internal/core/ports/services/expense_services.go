package services

import (
	"context"

	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/dto"
)

// ExpenseReaderSvc defines read operations for expense data
type ExpenseReaderSvc interface {
	// GetExpenseByID retrieves an expense with its splits; active members only.
	GetExpenseByID(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error)

	// ListExpenses retrieves a paginated list of a group's expenses, newest first.
	ListExpenses(ctx context.Context, groupID string, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error)
}

// ExpenseWriterSvc defines write operations for expense data
type ExpenseWriterSvc interface {
	// CreateExpense records an expense and applies its balance changes atomically.
	CreateExpense(ctx context.Context, groupID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error)

	// UpdateExpense replaces an expense's content, reversing the old balance
	// effects and applying the new ones in a single transaction.
	UpdateExpense(ctx context.Context, groupID string, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error)

	// DeleteExpense removes an expense, reversing its balance effects; subject
	// to the delete-expense policy.
	DeleteExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
