package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/splittab/split_tab_app/internal/core/domain"
)

// ExpenseReader defines read operations for expense data
type ExpenseReader interface {
	// FindExpenseByID retrieves a specific expense by its unique identifier,
	// without its splits.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpensesByGroupID retrieves a paginated list of expenses for a group,
	// newest first, using token-based pagination. It returns the expenses, a
	// token for the next page, and an error.
	ListExpensesByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Expense, *string, error)
}

// SplitReader defines read operations for split data
type SplitReader interface {
	// FindSplitsByExpenseID retrieves all splits of a single expense.
	FindSplitsByExpenseID(ctx context.Context, expenseID string) ([]domain.Split, error)

	// FindSplitsByExpenseIDs retrieves splits for multiple expenses, grouped by expense ID.
	FindSplitsByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]domain.Split, error)
}

// ExpenseWriter defines write operations for expense data
type ExpenseWriter interface {
	// SaveExpense persists an expense and its splits, applying balanceChanges
	// (keyed by account ID) to the affected accounts within a single transaction.
	SaveExpense(ctx context.Context, expense domain.Expense, splits []domain.Split, balanceChanges map[string]decimal.Decimal) error

	// UpdateExpense replaces an expense's fields and splits, applying the net
	// balanceChanges within a single transaction.
	UpdateExpense(ctx context.Context, expense domain.Expense, splits []domain.Split, balanceChanges map[string]decimal.Decimal) error

	// DeleteExpense removes an expense and its splits, applying the reversal
	// balanceChanges within a single transaction.
	DeleteExpense(ctx context.Context, expenseID string, balanceChanges map[string]decimal.Decimal, updatedByUserID string) error
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	SplitReader
	ExpenseWriter
}

// ExpenseRepositoryWithTx extends ExpenseRepositoryFacade with transaction capabilities
type ExpenseRepositoryWithTx interface {
	ExpenseRepositoryFacade
	TransactionManager
}
