package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType describes how an expense amount was divided among participants.
type SplitType string

const (
	SplitEqual      SplitType = "EQUAL"
	SplitExact      SplitType = "EXACT"
	SplitPercentage SplitType = "PERCENTAGE"
)

// Expense is a single shared cost paid by one account on behalf of the group.
// Its Splits always cover every active member of the group exactly once, and
// their amounts reconcile to Amount.
type Expense struct {
	ExpenseID string          `json:"expenseID"` // Primary Key (UUID)
	GroupID   string          `json:"groupID"`   // FK -> groups.group_id
	Title     string          `json:"title"`
	Details   string          `json:"details"`
	PaidBy    string          `json:"paidBy"` // FK -> accounts.account_id (payer account)
	Amount    decimal.Decimal `json:"amount"` // NUMERIC(13,4), >= 0
	SplitType SplitType       `json:"splitType"`
	PaidOn    time.Time       `json:"paidOn"`
	Splits    []Split         `json:"splits,omitempty"`
	AuditFields
}

// Split is one user's owed share of an expense. (UserID, ExpenseID) is unique.
type Split struct {
	UserID    string          `json:"userID"`    // FK -> users.user_id
	ExpenseID string          `json:"expenseID"` // FK -> expenses.expense_id
	Amount    decimal.Decimal `json:"amount"`    // NUMERIC(13,4), >= 0
}
