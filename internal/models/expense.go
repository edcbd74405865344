package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType mirrors the domain split types.
type SplitType string

const (
	SplitEqual      SplitType = "EQUAL"
	SplitExact      SplitType = "EXACT"
	SplitPercentage SplitType = "PERCENTAGE"
)

// Expense row in the expenses table.
type Expense struct {
	ExpenseID string          `db:"expense_id"`
	GroupID   string          `db:"group_id"`
	Title     string          `db:"title"`
	Details   string          `db:"details"`
	PaidBy    string          `db:"paid_by"` // accounts.account_id
	Amount    decimal.Decimal `db:"amount"`
	SplitType SplitType       `db:"split_type"`
	PaidOn    time.Time       `db:"paid_on"`
	AuditFields
}

// Split row in the splits table; (user_id, expense_id) is the primary key.
type Split struct {
	UserID    string          `db:"user_id"`
	ExpenseID string          `db:"expense_id"`
	Amount    decimal.Decimal `db:"amount"`
}
