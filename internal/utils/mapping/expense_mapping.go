package mapping

import (
	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/models"
)

// ToModelExpense converts a domain Expense to a model Expense; splits travel
// separately as rows of the splits table.
func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:   d.ExpenseID,
		GroupID:     d.GroupID,
		Title:       d.Title,
		Details:     d.Details,
		PaidBy:      d.PaidBy,
		Amount:      d.Amount,
		SplitType:   models.SplitType(d.SplitType),
		PaidOn:      d.PaidOn,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExpense converts a model Expense to a domain Expense
func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:   m.ExpenseID,
		GroupID:     m.GroupID,
		Title:       m.Title,
		Details:     m.Details,
		PaidBy:      m.PaidBy,
		Amount:      m.Amount,
		SplitType:   domain.SplitType(m.SplitType),
		PaidOn:      m.PaidOn,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelSplit converts a domain Split to a model Split
func ToModelSplit(d domain.Split) models.Split {
	return models.Split{
		UserID:    d.UserID,
		ExpenseID: d.ExpenseID,
		Amount:    d.Amount,
	}
}

// ToDomainSplitSlice converts a slice of model Splits to domain Splits
func ToDomainSplitSlice(ms []models.Split) []domain.Split {
	ds := make([]domain.Split, len(ms))
	for i, m := range ms {
		ds[i] = domain.Split{UserID: m.UserID, ExpenseID: m.ExpenseID, Amount: m.Amount}
	}
	return ds
}
