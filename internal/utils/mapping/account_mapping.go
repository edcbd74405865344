package mapping

import (
	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:        d.AccountID,
		UserID:           d.UserID,
		GroupID:          d.GroupID,
		Balance:          d.Balance,
		MembershipStatus: models.MembershipStatus(d.MembershipStatus),
		Enabled:          d.Enabled,
		InvitedBy:        d.InvitedBy,
		InvitedAt:        d.InvitedAt,
		MemberSince:      d.MemberSince,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:        m.AccountID,
		UserID:           m.UserID,
		GroupID:          m.GroupID,
		Balance:          m.Balance,
		MembershipStatus: domain.MembershipStatus(m.MembershipStatus),
		Enabled:          m.Enabled,
		InvitedBy:        m.InvitedBy,
		InvitedAt:        m.InvitedAt,
		MemberSince:      m.MemberSince,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
