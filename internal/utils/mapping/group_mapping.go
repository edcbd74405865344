package mapping

import (
	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/models"
)

// ToModelGroup converts a domain Group to a model Group
func ToModelGroup(d domain.Group) models.Group {
	return models.Group{
		GroupID:                d.GroupID,
		Name:                   d.Name,
		Description:            d.Description,
		CurrencyCode:           d.CurrencyCode,
		CreatorID:              d.CreatorID,
		AdminID:                d.AdminID,
		CanUsersInvite:         d.CanUsersInvite,
		CanUsersEditInfo:       d.CanUsersEditInfo,
		CanUsersDeleteExpense:  d.CanUsersDeleteExpense,
		CanUsersSeeInvitations: d.CanUsersSeeInvitations,
		Enabled:                d.Enabled,
		AuditFields:            ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGroup converts a model Group to a domain Group
func ToDomainGroup(m models.Group) domain.Group {
	return domain.Group{
		GroupID:                m.GroupID,
		Name:                   m.Name,
		Description:            m.Description,
		CurrencyCode:           m.CurrencyCode,
		CreatorID:              m.CreatorID,
		AdminID:                m.AdminID,
		CanUsersInvite:         m.CanUsersInvite,
		CanUsersEditInfo:       m.CanUsersEditInfo,
		CanUsersDeleteExpense:  m.CanUsersDeleteExpense,
		CanUsersSeeInvitations: m.CanUsersSeeInvitations,
		Enabled:                m.Enabled,
		AuditFields:            ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGroupSlice converts a slice of model Groups to domain Groups
func ToDomainGroupSlice(ms []models.Group) []domain.Group {
	ds := make([]domain.Group, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainGroup(m)
	}
	return ds
}
