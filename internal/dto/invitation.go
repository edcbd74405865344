package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splittab/split_tab_app/internal/core/domain"
)

// AccountResponse defines the data returned for a group account: one user's
// membership and balance within a group.
type AccountResponse struct {
	AccountID        string                  `json:"accountID"`
	UserID           string                  `json:"userID"`
	GroupID          string                  `json:"groupID"`
	Balance          decimal.Decimal         `json:"balance"`
	MembershipStatus domain.MembershipStatus `json:"membershipStatus"`
	InvitedBy        string                  `json:"invitedBy"`
	InvitedAt        time.Time               `json:"invitedAt"`
	MemberSince      *time.Time              `json:"memberSince,omitempty"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        acc.AccountID,
		UserID:           acc.UserID,
		GroupID:          acc.GroupID,
		Balance:          acc.Balance,
		MembershipStatus: acc.MembershipStatus,
		InvitedBy:        acc.InvitedBy,
		InvitedAt:        acc.InvitedAt,
		MemberSince:      acc.MemberSince,
	}
}

// ListAccountsResponse wraps a list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToListAccountsResponse converts a slice of domain.Account to DTO.
func ToListAccountsResponse(accounts []domain.Account) ListAccountsResponse {
	res := make([]AccountResponse, len(accounts))
	for i, acc := range accounts {
		res[i] = ToAccountResponse(&acc)
	}
	return ListAccountsResponse{Accounts: res}
}
