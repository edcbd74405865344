package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/splittab/split_tab_app/internal/core/domain"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountsByGroupID retrieves every account of a group, optionally
	// filtered to the given membership statuses (nil means all).
	FindAccountsByGroupID(ctx context.Context, groupID string, statuses []domain.MembershipStatus) ([]domain.Account, error)

	// ListPendingInvitationsByUserID retrieves the user's PENDING accounts across all groups.
	ListPendingInvitationsByUserID(ctx context.Context, userID string) ([]domain.Account, error)

	// ListInvitationsByGroupID retrieves a group's PENDING accounts.
	ListInvitationsByGroupID(ctx context.Context, groupID string) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account (a PENDING invitation).
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateMembershipStatus sets the membership status of a single account.
	UpdateMembershipStatus(ctx context.Context, accountID string, status domain.MembershipStatus, updatedByUserID string, updatedAt time.Time) error

	// ActivateAccountExclusive atomically activates a PENDING account. Within the
	// same transaction it checks for an existing ACTIVE account of the same user
	// in the same group: if one exists the target account is marked ALTERNATE
	// instead and activated=false is returned. Any other PENDING accounts of the
	// user in the group are marked ALTERNATE on successful activation.
	ActivateAccountExclusive(ctx context.Context, accountID, userID, groupID string, memberSince time.Time, updatedByUserID string) (activated bool, err error)
}

// AccountBalanceManager defines the in-transaction balance operations the
// expense repository builds on.
type AccountBalanceManager interface {
	// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks
	// the rows for update. Must be called within a transaction.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalancesInTx applies balance deltas to multiple accounts
	// within a transaction.
	UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceManager
}

// AccountRepositoryWithTx extends AccountRepositoryFacade with transaction capabilities
type AccountRepositoryWithTx interface {
	AccountRepositoryFacade
	TransactionManager
}
