package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	"github.com/splittab/split_tab_app/internal/models"
	"github.com/splittab/split_tab_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryWithTx {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, user_id, group_id, balance, membership_status, enabled, invited_by, invited_at, member_since, created_at, created_by, last_updated_at, last_updated_by`

func scanAccountRow(row pgx.Row) (*models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.GroupID,
		&m.Balance,
		&m.MembershipStatus,
		&m.Enabled,
		&m.InvitedBy,
		&m.InvitedAt,
		&m.MemberSince,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}

	return mapping.ToDomainAccountSlice(accounts), nil
}

// SaveAccount persists a new account (a PENDING invitation).
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAccount := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAccount.AccountID,
		modelAccount.UserID,
		modelAccount.GroupID,
		modelAccount.Balance,
		modelAccount.MembershipStatus,
		modelAccount.Enabled,
		modelAccount.InvitedBy,
		modelAccount.InvitedAt,
		modelAccount.MemberSince,
		modelAccount.CreatedAt,
		modelAccount.CreatedBy,
		modelAccount.LastUpdatedAt,
		modelAccount.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert account "+modelAccount.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccountRow(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find account by ID "+accountID, err)
	}
	a := mapping.ToDomainAccount(*m)
	return &a, nil
}

// FindAccountsByGroupID retrieves every account of a group, optionally
// filtered to the given membership statuses.
func (r *PgxAccountRepository) FindAccountsByGroupID(ctx context.Context, groupID string, statuses []domain.MembershipStatus) ([]domain.Account, error) {
	if len(statuses) == 0 {
		query := `SELECT ` + accountColumns + ` FROM accounts WHERE group_id = $1 ORDER BY invited_at;`
		return r.queryAccounts(ctx, query, groupID)
	}

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE group_id = $1 AND membership_status = ANY($2) ORDER BY invited_at;`
	return r.queryAccounts(ctx, query, groupID, statusStrings)
}

// ListPendingInvitationsByUserID retrieves the user's PENDING accounts across all groups.
func (r *PgxAccountRepository) ListPendingInvitationsByUserID(ctx context.Context, userID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND enabled = TRUE AND membership_status = $2
		ORDER BY invited_at;
	`
	return r.queryAccounts(ctx, query, userID, string(domain.MembershipPending))
}

// ListInvitationsByGroupID retrieves a group's PENDING accounts.
func (r *PgxAccountRepository) ListInvitationsByGroupID(ctx context.Context, groupID string) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE group_id = $1 AND enabled = TRUE AND membership_status = $2
		ORDER BY invited_at;
	`
	return r.queryAccounts(ctx, query, groupID, string(domain.MembershipPending))
}

// UpdateMembershipStatus sets the membership status of a single account.
func (r *PgxAccountRepository) UpdateMembershipStatus(ctx context.Context, accountID string, status domain.MembershipStatus, updatedByUserID string, updatedAt time.Time) error {
	query := `
		UPDATE accounts
		SET membership_status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, accountID, string(status), updatedAt, updatedByUserID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update membership status for account "+accountID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ActivateAccountExclusive atomically activates a PENDING account. All of the
// user's accounts in the group are locked first; if one of them is already
// ACTIVE the target is marked ALTERNATE and activated=false is returned.
// Other PENDING accounts of the user are marked ALTERNATE on success.
func (r *PgxAccountRepository) ActivateAccountExclusive(ctx context.Context, accountID, userID, groupID string, memberSince time.Time, updatedByUserID string) (bool, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer r.Rollback(ctx, tx)

	lockQuery := `
		SELECT account_id, membership_status
		FROM accounts
		WHERE user_id = $1 AND group_id = $2 AND enabled = TRUE
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, lockQuery, userID, groupID)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to lock accounts for activation", err)
	}

	var siblingPending []string
	alreadyActive := false
	targetSeen := false
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			rows.Close()
			return false, apperrors.NewAppError(500, "failed to scan locked account row", err)
		}
		switch {
		case id == accountID:
			targetSeen = true
			if domain.MembershipStatus(status) != domain.MembershipPending {
				rows.Close()
				return false, fmt.Errorf("%w: account %s is not pending", apperrors.ErrConflict, accountID)
			}
		case domain.MembershipStatus(status) == domain.MembershipActive:
			alreadyActive = true
		case domain.MembershipStatus(status) == domain.MembershipPending:
			siblingPending = append(siblingPending, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, apperrors.NewAppError(500, "error iterating locked account rows", err)
	}
	if !targetSeen {
		return false, apperrors.ErrNotFound
	}

	statusQuery := `
		UPDATE accounts
		SET membership_status = $2, member_since = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $1;
	`

	if alreadyActive {
		// Resolve the duplicate: park this invitation instead of activating it.
		if _, err := tx.Exec(ctx, statusQuery, accountID, string(domain.MembershipAlternate), nil, memberSince, updatedByUserID); err != nil {
			return false, apperrors.NewAppError(500, "failed to mark account alternate "+accountID, err)
		}
		if err := r.Commit(ctx, tx); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := tx.Exec(ctx, statusQuery, accountID, string(domain.MembershipActive), memberSince, memberSince, updatedByUserID); err != nil {
		return false, apperrors.NewAppError(500, "failed to activate account "+accountID, err)
	}
	for _, siblingID := range siblingPending {
		if _, err := tx.Exec(ctx, statusQuery, siblingID, string(domain.MembershipAlternate), nil, memberSince, updatedByUserID); err != nil {
			return false, apperrors.NewAppError(500, "failed to mark sibling account alternate "+siblingID, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return false, err
	}
	return true, nil
}

// FindAccountsByIDsForUpdate retrieves multiple accounts by IDs and locks the
// rows for update. Must be called within a transaction.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_id = ANY($1)
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs for update: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		m, err := scanAccountRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked account row: %w", err)
		}
		accountsMap[m.AccountID] = mapping.ToDomainAccount(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked account rows: %w", err)
	}

	if len(accountsMap) != len(accountIDs) {
		missing := []string{}
		for _, id := range accountIDs {
			if _, found := accountsMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some accounts requested for update lock were not found", "missing_accounts", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested accounts, missing: %v", apperrors.ErrNotFound, missing)
	}

	return accountsMap, nil
}

// UpdateAccountBalancesInTx updates balances for multiple accounts within a transaction.
func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}

	query := `
		UPDATE accounts
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`

	batch := &pgx.Batch{}
	accountIDs := make([]string, 0, len(balanceChanges))
	for accountID, delta := range balanceChanges {
		if !delta.IsZero() {
			batch.Queue(query, accountID, delta, now, userID)
			accountIDs = append(accountIDs, accountID)
		}
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for account %s: %w", accountIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountIDs[i])
			}
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}

	return batchErr
}
