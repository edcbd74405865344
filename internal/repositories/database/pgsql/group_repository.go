package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	"github.com/splittab/split_tab_app/internal/models"
	"github.com/splittab/split_tab_app/internal/utils/mapping"
)

type PgxGroupRepository struct {
	BaseRepository
}

// newPgxGroupRepository creates a new repository for group data.
func newPgxGroupRepository(pool *pgxpool.Pool) portsrepo.GroupRepositoryWithTx {
	return &PgxGroupRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxGroupRepository implements portsrepo.GroupRepositoryWithTx
var _ portsrepo.GroupRepositoryWithTx = (*PgxGroupRepository)(nil)

const groupColumns = `group_id, name, description, currency_code, creator_id, admin_id, can_users_invite, can_users_edit_info, can_users_delete_expense, can_users_see_invitations, enabled, created_at, created_by, last_updated_at, last_updated_by`

func scanGroupRow(row pgx.Row) (*models.Group, error) {
	var m models.Group
	err := row.Scan(
		&m.GroupID,
		&m.Name,
		&m.Description,
		&m.CurrencyCode,
		&m.CreatorID,
		&m.AdminID,
		&m.CanUsersInvite,
		&m.CanUsersEditInfo,
		&m.CanUsersDeleteExpense,
		&m.CanUsersSeeInvitations,
		&m.Enabled,
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

// SaveGroup persists a new group together with the creator's ACTIVE account
// within a single transaction.
func (r *PgxGroupRepository) SaveGroup(ctx context.Context, group domain.Group, creatorAccount domain.Account) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelGroup := mapping.ToModelGroup(group)
	groupQuery := `
		INSERT INTO groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err = tx.Exec(ctx, groupQuery,
		modelGroup.GroupID,
		modelGroup.Name,
		modelGroup.Description,
		modelGroup.CurrencyCode,
		modelGroup.CreatorID,
		modelGroup.AdminID,
		modelGroup.CanUsersInvite,
		modelGroup.CanUsersEditInfo,
		modelGroup.CanUsersDeleteExpense,
		modelGroup.CanUsersSeeInvitations,
		modelGroup.Enabled,
		modelGroup.CreatedAt,
		modelGroup.CreatedBy,
		modelGroup.LastUpdatedAt,
		modelGroup.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert group "+modelGroup.GroupID, err)
	}

	modelAccount := mapping.ToModelAccount(creatorAccount)
	accountQuery := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, accountQuery,
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
		return apperrors.NewAppError(500, "failed to insert creator account for group "+modelGroup.GroupID, err)
	}

	return r.Commit(ctx, tx)
}

// FindGroupByID retrieves a group by its ID.
func (r *PgxGroupRepository) FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE group_id = $1;`
	m, err := scanGroupRow(r.Pool.QueryRow(ctx, query, groupID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find group by ID "+groupID, err)
	}
	g := mapping.ToDomainGroup(*m)
	return &g, nil
}

// ListGroupsByUserID retrieves all groups in which the user holds an account
// with one of the given membership statuses.
func (r *PgxGroupRepository) ListGroupsByUserID(ctx context.Context, userID string, statuses []domain.MembershipStatus) ([]domain.Group, error) {
	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query := `
		SELECT ` + groupColumnsPrefixed + `
		FROM groups g
		JOIN accounts a ON a.group_id = g.group_id
		WHERE a.user_id = $1 AND a.enabled = TRUE AND a.membership_status = ANY($2) AND g.enabled = TRUE
		ORDER BY g.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID, statusStrings)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query groups for user "+userID, err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		m, err := scanGroupRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan group row", err)
		}
		groups = append(groups, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating group rows", err)
	}

	return mapping.ToDomainGroupSlice(groups), nil
}

// UpdateGroup updates mutable group fields.
func (r *PgxGroupRepository) UpdateGroup(ctx context.Context, group domain.Group) error {
	query := `
		UPDATE groups
		SET name = $2, description = $3, admin_id = $4,
		    can_users_invite = $5, can_users_edit_info = $6,
		    can_users_delete_expense = $7, can_users_see_invitations = $8,
		    last_updated_at = $9, last_updated_by = $10
		WHERE group_id = $1 AND enabled = TRUE;
	`
	ct, err := r.Pool.Exec(ctx, query,
		group.GroupID,
		group.Name,
		group.Description,
		group.AdminID,
		group.CanUsersInvite,
		group.CanUsersEditInfo,
		group.CanUsersDeleteExpense,
		group.CanUsersSeeInvitations,
		group.LastUpdatedAt,
		group.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update group "+group.GroupID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// groupColumnsPrefixed is the group column list qualified with the "g" alias
// for joined queries.
const groupColumnsPrefixed = `g.group_id, g.name, g.description, g.currency_code, g.creator_id, g.admin_id, g.can_users_invite, g.can_users_edit_info, g.can_users_delete_expense, g.can_users_see_invitations, g.enabled, g.created_at, g.created_by, g.last_updated_at, g.last_updated_by`
