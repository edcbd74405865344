package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	"github.com/splittab/split_tab_app/internal/models"
	"github.com/splittab/split_tab_app/internal/utils/mapping"
	"github.com/splittab/split_tab_app/internal/utils/pagination"
)

type PgxExpenseRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountBalanceManager
}

// newPgxExpenseRepository creates a new repository for expense and split data.
func newPgxExpenseRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountBalanceManager) portsrepo.ExpenseRepositoryWithTx {
	return &PgxExpenseRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxExpenseRepository implements portsrepo.ExpenseRepositoryWithTx
var _ portsrepo.ExpenseRepositoryWithTx = (*PgxExpenseRepository)(nil)

const expenseColumns = `expense_id, group_id, title, details, paid_by, amount, split_type, paid_on, created_at, created_by, last_updated_at, last_updated_by`

func scanExpenseRow(row pgx.Row) (*models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.GroupID,
		&m.Title,
		&m.Details,
		&m.PaidBy,
		&m.Amount,
		&m.SplitType,
		&m.PaidOn,
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

// applyBalanceChanges locks the affected accounts and applies the balance
// deltas within the given transaction.
func (r *PgxExpenseRepository) applyBalanceChanges(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, expense *models.Expense) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}

	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, userID, expense.LastUpdatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}
	return nil
}

// insertSplits batch-inserts the splits of an expense within the transaction.
func insertSplits(ctx context.Context, tx pgx.Tx, splits []domain.Split) error {
	batch := &pgx.Batch{}
	splitQuery := `
		INSERT INTO splits (user_id, expense_id, amount)
		VALUES ($1, $2, $3);
	`
	for _, s := range splits {
		modelSplit := mapping.ToModelSplit(s)
		batch.Queue(splitQuery, modelSplit.UserID, modelSplit.ExpenseID, modelSplit.Amount)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute split insert batch", err)
	}
	return nil
}

// SaveExpense persists an expense and its splits, applying balanceChanges to
// the affected accounts within a single transaction.
func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense, splits []domain.Split, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelExpense := mapping.ToModelExpense(expense)
	expenseQuery := `
		INSERT INTO expenses (` + expenseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = tx.Exec(ctx, expenseQuery,
		modelExpense.ExpenseID,
		modelExpense.GroupID,
		modelExpense.Title,
		modelExpense.Details,
		modelExpense.PaidBy,
		modelExpense.Amount,
		modelExpense.SplitType,
		modelExpense.PaidOn,
		modelExpense.CreatedAt,
		modelExpense.CreatedBy,
		modelExpense.LastUpdatedAt,
		modelExpense.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert expense "+modelExpense.ExpenseID, err)
	}

	if err := insertSplits(ctx, tx, splits); err != nil {
		return err
	}
	if err := r.applyBalanceChanges(ctx, tx, balanceChanges, expense.CreatedBy, &modelExpense); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// UpdateExpense replaces an expense's fields and splits, applying the net
// balanceChanges within a single transaction.
func (r *PgxExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense, splits []domain.Split, balanceChanges map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelExpense := mapping.ToModelExpense(expense)
	expenseQuery := `
		UPDATE expenses
		SET title = $2, details = $3, paid_by = $4, amount = $5, split_type = $6,
		    paid_on = $7, last_updated_at = $8, last_updated_by = $9
		WHERE expense_id = $1;
	`
	ct, err := tx.Exec(ctx, expenseQuery,
		modelExpense.ExpenseID,
		modelExpense.Title,
		modelExpense.Details,
		modelExpense.PaidBy,
		modelExpense.Amount,
		modelExpense.SplitType,
		modelExpense.PaidOn,
		modelExpense.LastUpdatedAt,
		modelExpense.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update expense "+modelExpense.ExpenseID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM splits WHERE expense_id = $1;`, modelExpense.ExpenseID); err != nil {
		return apperrors.NewAppError(500, "failed to delete old splits for expense "+modelExpense.ExpenseID, err)
	}
	if err := insertSplits(ctx, tx, splits); err != nil {
		return err
	}
	if err := r.applyBalanceChanges(ctx, tx, balanceChanges, expense.LastUpdatedBy, &modelExpense); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// DeleteExpense removes an expense and its splits, applying the reversal
// balanceChanges within a single transaction.
func (r *PgxExpenseRepository) DeleteExpense(ctx context.Context, expenseID string, balanceChanges map[string]decimal.Decimal, updatedByUserID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM splits WHERE expense_id = $1;`, expenseID); err != nil {
		return apperrors.NewAppError(500, "failed to delete splits for expense "+expenseID, err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM expenses WHERE expense_id = $1;`, expenseID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete expense "+expenseID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	accountIDs := make([]string, 0, len(balanceChanges))
	for accID := range balanceChanges {
		accountIDs = append(accountIDs, accID)
	}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return apperrors.NewAppError(500, "failed to lock accounts for update", err)
	}
	if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, updatedByUserID, time.Now().UTC()); err != nil {
		return apperrors.NewAppError(500, "failed to update account balances", err)
	}

	return r.Commit(ctx, tx)
}

// FindExpenseByID retrieves an expense by its ID, without its splits.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	m, err := scanExpenseRow(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find expense by ID "+expenseID, err)
	}
	e := mapping.ToDomainExpense(*m)
	return &e, nil
}

// FindSplitsByExpenseID retrieves all splits of a single expense.
func (r *PgxExpenseRepository) FindSplitsByExpenseID(ctx context.Context, expenseID string) ([]domain.Split, error) {
	query := `
		SELECT user_id, expense_id, amount
		FROM splits
		WHERE expense_id = $1
		ORDER BY user_id;
	`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query splits for expense "+expenseID, err)
	}
	defer rows.Close()

	splits := []models.Split{}
	for rows.Next() {
		var s models.Split
		if err := rows.Scan(&s.UserID, &s.ExpenseID, &s.Amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan split row for expense "+expenseID, err)
		}
		splits = append(splits, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating split rows for expense "+expenseID, err)
	}

	return mapping.ToDomainSplitSlice(splits), nil
}

// FindSplitsByExpenseIDs retrieves splits for multiple expenses, grouped by expense ID.
func (r *PgxExpenseRepository) FindSplitsByExpenseIDs(ctx context.Context, expenseIDs []string) (map[string][]domain.Split, error) {
	if len(expenseIDs) == 0 {
		return map[string][]domain.Split{}, nil
	}

	query := `
		SELECT user_id, expense_id, amount
		FROM splits
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, user_id;
	`
	rows, err := r.Pool.Query(ctx, query, expenseIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query splits for expenses", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.Split)
	for rows.Next() {
		var s models.Split
		if err := rows.Scan(&s.UserID, &s.ExpenseID, &s.Amount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan split row", err)
		}
		result[s.ExpenseID] = append(result[s.ExpenseID], domain.Split{UserID: s.UserID, ExpenseID: s.ExpenseID, Amount: s.Amount})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating split rows", err)
	}

	return result, nil
}

// ListExpensesByGroupID retrieves a paginated list of expenses for a group,
// newest first, using token-based pagination on (paid_on, created_at).
func (r *PgxExpenseRepository) ListExpensesByGroupID(ctx context.Context, groupID string, limit int, nextToken *string) ([]domain.Expense, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there is a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE group_id = $1
	`
	orderByClause := `ORDER BY paid_on DESC, created_at DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{groupID}

	if nextToken != nil && *nextToken != "" {
		lastPaidOn, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (paid_on, created_at) < ($2, $3)`
		args = append(args, lastPaidOn, lastCreatedAt)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}

	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query expenses for group "+groupID, err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0, fetchLimit)
	for rows.Next() {
		m, err := scanExpenseRow(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan expense row for group "+groupID, err)
		}
		expenses = append(expenses, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating expense rows for group "+groupID, err)
	}

	var nextTokenVal *string
	if len(expenses) > limit {
		last := expenses[limit-1]
		token := pagination.EncodeToken(last.PaidOn, last.CreatedAt)
		nextTokenVal = &token
		expenses = expenses[:limit]
	}

	result := make([]domain.Expense, len(expenses))
	for i, m := range expenses {
		result[i] = mapping.ToDomainExpense(m)
	}
	return result, nextTokenVal, nil
}
