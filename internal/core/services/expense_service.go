package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/authz"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
	"github.com/splittab/split_tab_app/internal/utils/accounting"
)

var (
	ErrSplitCoverageMismatch = errors.New("splits must cover every active member exactly once")
	ErrSplitAmountMismatch   = errors.New("split amounts do not reconcile with the expense amount")
	ErrPayerNotInGroup       = errors.New("payer account does not belong to the group")
	ErrInactiveAccount       = errors.New("account is not an active membership")
	ErrAmountNotPositive     = errors.New("expense amount must be positive")
	ErrLedgerDesync          = errors.New("stored splits reference accounts missing from the group")
)

// expenseService implements the ledger engine: every expense mutation computes
// a set of net balance changes and hands them to the repository, which applies
// them together with the row changes in a single database transaction.
type expenseService struct {
	expenseRepo portsrepo.ExpenseRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	groupRepo   portsrepo.GroupRepositoryFacade
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, groupRepo portsrepo.GroupRepositoryFacade) portssvc.ExpenseSvcFacade {
	return &expenseService{
		expenseRepo: expenseRepo,
		accountRepo: accountRepo,
		groupRepo:   groupRepo,
	}
}

// Ensure expenseService implements the portssvc.ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// groupLedger is the loaded state the ledger computations run against.
type groupLedger struct {
	group    *domain.Group
	accounts []domain.Account
	// byAccountID indexes every account of the group.
	byAccountID map[string]domain.Account
	// byUserID indexes one account per user, preferring the active one. Old
	// splits are reversed against this index, so it keeps users whose
	// membership has since ended.
	byUserID map[string]domain.Account
	// activeUserIDs is the coverage set for new splits.
	activeUserIDs map[string]struct{}
}

func (s *expenseService) loadGroupLedger(ctx context.Context, groupID string) (*groupLedger, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group %s: %w", groupID, err)
	}
	if !group.Enabled {
		return nil, apperrors.ErrNotFound
	}

	accounts, err := s.accountRepo.FindAccountsByGroupID(ctx, groupID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts for group %s: %w", groupID, err)
	}

	gl := &groupLedger{
		group:         group,
		accounts:      accounts,
		byAccountID:   make(map[string]domain.Account, len(accounts)),
		byUserID:      make(map[string]domain.Account, len(accounts)),
		activeUserIDs: make(map[string]struct{}),
	}
	for _, a := range accounts {
		gl.byAccountID[a.AccountID] = a
		if existing, ok := gl.byUserID[a.UserID]; !ok || (!existing.IsActiveMembership() && a.IsActiveMembership()) {
			gl.byUserID[a.UserID] = a
		}
		if a.IsActiveMembership() {
			gl.activeUserIDs[a.UserID] = struct{}{}
		}
	}
	return gl, nil
}

// validateCoverage checks that the submitted splits name every active member
// exactly once: no duplicates, no outsiders, no member left out.
func (s *expenseService) validateCoverage(gl *groupLedger, splits []dto.SplitInput) error {
	seen := make(map[string]struct{}, len(splits))
	for _, sp := range splits {
		if _, dup := seen[sp.UserID]; dup {
			return fmt.Errorf("%w: user %s appears more than once", ErrSplitCoverageMismatch, sp.UserID)
		}
		if _, active := gl.activeUserIDs[sp.UserID]; !active {
			return fmt.Errorf("%w: user %s is not an active member", ErrSplitCoverageMismatch, sp.UserID)
		}
		seen[sp.UserID] = struct{}{}
	}
	if len(seen) != len(gl.activeUserIDs) {
		return fmt.Errorf("%w: %d splits for %d active members", ErrSplitCoverageMismatch, len(seen), len(gl.activeUserIDs))
	}
	return nil
}

// expandSplits turns the request splits into concrete money shares for the
// given split type, validated against the expense amount.
func (s *expenseService) expandSplits(splitType domain.SplitType, amount decimal.Decimal, inputs []dto.SplitInput) ([]domain.Split, error) {
	switch splitType {
	case domain.SplitEqual:
		userIDs := make([]string, len(inputs))
		for i, in := range inputs {
			userIDs[i] = in.UserID
		}
		splits, err := accounting.EqualSplits(amount, userIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
		}
		return splits, nil

	case domain.SplitExact:
		splits := make([]domain.Split, len(inputs))
		for i, in := range inputs {
			if in.Amount.IsNegative() {
				return nil, fmt.Errorf("%w: split amount for user %s is negative", apperrors.ErrValidation, in.UserID)
			}
			splits[i] = domain.Split{UserID: in.UserID, Amount: in.Amount}
		}
		if total := accounting.SumSplits(splits); !accounting.AmountsReconcile(total, amount) {
			return nil, fmt.Errorf("%w: splits sum to %s, expense amount is %s", ErrSplitAmountMismatch, total.String(), amount.String())
		}
		return splits, nil

	case domain.SplitPercentage:
		pcts := make([]domain.Split, len(inputs))
		for i, in := range inputs {
			if in.Amount.IsNegative() {
				return nil, fmt.Errorf("%w: percentage for user %s is negative", apperrors.ErrValidation, in.UserID)
			}
			pcts[i] = domain.Split{UserID: in.UserID, Amount: in.Amount}
		}
		splits, err := accounting.ExpandPercentageSplits(amount, pcts)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSplitAmountMismatch, err)
		}
		return splits, nil

	default:
		return nil, fmt.Errorf("%w: unknown split type %s", apperrors.ErrValidation, splitType)
	}
}

// accumulateBalanceChanges folds one expense's effect into changes. sign is 1
// to apply an expense and -1 to reverse it. The payer's balance moves up by
// the full amount, each participant's balance moves down by their share, so
// the changes of a single expense always sum to zero.
func (s *expenseService) accumulateBalanceChanges(changes map[string]decimal.Decimal, gl *groupLedger, payerAccountID string, amount decimal.Decimal, splits []domain.Split, sign int64) error {
	signDec := decimal.NewFromInt(sign)

	if _, ok := gl.byAccountID[payerAccountID]; !ok {
		return fmt.Errorf("%w: payer account %s not found in group %s", ErrLedgerDesync, payerAccountID, gl.group.GroupID)
	}
	changes[payerAccountID] = changes[payerAccountID].Add(amount.Mul(signDec))
	for _, sp := range splits {
		acc, ok := gl.byUserID[sp.UserID]
		if !ok {
			return fmt.Errorf("%w: user %s has no account in group %s", ErrLedgerDesync, sp.UserID, gl.group.GroupID)
		}
		changes[acc.AccountID] = changes[acc.AccountID].Sub(sp.Amount.Mul(signDec))
	}
	return nil
}

// resolvePayer checks that the paying account belongs to the group and is an
// active, enabled membership.
func (s *expenseService) resolvePayer(gl *groupLedger, payerAccountID string) (*domain.Account, error) {
	payer, ok := gl.byAccountID[payerAccountID]
	if !ok {
		return nil, fmt.Errorf("%w: account %s", ErrPayerNotInGroup, payerAccountID)
	}
	if !payer.IsActiveMembership() {
		return nil, fmt.Errorf("%w: account %s", ErrInactiveAccount, payerAccountID)
	}
	return &payer, nil
}

// CreateExpense records an expense and applies its balance changes atomically.
func (s *expenseService) CreateExpense(ctx context.Context, groupID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	gl, err := s.loadGroupLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(creatorUserID, gl.accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountNotPositive)
	}
	if _, err := s.resolvePayer(gl, req.PaidBy); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	if err := s.validateCoverage(gl, req.Splits); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	splits, err := s.expandSplits(req.SplitType, req.Amount, req.Splits)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expenseID := uuid.NewString()
	for i := range splits {
		splits[i].ExpenseID = expenseID
	}

	balanceChanges := make(map[string]decimal.Decimal)
	if err := s.accumulateBalanceChanges(balanceChanges, gl, req.PaidBy, req.Amount, splits, 1); err != nil {
		logger.Error("Failed to compute balance changes", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, err
	}

	expense := domain.Expense{
		ExpenseID: expenseID,
		GroupID:   groupID,
		Title:     req.Title,
		Details:   req.Details,
		PaidBy:    req.PaidBy,
		Amount:    req.Amount,
		SplitType: req.SplitType,
		PaidOn:    req.PaidOn,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense, splits, balanceChanges); err != nil {
		logger.Error("Failed to save expense", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	logger.Info("Expense created successfully", slog.String("expense_id", expenseID), slog.String("group_id", groupID), slog.String("amount", req.Amount.String()))
	expense.Splits = splits
	return &expense, nil
}

// UpdateExpense replaces an expense's content, reversing the old balance
// effects and applying the new ones in one transaction. The net changes of
// reversal plus application are merged before they reach the repository.
func (s *expenseService) UpdateExpense(ctx context.Context, groupID string, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	gl, err := s.loadGroupLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, gl.accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	existing, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	if existing.GroupID != groupID {
		return nil, apperrors.ErrNotFound
	}

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrAmountNotPositive)
	}
	if _, err := s.resolvePayer(gl, req.PaidBy); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	if err := s.validateCoverage(gl, req.Splits); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	newSplits, err := s.expandSplits(req.SplitType, req.Amount, req.Splits)
	if err != nil {
		return nil, err
	}
	for i := range newSplits {
		newSplits[i].ExpenseID = expenseID
	}

	oldSplits, err := s.expenseRepo.FindSplitsByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits for expense %s: %w", expenseID, err)
	}

	balanceChanges := make(map[string]decimal.Decimal)
	if err := s.accumulateBalanceChanges(balanceChanges, gl, existing.PaidBy, existing.Amount, oldSplits, -1); err != nil {
		logger.Error("Failed to compute reversal balance changes", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return nil, err
	}
	if err := s.accumulateBalanceChanges(balanceChanges, gl, req.PaidBy, req.Amount, newSplits, 1); err != nil {
		logger.Error("Failed to compute balance changes", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return nil, err
	}

	now := time.Now().UTC()
	updated := domain.Expense{
		ExpenseID: expenseID,
		GroupID:   groupID,
		Title:     req.Title,
		Details:   req.Details,
		PaidBy:    req.PaidBy,
		Amount:    req.Amount,
		SplitType: req.SplitType,
		PaidOn:    req.PaidOn,
		AuditFields: domain.AuditFields{
			CreatedAt:     existing.CreatedAt,
			CreatedBy:     existing.CreatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.expenseRepo.UpdateExpense(ctx, updated, newSplits, balanceChanges); err != nil {
		logger.Error("Failed to update expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	logger.Info("Expense updated successfully", slog.String("expense_id", expenseID), slog.String("group_id", groupID))
	updated.Splits = newSplits
	return &updated, nil
}

// DeleteExpense removes an expense, reversing its balance effects. The expense
// creator may always delete; others need the delete-expense policy or admin
// rights.
func (s *expenseService) DeleteExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	gl, err := s.loadGroupLedger(ctx, groupID)
	if err != nil {
		return err
	}
	if !authz.IsActiveMember(requestingUserID, gl.accounts) {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	existing, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	if existing.GroupID != groupID {
		return apperrors.ErrNotFound
	}

	if existing.CreatedBy != requestingUserID && !authz.CanDeleteExpense(requestingUserID, *gl.group, gl.accounts) {
		return apperrors.ErrForbidden
	}

	oldSplits, err := s.expenseRepo.FindSplitsByExpenseID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to load splits for expense %s: %w", expenseID, err)
	}

	balanceChanges := make(map[string]decimal.Decimal)
	if err := s.accumulateBalanceChanges(balanceChanges, gl, existing.PaidBy, existing.Amount, oldSplits, -1); err != nil {
		logger.Error("Failed to compute reversal balance changes", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return err
	}

	if err := s.expenseRepo.DeleteExpense(ctx, expenseID, balanceChanges, requestingUserID); err != nil {
		logger.Error("Failed to delete expense", slog.String("error", err.Error()), slog.String("expense_id", expenseID))
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	logger.Info("Expense deleted successfully", slog.String("expense_id", expenseID), slog.String("group_id", groupID))
	return nil
}

// GetExpenseByID retrieves an expense with its splits; active members only.
func (s *expenseService) GetExpenseByID(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error) {
	gl, err := s.loadGroupLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, gl.accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find expense %s: %w", expenseID, err)
	}
	if expense.GroupID != groupID {
		return nil, apperrors.ErrNotFound
	}

	splits, err := s.expenseRepo.FindSplitsByExpenseID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits for expense %s: %w", expenseID, err)
	}
	expense.Splits = splits
	return expense, nil
}

// ListExpenses retrieves a paginated list of a group's expenses, newest first.
func (s *expenseService) ListExpenses(ctx context.Context, groupID string, requestingUserID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	gl, err := s.loadGroupLedger(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, gl.accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	expenses, nextToken, err := s.expenseRepo.ListExpensesByGroupID(ctx, groupID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list expenses", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to retrieve expenses: %w", err)
	}

	// Batch-load splits so the list endpoint shows complete expenses.
	if len(expenses) > 0 {
		expenseIDs := make([]string, len(expenses))
		for i, e := range expenses {
			expenseIDs[i] = e.ExpenseID
		}
		splitsMap, err := s.expenseRepo.FindSplitsByExpenseIDs(ctx, expenseIDs)
		if err != nil {
			logger.Warn("Failed to batch-load splits for expense list", slog.String("error", err.Error()))
		} else {
			for i := range expenses {
				expenses[i].Splits = splitsMap[expenses[i].ExpenseID]
			}
		}
	}

	resp := dto.ToListExpensesResponse(expenses, nextToken)
	logger.Info("Expenses listed successfully", slog.Int("count", len(expenses)), slog.String("group_id", groupID))
	return &resp, nil
}
