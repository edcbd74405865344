package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/core/services"
	"github.com/splittab/split_tab_app/internal/dto"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockAccountRepo *MockAccountRepository
	mockGroupRepo   *MockGroupRepository
	service         portssvc.ExpenseSvcFacade

	group    *domain.Group
	alice    domain.Account // admin
	bob      domain.Account
	cara     domain.Account
	accounts []domain.Account
}

func (suite *ExpenseServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.service = services.NewExpenseService(suite.mockExpenseRepo, suite.mockAccountRepo, suite.mockGroupRepo)

	suite.group = &domain.Group{
		GroupID:      uuid.NewString(),
		Name:         "Flat 4B",
		CurrencyCode: "EUR",
		Enabled:      true,
	}
	suite.alice = suite.newActiveAccount("alice")
	suite.bob = suite.newActiveAccount("bob")
	suite.cara = suite.newActiveAccount("cara")
	suite.group.CreatorID = suite.alice.UserID
	suite.group.AdminID = suite.alice.UserID
	suite.accounts = []domain.Account{suite.alice, suite.bob, suite.cara}
}

func (suite *ExpenseServiceTestSuite) newActiveAccount(name string) domain.Account {
	now := time.Now().UTC()
	return domain.Account{
		AccountID:        name + "-" + uuid.NewString(),
		UserID:           name,
		GroupID:          suite.group.GroupID,
		Balance:          decimal.Zero,
		MembershipStatus: domain.MembershipActive,
		Enabled:          true,
		MemberSince:      &now,
	}
}

// expectLedgerLoad wires the group and account lookups every expense operation starts with.
func (suite *ExpenseServiceTestSuite) expectLedgerLoad() {
	suite.mockGroupRepo.On("FindGroupByID", mock.Anything, suite.group.GroupID).Return(suite.group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", mock.Anything, suite.group.GroupID, []domain.MembershipStatus(nil)).Return(suite.accounts, nil).Once()
}

func sumChanges(changes map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range changes {
		total = total.Add(d)
	}
	return total
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_EqualSplit_ChangesSumToZero() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	var captured map[string]decimal.Decimal
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Split"), mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	req := dto.CreateExpenseRequest{
		Title:     "Groceries",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("100"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits: []dto.SplitInput{
			{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"},
		},
	}

	expense, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "alice")

	suite.Require().NoError(err)
	suite.Require().NotNil(expense)
	suite.Len(expense.Splits, 3)

	// Conservation: the changes of a single expense always net to zero.
	suite.Require().NotNil(captured)
	suite.True(sumChanges(captured).IsZero(), "balance changes must sum to zero, got %s", sumChanges(captured))

	// Payer is up by amount minus their own share; the remainder lands on the first split.
	suite.True(captured[suite.alice.AccountID].Equal(decimal.RequireFromString("66.6666")),
		"alice delta = %s", captured[suite.alice.AccountID])
	suite.True(captured[suite.bob.AccountID].Equal(decimal.RequireFromString("-33.3333")))
	suite.True(captured[suite.cara.AccountID].Equal(decimal.RequireFromString("-33.3333")))

	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_ExactSplit_WithinTolerance() {
	ctx := context.Background()
	suite.expectLedgerLoad()
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	// 99.99 vs 100.00 is inside the relative tolerance.
	req := dto.CreateExpenseRequest{
		Title:     "Dinner",
		PaidBy:    suite.bob.AccountID,
		Amount:    decimal.RequireFromString("100"),
		SplitType: domain.SplitExact,
		PaidOn:    time.Now().UTC(),
		Splits: []dto.SplitInput{
			{UserID: "alice", Amount: decimal.RequireFromString("33.33")},
			{UserID: "bob", Amount: decimal.RequireFromString("33.33")},
			{UserID: "cara", Amount: decimal.RequireFromString("33.33")},
		},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "bob")
	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_ExactSplit_OutsideTolerance() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Dinner",
		PaidBy:    suite.bob.AccountID,
		Amount:    decimal.RequireFromString("100"),
		SplitType: domain.SplitExact,
		PaidOn:    time.Now().UTC(),
		Splits: []dto.SplitInput{
			{UserID: "alice", Amount: decimal.RequireFromString("30")},
			{UserID: "bob", Amount: decimal.RequireFromString("30")},
			{UserID: "cara", Amount: decimal.RequireFromString("30")},
		},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "bob")
	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrSplitAmountMismatch)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense")
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_CoverageSubsetRejected() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Taxi",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("30"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}}, // cara missing
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "alice")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense")
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_DuplicateUserRejected() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Taxi",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("30"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "bob"}},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "alice")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_OutsiderRejected() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Taxi",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("40"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}, {UserID: "mallory"}},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "alice")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_NonPositiveAmountRejected() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Refund",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("-10"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "alice")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_PayerOutsideGroupRejected() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Rent",
		PaidBy:    "account-from-another-group",
		Amount:    decimal.RequireFromString("900"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "alice")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_NonMemberForbidden() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	req := dto.CreateExpenseRequest{
		Title:     "Groceries",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("10"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}},
	}

	_, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "mallory")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_PercentageSplit() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	var captured map[string]decimal.Decimal
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	req := dto.CreateExpenseRequest{
		Title:     "Utilities",
		PaidBy:    suite.cara.AccountID,
		Amount:    decimal.RequireFromString("200"),
		SplitType: domain.SplitPercentage,
		PaidOn:    time.Now().UTC(),
		Splits: []dto.SplitInput{
			{UserID: "alice", Amount: decimal.RequireFromString("50")},
			{UserID: "bob", Amount: decimal.RequireFromString("25")},
			{UserID: "cara", Amount: decimal.RequireFromString("25")},
		},
	}

	expense, err := suite.service.CreateExpense(ctx, suite.group.GroupID, req, "cara")

	suite.Require().NoError(err)
	suite.Require().NotNil(expense)
	suite.True(sumChanges(captured).IsZero())
	suite.True(captured[suite.alice.AccountID].Equal(decimal.RequireFromString("-100")))
	suite.True(captured[suite.cara.AccountID].Equal(decimal.RequireFromString("150")))
}

func (suite *ExpenseServiceTestSuite) TestUpdateExpense_NetsReversalAndReapplication() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	expenseID := uuid.NewString()
	existing := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.group.GroupID,
		Title:     "Groceries",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("90"),
		SplitType: domain.SplitEqual,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Now().UTC().Add(-time.Hour),
			CreatedBy: "alice",
		},
	}
	oldSplits := []domain.Split{
		{UserID: "alice", ExpenseID: expenseID, Amount: decimal.RequireFromString("30")},
		{UserID: "bob", ExpenseID: expenseID, Amount: decimal.RequireFromString("30")},
		{UserID: "cara", ExpenseID: expenseID, Amount: decimal.RequireFromString("30")},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(existing, nil).Once()
	suite.mockExpenseRepo.On("FindSplitsByExpenseID", ctx, expenseID).Return(oldSplits, nil).Once()

	var captured map[string]decimal.Decimal
	suite.mockExpenseRepo.On("UpdateExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.AnythingOfType("[]domain.Split"), mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	// Same amount, but bob pays now.
	req := dto.UpdateExpenseRequest{
		Title:     "Groceries (corrected)",
		PaidBy:    suite.bob.AccountID,
		Amount:    decimal.RequireFromString("90"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}},
	}

	updated, err := suite.service.UpdateExpense(ctx, suite.group.GroupID, expenseID, req, "bob")

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Equal(existing.CreatedBy, updated.CreatedBy)
	suite.Equal(existing.CreatedAt, updated.CreatedAt)

	// Net effect: payer role moved from alice to bob, shares unchanged.
	suite.Require().NotNil(captured)
	suite.True(sumChanges(captured).IsZero())
	suite.True(captured[suite.alice.AccountID].Equal(decimal.RequireFromString("-90")))
	suite.True(captured[suite.bob.AccountID].Equal(decimal.RequireFromString("90")))
	suite.True(captured[suite.cara.AccountID].IsZero())

	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestUpdateExpense_UnresolvableOldPayerIsDesync() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	expenseID := uuid.NewString()
	// The stored payer account is not among the group's accounts anymore.
	existing := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.group.GroupID,
		Title:     "Groceries",
		PaidBy:    uuid.NewString(),
		Amount:    decimal.RequireFromString("90"),
		SplitType: domain.SplitEqual,
	}
	oldSplits := []domain.Split{
		{UserID: "alice", ExpenseID: expenseID, Amount: decimal.RequireFromString("30")},
		{UserID: "bob", ExpenseID: expenseID, Amount: decimal.RequireFromString("30")},
		{UserID: "cara", ExpenseID: expenseID, Amount: decimal.RequireFromString("30")},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(existing, nil).Once()
	suite.mockExpenseRepo.On("FindSplitsByExpenseID", ctx, expenseID).Return(oldSplits, nil).Once()

	req := dto.UpdateExpenseRequest{
		Title:     "Groceries",
		PaidBy:    suite.bob.AccountID,
		Amount:    decimal.RequireFromString("90"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}},
	}

	_, err := suite.service.UpdateExpense(ctx, suite.group.GroupID, expenseID, req, "bob")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrLedgerDesync)
	suite.NotErrorIs(err, apperrors.ErrNotFound)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "UpdateExpense")
}

func (suite *ExpenseServiceTestSuite) TestUpdateExpense_WrongGroupNotFound() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	expenseID := uuid.NewString()
	existing := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   "some-other-group",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("10"),
	}
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(existing, nil).Once()

	req := dto.UpdateExpenseRequest{
		Title:     "x",
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("10"),
		SplitType: domain.SplitEqual,
		PaidOn:    time.Now().UTC(),
		Splits:    []dto.SplitInput{{UserID: "alice"}, {UserID: "bob"}, {UserID: "cara"}},
	}

	_, err := suite.service.UpdateExpense(ctx, suite.group.GroupID, expenseID, req, "alice")
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ExpenseServiceTestSuite) TestDeleteExpense_CreatorReversesBalances() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	expenseID := uuid.NewString()
	existing := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.group.GroupID,
		PaidBy:    suite.alice.AccountID,
		Amount:    decimal.RequireFromString("60"),
		AuditFields: domain.AuditFields{
			CreatedBy: "bob", // creator, but not the payer
		},
	}
	oldSplits := []domain.Split{
		{UserID: "alice", ExpenseID: expenseID, Amount: decimal.RequireFromString("20")},
		{UserID: "bob", ExpenseID: expenseID, Amount: decimal.RequireFromString("20")},
		{UserID: "cara", ExpenseID: expenseID, Amount: decimal.RequireFromString("20")},
	}

	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(existing, nil).Once()
	suite.mockExpenseRepo.On("FindSplitsByExpenseID", ctx, expenseID).Return(oldSplits, nil).Once()

	var captured map[string]decimal.Decimal
	suite.mockExpenseRepo.On("DeleteExpense", ctx, expenseID, mock.Anything, "bob").
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	err := suite.service.DeleteExpense(ctx, suite.group.GroupID, expenseID, "bob")

	suite.Require().NoError(err)
	suite.True(sumChanges(captured).IsZero())
	suite.True(captured[suite.alice.AccountID].Equal(decimal.RequireFromString("-40")))
	suite.True(captured[suite.bob.AccountID].Equal(decimal.RequireFromString("20")))
	suite.True(captured[suite.cara.AccountID].Equal(decimal.RequireFromString("20")))

	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestDeleteExpense_NonCreatorNeedsPolicy() {
	ctx := context.Background()
	suite.group.CanUsersDeleteExpense = false
	suite.expectLedgerLoad()

	expenseID := uuid.NewString()
	existing := &domain.Expense{
		ExpenseID:   expenseID,
		GroupID:     suite.group.GroupID,
		PaidBy:      suite.alice.AccountID,
		Amount:      decimal.RequireFromString("60"),
		AuditFields: domain.AuditFields{CreatedBy: "alice"},
	}
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(existing, nil).Once()

	err := suite.service.DeleteExpense(ctx, suite.group.GroupID, expenseID, "bob")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "DeleteExpense")
}

func (suite *ExpenseServiceTestSuite) TestDeleteExpense_AdminMayAlwaysDelete() {
	ctx := context.Background()
	suite.group.CanUsersDeleteExpense = false
	suite.expectLedgerLoad()

	expenseID := uuid.NewString()
	existing := &domain.Expense{
		ExpenseID:   expenseID,
		GroupID:     suite.group.GroupID,
		PaidBy:      suite.bob.AccountID,
		Amount:      decimal.RequireFromString("15"),
		AuditFields: domain.AuditFields{CreatedBy: "bob"},
	}
	oldSplits := []domain.Split{
		{UserID: "alice", ExpenseID: expenseID, Amount: decimal.RequireFromString("5")},
		{UserID: "bob", ExpenseID: expenseID, Amount: decimal.RequireFromString("5")},
		{UserID: "cara", ExpenseID: expenseID, Amount: decimal.RequireFromString("5")},
	}
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(existing, nil).Once()
	suite.mockExpenseRepo.On("FindSplitsByExpenseID", ctx, expenseID).Return(oldSplits, nil).Once()
	suite.mockExpenseRepo.On("DeleteExpense", ctx, expenseID, mock.Anything, "alice").Return(nil).Once()

	err := suite.service.DeleteExpense(ctx, suite.group.GroupID, expenseID, "alice")

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_PassesTokenThrough() {
	ctx := context.Background()
	suite.expectLedgerLoad()

	next := "opaque-token"
	expenses := []domain.Expense{{ExpenseID: "e1", GroupID: suite.group.GroupID}}
	suite.mockExpenseRepo.On("ListExpensesByGroupID", ctx, suite.group.GroupID, 20, (*string)(nil)).Return(expenses, &next, nil).Once()
	suite.mockExpenseRepo.On("FindSplitsByExpenseIDs", ctx, []string{"e1"}).Return(map[string][]domain.Split{}, nil).Once()

	resp, err := suite.service.ListExpenses(ctx, suite.group.GroupID, "alice", dto.ListExpensesParams{})

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)
	suite.Len(resp.Expenses, 1)
	suite.Require().NotNil(resp.NextToken)
	suite.Equal(next, *resp.NextToken)
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
