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

type GroupServiceTestSuite struct {
	suite.Suite
	mockGroupRepo   *MockGroupRepository
	mockAccountRepo *MockAccountRepository
	mockUserRepo    *MockUserRepository
	service         portssvc.GroupSvcFacade
}

func (suite *GroupServiceTestSuite) SetupTest() {
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewGroupService(suite.mockGroupRepo, suite.mockAccountRepo, suite.mockUserRepo)
}

func activeAccount(userID, groupID string) domain.Account {
	now := time.Now().UTC()
	return domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           userID,
		GroupID:          groupID,
		Balance:          decimal.Zero,
		MembershipStatus: domain.MembershipActive,
		Enabled:          true,
		MemberSince:      &now,
	}
}

func (suite *GroupServiceTestSuite) TestCreateGroup_CreatorBecomesAdminAndMember() {
	ctx := context.Background()
	creatorID := uuid.NewString()
	req := dto.CreateGroupRequest{
		Name:           "Trip to Goa",
		CurrencyCode:   "INR",
		CanUsersInvite: true,
	}

	var savedGroup domain.Group
	var savedAccount domain.Account
	suite.mockGroupRepo.On("SaveGroup", ctx, mock.AnythingOfType("domain.Group"), mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			savedGroup = args.Get(1).(domain.Group)
			savedAccount = args.Get(2).(domain.Account)
		}).Return(nil).Once()

	group, err := suite.service.CreateGroup(ctx, req, creatorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(group)
	suite.Equal(creatorID, group.AdminID)
	suite.Equal(creatorID, group.CreatorID)
	suite.True(group.Enabled)
	suite.Equal(group.GroupID, savedGroup.GroupID)

	suite.Equal(creatorID, savedAccount.UserID)
	suite.Equal(domain.MembershipActive, savedAccount.MembershipStatus)
	suite.True(savedAccount.Balance.IsZero())
	suite.Require().NotNil(savedAccount.MemberSince)

	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestInviteUser_NonMemberCannotInviteEvenWithOpenPolicy() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true, CanUsersInvite: true}
	accounts := []domain.Account{activeAccount("admin", groupID)}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()

	_, err := suite.service.InviteUser(ctx, groupID, "some-user", "outsider")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *GroupServiceTestSuite) TestInviteUser_PolicyClosedMemberForbidden() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true, CanUsersInvite: false}
	accounts := []domain.Account{activeAccount("admin", groupID), activeAccount("member", groupID)}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()

	_, err := suite.service.InviteUser(ctx, groupID, "some-user", "member")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *GroupServiceTestSuite) TestInviteUser_PendingInvitationIsDuplicate() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	pending := domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           "invitee",
		GroupID:          groupID,
		MembershipStatus: domain.MembershipPending,
		Enabled:          true,
	}
	accounts := []domain.Account{activeAccount("admin", groupID), pending}
	invitee := &domain.User{UserID: "invitee", Enabled: true}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, "invitee").Return(invitee, nil).Once()

	_, err := suite.service.InviteUser(ctx, groupID, "invitee", "admin")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *GroupServiceTestSuite) TestInviteUser_DeclinedUserCanBeReinvited() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	declined := domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           "invitee",
		GroupID:          groupID,
		MembershipStatus: domain.MembershipDeclined,
		Enabled:          true,
	}
	accounts := []domain.Account{activeAccount("admin", groupID), declined}
	invitee := &domain.User{UserID: "invitee", Enabled: true}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()
	suite.mockUserRepo.On("FindUserByID", ctx, "invitee").Return(invitee, nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	account, err := suite.service.InviteUser(ctx, groupID, "invitee", "admin")

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(domain.MembershipPending, account.MembershipStatus)
	suite.Equal("admin", account.InvitedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestRemoveMember_NonAdminForbidden() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	accounts := []domain.Account{activeAccount("admin", groupID), activeAccount("member", groupID)}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()

	err := suite.service.RemoveMember(ctx, groupID, accounts[1].AccountID, "member")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipStatus")
}

func (suite *GroupServiceTestSuite) TestRemoveMember_UnsettledBalanceConflict() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	member := activeAccount("member", groupID)
	member.Balance = decimal.RequireFromString("-12.50")
	accounts := []domain.Account{activeAccount("admin", groupID), member}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, member.AccountID).Return(&member, nil).Once()

	err := suite.service.RemoveMember(ctx, groupID, member.AccountID, "admin")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipStatus")
}

func (suite *GroupServiceTestSuite) TestRemoveMember_Success() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	member := activeAccount("member", groupID)
	accounts := []domain.Account{activeAccount("admin", groupID), member}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, member.AccountID).Return(&member, nil).Once()
	suite.mockAccountRepo.On("UpdateMembershipStatus", ctx, member.AccountID, domain.MembershipRemoved, "admin", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.RemoveMember(ctx, groupID, member.AccountID, "admin")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestExitGroup_AdminCannotLeave() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	accounts := []domain.Account{activeAccount("admin", groupID)}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()

	err := suite.service.ExitGroup(ctx, groupID, "admin")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *GroupServiceTestSuite) TestExitGroup_MarksOwnAccountExited() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true}
	member := activeAccount("member", groupID)
	accounts := []domain.Account{activeAccount("admin", groupID), member}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()
	suite.mockAccountRepo.On("UpdateMembershipStatus", ctx, member.AccountID, domain.MembershipExited, "member", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.ExitGroup(ctx, groupID, "member")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestUpdateGroup_PolicyFlagsAdminOnly() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: true, CanUsersEditInfo: true}
	accounts := []domain.Account{activeAccount("admin", groupID), activeAccount("member", groupID)}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, groupID, []domain.MembershipStatus(nil)).Return(accounts, nil).Once()

	canInvite := true
	_, err := suite.service.UpdateGroup(ctx, groupID, dto.UpdateGroupRequest{CanUsersInvite: &canInvite}, "member")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "UpdateGroup")
}

func (suite *GroupServiceTestSuite) TestGetGroupByID_DisabledGroupNotFound() {
	ctx := context.Background()
	groupID := uuid.NewString()
	group := &domain.Group{GroupID: groupID, AdminID: "admin", Enabled: false}

	suite.mockGroupRepo.On("FindGroupByID", ctx, groupID).Return(group, nil).Once()

	_, err := suite.service.GetGroupByID(ctx, groupID, "admin")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestGroupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GroupServiceTestSuite))
}
