package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/core/services"
)

type InvitationServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockGroupRepo   *MockGroupRepository
	service         portssvc.InvitationSvcFacade

	group      *domain.Group
	invitation domain.Account
}

func (suite *InvitationServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.service = services.NewInvitationService(suite.mockAccountRepo, suite.mockGroupRepo)

	suite.group = &domain.Group{
		GroupID: uuid.NewString(),
		AdminID: "admin",
		Enabled: true,
	}
	suite.invitation = domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           "invitee",
		GroupID:          suite.group.GroupID,
		MembershipStatus: domain.MembershipPending,
		Enabled:          true,
		InvitedBy:        "admin",
		InvitedAt:        time.Now().UTC(),
	}
}

func (suite *InvitationServiceTestSuite) expectLookup() {
	suite.mockAccountRepo.On("FindAccountByID", mock.Anything, suite.invitation.AccountID).Return(&suite.invitation, nil).Once()
	suite.mockGroupRepo.On("FindGroupByID", mock.Anything, suite.group.GroupID).Return(suite.group, nil).Once()
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_Success() {
	ctx := context.Background()
	suite.expectLookup()
	suite.mockAccountRepo.On("ActivateAccountExclusive", ctx, suite.invitation.AccountID, "invitee", suite.group.GroupID, mock.AnythingOfType("time.Time"), "invitee").
		Return(true, nil).Once()

	account, err := suite.service.AcceptInvitation(ctx, suite.invitation.AccountID, "invitee")

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(domain.MembershipActive, account.MembershipStatus)
	suite.Require().NotNil(account.MemberSince)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_AlreadyActiveElsewhereBecomesAlternate() {
	ctx := context.Background()
	suite.expectLookup()
	// The repository reports that another account of the same user is already
	// ACTIVE in the group; the invitation was shelved as ALTERNATE.
	suite.mockAccountRepo.On("ActivateAccountExclusive", ctx, suite.invitation.AccountID, "invitee", suite.group.GroupID, mock.AnythingOfType("time.Time"), "invitee").
		Return(false, nil).Once()

	account, err := suite.service.AcceptInvitation(ctx, suite.invitation.AccountID, "invitee")

	suite.Require().Error(err)
	suite.Nil(account)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorContains(err, services.ErrAlreadyMemberViaOtherAccount.Error())
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_NotInviteeForbidden() {
	ctx := context.Background()
	suite.expectLookup()

	_, err := suite.service.AcceptInvitation(ctx, suite.invitation.AccountID, "someone-else")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ActivateAccountExclusive")
}

func (suite *InvitationServiceTestSuite) TestAcceptInvitation_TerminalStatesDistinguishable() {
	ctx := context.Background()
	cases := []struct {
		status  domain.MembershipStatus
		wantErr error
	}{
		{domain.MembershipCancelled, services.ErrInvitationCancelled},
		{domain.MembershipDeclined, services.ErrInvitationDeclined},
		{domain.MembershipActive, services.ErrInvitationAlreadyActive},
		{domain.MembershipAlternate, services.ErrInvitationNotPending},
	}
	for _, tc := range cases {
		account := suite.invitation
		account.MembershipStatus = tc.status
		suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(&account, nil).Once()

		_, err := suite.service.AcceptInvitation(ctx, account.AccountID, "invitee")

		suite.Require().Error(err, "status %s", tc.status)
		suite.ErrorIs(err, apperrors.ErrConflict, "status %s", tc.status)
		suite.ErrorIs(err, tc.wantErr, "status %s", tc.status)
	}
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ActivateAccountExclusive")
}

func (suite *InvitationServiceTestSuite) TestDeclineInvitation_DisabledAccountConflict() {
	ctx := context.Background()
	suite.invitation.Enabled = false
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.invitation.AccountID).Return(&suite.invitation, nil).Once()

	err := suite.service.DeclineInvitation(ctx, suite.invitation.AccountID, "invitee")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.ErrorIs(err, services.ErrInvitationDisabled)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipStatus")
}

func (suite *InvitationServiceTestSuite) TestDeclineInvitation_Success() {
	ctx := context.Background()
	suite.expectLookup()
	suite.mockAccountRepo.On("UpdateMembershipStatus", ctx, suite.invitation.AccountID, domain.MembershipDeclined, "invitee", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeclineInvitation(ctx, suite.invitation.AccountID, "invitee")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *InvitationServiceTestSuite) TestDeclineInvitation_OnlyInvitee() {
	ctx := context.Background()
	suite.expectLookup()

	err := suite.service.DeclineInvitation(ctx, suite.invitation.AccountID, "admin")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipStatus")
}

func (suite *InvitationServiceTestSuite) TestCancelInvitation_ByInviter() {
	ctx := context.Background()
	suite.expectLookup()
	suite.mockAccountRepo.On("UpdateMembershipStatus", ctx, suite.invitation.AccountID, domain.MembershipCancelled, "admin", mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.CancelInvitation(ctx, suite.invitation.AccountID, "admin")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *InvitationServiceTestSuite) TestCancelInvitation_AdminWhoIsNotInviterForbidden() {
	ctx := context.Background()
	suite.invitation.InvitedBy = "another-member"
	suite.expectLookup()

	err := suite.service.CancelInvitation(ctx, suite.invitation.AccountID, "admin")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipStatus")
}

func (suite *InvitationServiceTestSuite) TestCancelInvitation_UninvolvedMemberForbidden() {
	ctx := context.Background()
	suite.expectLookup()

	err := suite.service.CancelInvitation(ctx, suite.invitation.AccountID, "random-member")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateMembershipStatus")
}

func (suite *InvitationServiceTestSuite) TestListPendingInvitations() {
	ctx := context.Background()
	suite.mockAccountRepo.On("ListPendingInvitationsByUserID", ctx, "invitee").Return([]domain.Account{suite.invitation}, nil).Once()

	invitations, err := suite.service.ListPendingInvitations(ctx, "invitee")

	suite.Require().NoError(err)
	suite.Len(invitations, 1)
}

func (suite *InvitationServiceTestSuite) TestListGroupInvitations_AdminSeesPending() {
	ctx := context.Background()
	admin := activeAccount("admin", suite.group.GroupID)
	suite.mockGroupRepo.On("FindGroupByID", ctx, suite.group.GroupID).Return(suite.group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, suite.group.GroupID, []domain.MembershipStatus(nil)).
		Return([]domain.Account{admin, suite.invitation}, nil).Once()
	suite.mockAccountRepo.On("ListInvitationsByGroupID", ctx, suite.group.GroupID).
		Return([]domain.Account{suite.invitation}, nil).Once()

	invitations, err := suite.service.ListGroupInvitations(ctx, suite.group.GroupID, "admin")

	suite.Require().NoError(err)
	suite.Len(invitations, 1)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *InvitationServiceTestSuite) TestListGroupInvitations_PolicyClosedMemberForbidden() {
	ctx := context.Background()
	member := activeAccount("member", suite.group.GroupID)
	suite.mockGroupRepo.On("FindGroupByID", ctx, suite.group.GroupID).Return(suite.group, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByGroupID", ctx, suite.group.GroupID, []domain.MembershipStatus(nil)).
		Return([]domain.Account{member, suite.invitation}, nil).Once()

	_, err := suite.service.ListGroupInvitations(ctx, suite.group.GroupID, "member")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "ListInvitationsByGroupID")
}

func TestInvitationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvitationServiceTestSuite))
}
