package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/authz"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/middleware"
)

var (
	ErrInvitationDisabled           = errors.New("invitation account is disabled")
	ErrInvitationCancelled          = errors.New("invitation has already been cancelled")
	ErrInvitationDeclined           = errors.New("invitation has already been declined")
	ErrInvitationAlreadyActive      = errors.New("invitation has already been accepted")
	ErrInvitationNotPending         = errors.New("invitation is not in a pending state")
	ErrNotInvitee                   = errors.New("only the invited user can act on this invitation")
	ErrNotInviter                   = errors.New("only the inviter can cancel this invitation")
	ErrAlreadyMemberViaOtherAccount = errors.New("user already holds an active membership through another account")
)

// invitationService drives the membership state machine of PENDING accounts.
type invitationService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	groupRepo   portsrepo.GroupRepositoryFacade
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(accountRepo portsrepo.AccountRepositoryFacade, groupRepo portsrepo.GroupRepositoryFacade) portssvc.InvitationSvcFacade {
	return &invitationService{
		accountRepo: accountRepo,
		groupRepo:   groupRepo,
	}
}

// Ensure invitationService implements the portssvc.InvitationSvcFacade interface
var _ portssvc.InvitationSvcFacade = (*invitationService)(nil)

// confirmProcessability verifies that an invitation can still be acted on:
// it must exist, be enabled, belong to an enabled group, and still be PENDING.
// Each terminal state is reported as its own conflict kind so callers can
// tell a stale invitation apart from a missing one and react per state.
func (s *invitationService) confirmProcessability(ctx context.Context, accountID string) (*domain.Account, *domain.Group, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find invitation %s: %w", accountID, err)
	}
	if !account.Enabled {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrInvitationDisabled)
	}
	switch account.MembershipStatus {
	case domain.MembershipPending:
		// processable
	case domain.MembershipCancelled:
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrInvitationCancelled)
	case domain.MembershipDeclined:
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrInvitationDeclined)
	case domain.MembershipActive:
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrConflict, ErrInvitationAlreadyActive)
	default:
		return nil, nil, fmt.Errorf("%w: %w (current status %s)", apperrors.ErrConflict, ErrInvitationNotPending, account.MembershipStatus)
	}

	group, err := s.groupRepo.FindGroupByID(ctx, account.GroupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find group %s: %w", account.GroupID, err)
	}
	if !group.Enabled {
		return nil, nil, apperrors.ErrNotFound
	}
	return account, group, nil
}

// AcceptInvitation activates a PENDING account for the invitee. The activation
// is exclusive: if the user already holds an ACTIVE account in the group, the
// invitation is marked ALTERNATE instead and ErrAlreadyMemberViaOtherAccount
// is returned. Other PENDING invitations of the same user in the group are
// marked ALTERNATE on success.
func (s *invitationService) AcceptInvitation(ctx context.Context, accountID string, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, _, err := s.confirmProcessability(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !authz.OwnsAccount(requestingUserID, *account) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotInvitee)
	}

	now := time.Now().UTC()
	activated, err := s.accountRepo.ActivateAccountExclusive(ctx, accountID, account.UserID, account.GroupID, now, requestingUserID)
	if err != nil {
		logger.Error("Failed to activate invitation", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to accept invitation: %w", err)
	}
	if !activated {
		logger.Info("Invitation marked alternate, user already active in group", slog.String("account_id", accountID), slog.String("group_id", account.GroupID))
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAlreadyMemberViaOtherAccount)
	}

	account.MembershipStatus = domain.MembershipActive
	account.MemberSince = &now
	account.LastUpdatedAt = now
	account.LastUpdatedBy = requestingUserID

	logger.Info("Invitation accepted", slog.String("account_id", accountID), slog.String("group_id", account.GroupID), slog.String("user_id", requestingUserID))
	return account, nil
}

// DeclineInvitation marks a PENDING account DECLINED; invitee only.
func (s *invitationService) DeclineInvitation(ctx context.Context, accountID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, _, err := s.confirmProcessability(ctx, accountID)
	if err != nil {
		return err
	}
	if !authz.OwnsAccount(requestingUserID, *account) {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotInvitee)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateMembershipStatus(ctx, accountID, domain.MembershipDeclined, requestingUserID, now); err != nil {
		logger.Error("Failed to decline invitation", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to decline invitation: %w", err)
	}

	logger.Info("Invitation declined", slog.String("account_id", accountID), slog.String("user_id", requestingUserID))
	return nil
}

// CancelInvitation marks a PENDING account CANCELLED; inviter only.
func (s *invitationService) CancelInvitation(ctx context.Context, accountID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, _, err := s.confirmProcessability(ctx, accountID)
	if err != nil {
		return err
	}
	if !authz.InvitedBy(requestingUserID, *account) {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotInviter)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateMembershipStatus(ctx, accountID, domain.MembershipCancelled, requestingUserID, now); err != nil {
		logger.Error("Failed to cancel invitation", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to cancel invitation: %w", err)
	}

	logger.Info("Invitation cancelled", slog.String("account_id", accountID), slog.String("user_id", requestingUserID))
	return nil
}

// ListPendingInvitations retrieves the requesting user's PENDING accounts.
func (s *invitationService) ListPendingInvitations(ctx context.Context, requestingUserID string) ([]domain.Account, error) {
	invitations, err := s.accountRepo.ListPendingInvitationsByUserID(ctx, requestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for user %s: %w", requestingUserID, err)
	}
	return invitations, nil
}

// ListGroupInvitations retrieves a group's PENDING accounts, subject to the
// see-invitations policy.
func (s *invitationService) ListGroupInvitations(ctx context.Context, groupID string, requestingUserID string) ([]domain.Account, error) {
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
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}
	if !authz.CanSeeInvitations(requestingUserID, *group, accounts) {
		return nil, apperrors.ErrForbidden
	}

	pending, err := s.accountRepo.ListInvitationsByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations for group %s: %w", groupID, err)
	}
	return pending, nil
}
