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
)

var (
	ErrNotGroupMember   = errors.New("user is not an active member of the group")
	ErrAlreadyInvited   = errors.New("user already has a pending invitation to the group")
	ErrAlreadyMember    = errors.New("user is already an active member of the group")
	ErrBalanceNotZero   = errors.New("account balance must be zero to leave the group")
	ErrAdminCannotLeave = errors.New("group admin cannot exit the group")
)

// groupService provides group lifecycle and membership operations.
type groupService struct {
	groupRepo   portsrepo.GroupRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	userRepo    portsrepo.UserRepositoryFacade
}

// NewGroupService creates a new GroupService.
func NewGroupService(groupRepo portsrepo.GroupRepositoryFacade, accountRepo portsrepo.AccountRepositoryFacade, userRepo portsrepo.UserRepositoryFacade) portssvc.GroupSvcFacade {
	return &groupService{
		groupRepo:   groupRepo,
		accountRepo: accountRepo,
		userRepo:    userRepo,
	}
}

// Ensure groupService implements the portssvc.GroupSvcFacade interface
var _ portssvc.GroupSvcFacade = (*groupService)(nil)

// loadGroupAndAccounts fetches a group and all of its accounts in one place so
// the authorization helpers can operate on already-loaded values.
func (s *groupService) loadGroupAndAccounts(ctx context.Context, groupID string) (*domain.Group, []domain.Account, error) {
	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find group %s: %w", groupID, err)
	}
	if !group.Enabled {
		return nil, nil, apperrors.ErrNotFound
	}
	accounts, err := s.accountRepo.FindAccountsByGroupID(ctx, groupID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load accounts for group %s: %w", groupID, err)
	}
	return group, accounts, nil
}

// CreateGroup creates a group with the creator as admin and sole active member.
// The group and the creator's account are persisted in a single transaction.
func (s *groupService) CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     creatorUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: creatorUserID,
	}

	group := domain.Group{
		GroupID:                uuid.NewString(),
		Name:                   req.Name,
		Description:            req.Description,
		CurrencyCode:           req.CurrencyCode,
		CreatorID:              creatorUserID,
		AdminID:                creatorUserID,
		CanUsersInvite:         req.CanUsersInvite,
		CanUsersEditInfo:       req.CanUsersEditInfo,
		CanUsersDeleteExpense:  req.CanUsersDeleteExpense,
		CanUsersSeeInvitations: req.CanUsersSeeInvitations,
		Enabled:                true,
		AuditFields:            audit,
	}

	memberSince := now
	creatorAccount := domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           creatorUserID,
		GroupID:          group.GroupID,
		Balance:          decimal.Zero,
		MembershipStatus: domain.MembershipActive,
		Enabled:          true,
		InvitedBy:        creatorUserID,
		InvitedAt:        now,
		MemberSince:      &memberSince,
		AuditFields:      audit,
	}

	if err := s.groupRepo.SaveGroup(ctx, group, creatorAccount); err != nil {
		logger.Error("Failed to save group", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save group: %w", err)
	}

	logger.Info("Group created successfully", slog.String("group_id", group.GroupID), slog.String("creator_id", creatorUserID))
	return &group, nil
}

// GetGroupByID retrieves a group; the requesting user must be an active member.
func (s *groupService) GetGroupByID(ctx context.Context, groupID string, requestingUserID string) (*domain.Group, error) {
	group, accounts, err := s.loadGroupAndAccounts(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}
	return group, nil
}

// ListUserGroups retrieves all groups the requesting user is an active member of.
func (s *groupService) ListUserGroups(ctx context.Context, requestingUserID string) ([]domain.Group, error) {
	groups, err := s.groupRepo.ListGroupsByUserID(ctx, requestingUserID, []domain.MembershipStatus{domain.MembershipActive})
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for user %s: %w", requestingUserID, err)
	}
	return groups, nil
}

// ListGroupMembers retrieves the active accounts of a group.
func (s *groupService) ListGroupMembers(ctx context.Context, groupID string, requestingUserID string) ([]domain.Account, error) {
	_, accounts, err := s.loadGroupAndAccounts(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}

	members := make([]domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.IsActiveMembership() {
			members = append(members, a)
		}
	}
	return members, nil
}

// UpdateGroup updates group info and policy flags, subject to the edit-info policy.
func (s *groupService) UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, requestingUserID string) (*domain.Group, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, accounts, err := s.loadGroupAndAccounts(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}
	if !authz.CanEditInfo(requestingUserID, *group, accounts) {
		return nil, apperrors.ErrForbidden
	}

	updated := false
	if req.Name != nil {
		group.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		group.Description = *req.Description
		updated = true
	}
	// Policy flags are admin-only, regardless of the edit-info policy.
	if req.CanUsersInvite != nil || req.CanUsersEditInfo != nil || req.CanUsersDeleteExpense != nil || req.CanUsersSeeInvitations != nil {
		if !authz.IsAdmin(requestingUserID, *group) {
			return nil, apperrors.ErrForbidden
		}
		if req.CanUsersInvite != nil {
			group.CanUsersInvite = *req.CanUsersInvite
			updated = true
		}
		if req.CanUsersEditInfo != nil {
			group.CanUsersEditInfo = *req.CanUsersEditInfo
			updated = true
		}
		if req.CanUsersDeleteExpense != nil {
			group.CanUsersDeleteExpense = *req.CanUsersDeleteExpense
			updated = true
		}
		if req.CanUsersSeeInvitations != nil {
			group.CanUsersSeeInvitations = *req.CanUsersSeeInvitations
			updated = true
		}
	}
	if !updated {
		return group, nil
	}

	now := time.Now().UTC()
	group.LastUpdatedAt = now
	group.LastUpdatedBy = requestingUserID

	if err := s.groupRepo.UpdateGroup(ctx, *group); err != nil {
		logger.Error("Failed to update group", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	logger.Info("Group updated successfully", slog.String("group_id", groupID))
	return group, nil
}

// InviteUser creates a PENDING account for the invitee, subject to the invite
// policy. A user with a pending invitation or an active membership cannot be
// invited again.
func (s *groupService) InviteUser(ctx context.Context, groupID string, inviteeUserID string, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, accounts, err := s.loadGroupAndAccounts(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !authz.IsActiveMember(requestingUserID, accounts) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}
	if !authz.CanInvite(requestingUserID, *group, accounts) {
		return nil, apperrors.ErrForbidden
	}

	invitee, err := s.userRepo.FindUserByID(ctx, inviteeUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invitee %s: %w", inviteeUserID, err)
	}
	if !invitee.Enabled || invitee.DeletedAt != nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, inviteeUserID)
	}

	for _, a := range accounts {
		if a.UserID != inviteeUserID {
			continue
		}
		switch a.MembershipStatus {
		case domain.MembershipPending:
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrAlreadyInvited)
		case domain.MembershipActive:
			if a.Enabled {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicate, ErrAlreadyMember)
			}
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           inviteeUserID,
		GroupID:          groupID,
		Balance:          decimal.Zero,
		MembershipStatus: domain.MembershipPending,
		Enabled:          true,
		InvitedBy:        requestingUserID,
		InvitedAt:        now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save invitation", slog.String("error", err.Error()), slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to save invitation: %w", err)
	}

	logger.Info("User invited to group", slog.String("group_id", groupID), slog.String("invitee_id", inviteeUserID), slog.String("inviter_id", requestingUserID))
	return &account, nil
}

// RemoveMember marks a member's account REMOVED; admin only. The member must
// have settled up first.
func (s *groupService) RemoveMember(ctx context.Context, groupID string, accountID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, _, err := s.loadGroupAndAccounts(ctx, groupID)
	if err != nil {
		return err
	}
	if !authz.IsAdmin(requestingUserID, *group) {
		return apperrors.ErrForbidden
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	if account.GroupID != groupID {
		return apperrors.ErrNotFound
	}
	if !account.IsActiveMembership() {
		return fmt.Errorf("%w: account is not an active membership", apperrors.ErrConflict)
	}
	if !account.Balance.IsZero() {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrBalanceNotZero)
	}
	if account.UserID == group.AdminID {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAdminCannotLeave)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateMembershipStatus(ctx, accountID, domain.MembershipRemoved, requestingUserID, now); err != nil {
		logger.Error("Failed to remove member", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to remove member: %w", err)
	}

	logger.Info("Member removed from group", slog.String("group_id", groupID), slog.String("account_id", accountID))
	return nil
}

// ExitGroup marks the requesting user's own account EXITED. The admin must
// hand over the group before leaving, and the balance must be settled.
func (s *groupService) ExitGroup(ctx context.Context, groupID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	group, accounts, err := s.loadGroupAndAccounts(ctx, groupID)
	if err != nil {
		return err
	}

	var own *domain.Account
	for i := range accounts {
		if accounts[i].UserID == requestingUserID && accounts[i].IsActiveMembership() {
			own = &accounts[i]
			break
		}
	}
	if own == nil {
		return fmt.Errorf("%w: %s", apperrors.ErrForbidden, ErrNotGroupMember)
	}
	if requestingUserID == group.AdminID {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAdminCannotLeave)
	}
	if !own.Balance.IsZero() {
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrBalanceNotZero)
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateMembershipStatus(ctx, own.AccountID, domain.MembershipExited, requestingUserID, now); err != nil {
		logger.Error("Failed to exit group", slog.String("error", err.Error()), slog.String("account_id", own.AccountID))
		return fmt.Errorf("failed to exit group: %w", err)
	}

	logger.Info("Member exited group", slog.String("group_id", groupID), slog.String("account_id", own.AccountID))
	return nil
}
