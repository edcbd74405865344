package services

import (
	"context"

	"github.com/splittab/split_tab_app/internal/core/domain"
	"github.com/splittab/split_tab_app/internal/dto"
)

// GroupReaderSvc defines read operations for group data
type GroupReaderSvc interface {
	// GetGroupByID retrieves a group; the requesting user must be an active member.
	GetGroupByID(ctx context.Context, groupID string, requestingUserID string) (*domain.Group, error)

	// ListUserGroups retrieves all groups the requesting user is an active member of.
	ListUserGroups(ctx context.Context, requestingUserID string) ([]domain.Group, error)

	// ListGroupMembers retrieves the active accounts of a group.
	ListGroupMembers(ctx context.Context, groupID string, requestingUserID string) ([]domain.Account, error)
}

// GroupWriterSvc defines write operations for group data
type GroupWriterSvc interface {
	// CreateGroup creates a group with the creator as admin and sole active member.
	CreateGroup(ctx context.Context, req dto.CreateGroupRequest, creatorUserID string) (*domain.Group, error)

	// UpdateGroup updates group info and policy flags, subject to the edit-info policy.
	UpdateGroup(ctx context.Context, groupID string, req dto.UpdateGroupRequest, requestingUserID string) (*domain.Group, error)
}

// GroupMembershipSvc defines membership operations initiated from the group side
type GroupMembershipSvc interface {
	// InviteUser creates a PENDING account for the invitee, subject to the invite policy.
	InviteUser(ctx context.Context, groupID string, inviteeUserID string, requestingUserID string) (*domain.Account, error)

	// RemoveMember marks a member's account REMOVED; admin only.
	RemoveMember(ctx context.Context, groupID string, accountID string, requestingUserID string) error

	// ExitGroup marks the requesting user's own account EXITED.
	ExitGroup(ctx context.Context, groupID string, requestingUserID string) error
}

// GroupSvcFacade combines all group-related service interfaces
type GroupSvcFacade interface {
	GroupReaderSvc
	GroupWriterSvc
	GroupMembershipSvc
}
