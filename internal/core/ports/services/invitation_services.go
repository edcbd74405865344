package services

import (
	"context"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// InvitationReaderSvc defines read operations for invitation data
type InvitationReaderSvc interface {
	// ListPendingInvitations retrieves the requesting user's PENDING accounts.
	ListPendingInvitations(ctx context.Context, requestingUserID string) ([]domain.Account, error)

	// ListGroupInvitations retrieves a group's PENDING accounts, subject to the
	// see-invitations policy.
	ListGroupInvitations(ctx context.Context, groupID string, requestingUserID string) ([]domain.Account, error)
}

// InvitationWriterSvc defines state transitions on invitations
type InvitationWriterSvc interface {
	// AcceptInvitation activates a PENDING account for the invitee. If the user
	// already holds an ACTIVE account in the group, the invitation is marked
	// ALTERNATE and ErrAlreadyMemberViaOtherAccount is returned.
	AcceptInvitation(ctx context.Context, accountID string, requestingUserID string) (*domain.Account, error)

	// DeclineInvitation marks a PENDING account DECLINED; invitee only.
	DeclineInvitation(ctx context.Context, accountID string, requestingUserID string) error

	// CancelInvitation marks a PENDING account CANCELLED; inviter or group admin only.
	CancelInvitation(ctx context.Context, accountID string, requestingUserID string) error
}

// InvitationSvcFacade combines all invitation-related service interfaces
type InvitationSvcFacade interface {
	InvitationReaderSvc
	InvitationWriterSvc
}
