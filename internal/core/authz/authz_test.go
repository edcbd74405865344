package authz_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/splittab/split_tab_app/internal/core/authz"
	"github.com/splittab/split_tab_app/internal/core/domain"
)

func activeAccount(userID, groupID string) domain.Account {
	return domain.Account{
		AccountID:        uuid.NewString(),
		UserID:           userID,
		GroupID:          groupID,
		MembershipStatus: domain.MembershipActive,
		Enabled:          true,
	}
}

func TestIsActiveMember(t *testing.T) {
	groupID := uuid.NewString()
	memberID := uuid.NewString()
	outsiderID := uuid.NewString()

	accounts := []domain.Account{activeAccount(memberID, groupID)}

	assert.True(t, authz.IsActiveMember(memberID, accounts))
	assert.False(t, authz.IsActiveMember(outsiderID, accounts))
}

func TestIsActiveMember_IgnoresNonActiveStatuses(t *testing.T) {
	groupID := uuid.NewString()
	userID := uuid.NewString()

	for _, status := range []domain.MembershipStatus{
		domain.MembershipPending,
		domain.MembershipDeclined,
		domain.MembershipCancelled,
		domain.MembershipRemoved,
		domain.MembershipExited,
		domain.MembershipAlternate,
	} {
		acc := activeAccount(userID, groupID)
		acc.MembershipStatus = status
		assert.False(t, authz.IsActiveMember(userID, []domain.Account{acc}), "status %s", status)
	}

	// Disabled account with ACTIVE status is still not a member.
	acc := activeAccount(userID, groupID)
	acc.Enabled = false
	assert.False(t, authz.IsActiveMember(userID, []domain.Account{acc}))
}

func TestCanInvite(t *testing.T) {
	groupID := uuid.NewString()
	adminID := uuid.NewString()
	memberID := uuid.NewString()
	outsiderID := uuid.NewString()

	group := domain.Group{GroupID: groupID, AdminID: adminID}
	accounts := []domain.Account{
		activeAccount(adminID, groupID),
		activeAccount(memberID, groupID),
	}

	// Invites restricted to admin by default.
	assert.True(t, authz.CanInvite(adminID, group, accounts))
	assert.False(t, authz.CanInvite(memberID, group, accounts))

	group.CanUsersInvite = true
	assert.True(t, authz.CanInvite(memberID, group, accounts))

	// A non-member may never invite, whatever the policy says.
	assert.False(t, authz.CanInvite(outsiderID, group, accounts))
}

func TestOwnershipChecks(t *testing.T) {
	ownerID := uuid.NewString()
	inviterID := uuid.NewString()
	account := domain.Account{
		AccountID: uuid.NewString(),
		UserID:    ownerID,
		InvitedBy: inviterID,
	}

	assert.True(t, authz.OwnsAccount(ownerID, account))
	assert.False(t, authz.OwnsAccount(inviterID, account))
	assert.True(t, authz.InvitedBy(inviterID, account))
	assert.False(t, authz.InvitedBy(ownerID, account))
}
