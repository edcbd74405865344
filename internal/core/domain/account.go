package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipStatus is the lifecycle state of an Account, from invitation to
// departure. PENDING is the only state from which the invitee-facing
// transitions (accept/decline) and the inviter-facing cancel may proceed.
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "PENDING"
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipDeclined  MembershipStatus = "DECLINED"
	MembershipCancelled MembershipStatus = "CANCELLED"
	MembershipRemoved   MembershipStatus = "REMOVED"
	MembershipExited    MembershipStatus = "EXITED"
	// MembershipAlternate marks an invitation superseded by another account that
	// reached ACTIVE first for the same (user, group) pair.
	MembershipAlternate MembershipStatus = "ALTERNATE"
)

// Account joins a User to a Group: it is both the membership record and the
// user's ledger position in the group. Balance is signed: positive means the
// group owes the user, negative means the user owes the group.
// Accounts are never hard-deleted; departure is recorded via status and Enabled.
type Account struct {
	AccountID        string           `json:"accountID"` // Primary Key (UUID)
	UserID           string           `json:"userID"`    // FK -> users.user_id (owner)
	GroupID          string           `json:"groupID"`   // FK -> groups.group_id
	Balance          decimal.Decimal  `json:"balance"`   // NUMERIC(13,4), arbitrary sign
	MembershipStatus MembershipStatus `json:"membershipStatus"`
	Enabled          bool             `json:"enabled"`
	InvitedBy        string           `json:"invitedBy"` // FK -> users.user_id (inviter)
	InvitedAt        time.Time        `json:"invitedAt"`
	MemberSince      *time.Time       `json:"memberSince,omitempty"` // Set on acceptance
	AuditFields
}

// IsActiveMembership reports whether this account currently represents an
// active group membership.
func (a Account) IsActiveMembership() bool {
	return a.Enabled && a.MembershipStatus == MembershipActive
}
