package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipStatus mirrors the membership state machine values.
type MembershipStatus string

const (
	MembershipPending   MembershipStatus = "PENDING"
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipDeclined  MembershipStatus = "DECLINED"
	MembershipCancelled MembershipStatus = "CANCELLED"
	MembershipRemoved   MembershipStatus = "REMOVED"
	MembershipExited    MembershipStatus = "EXITED"
	MembershipAlternate MembershipStatus = "ALTERNATE"
)

// Account row in the accounts table: one user's membership and ledger position
// within a group. Balance is NUMERIC(13,4).
type Account struct {
	AccountID        string           `db:"account_id"`
	UserID           string           `db:"user_id"`
	GroupID          string           `db:"group_id"`
	Balance          decimal.Decimal  `db:"balance"`
	MembershipStatus MembershipStatus `db:"membership_status"`
	Enabled          bool             `db:"enabled"`
	InvitedBy        string           `db:"invited_by"`
	InvitedAt        time.Time        `db:"invited_at"`
	MemberSince      *time.Time       `db:"member_since"`
	AuditFields
}
