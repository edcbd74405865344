// Package authz holds the pure authorization decisions shared by the expense
// and invitation workflows. Every function is side-effect free and operates on
// already-loaded domain values; callers translate a false result into the
// appropriate error kind.
package authz

import "github.com/splittab/split_tab_app/internal/core/domain"

// IsActiveMember reports whether userID holds an enabled ACTIVE account among
// the group's accounts.
func IsActiveMember(userID string, accounts []domain.Account) bool {
	for _, a := range accounts {
		if a.UserID == userID && a.IsActiveMembership() {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID is the group's admin.
func IsAdmin(userID string, group domain.Group) bool {
	return group.AdminID == userID
}

// CanInvite reports whether userID may invite new members: active membership
// plus either the group-wide invite policy or admin rights.
func CanInvite(userID string, group domain.Group, accounts []domain.Account) bool {
	if !IsActiveMember(userID, accounts) {
		return false
	}
	return group.CanUsersInvite || IsAdmin(userID, group)
}

// CanEditInfo reports whether userID may edit the group's information.
func CanEditInfo(userID string, group domain.Group, accounts []domain.Account) bool {
	if !IsActiveMember(userID, accounts) {
		return false
	}
	return group.CanUsersEditInfo || IsAdmin(userID, group)
}

// CanDeleteExpense reports whether userID may delete an expense of the group.
func CanDeleteExpense(userID string, group domain.Group, accounts []domain.Account) bool {
	if !IsActiveMember(userID, accounts) {
		return false
	}
	return group.CanUsersDeleteExpense || IsAdmin(userID, group)
}

// CanSeeInvitations reports whether userID may list the group's pending
// invitations.
func CanSeeInvitations(userID string, group domain.Group, accounts []domain.Account) bool {
	if !IsActiveMember(userID, accounts) {
		return false
	}
	return group.CanUsersSeeInvitations || IsAdmin(userID, group)
}

// OwnsAccount reports whether userID is the owner of the account.
func OwnsAccount(userID string, account domain.Account) bool {
	return account.UserID == userID
}

// InvitedBy reports whether userID created the invitation behind the account.
func InvitedBy(userID string, account domain.Account) bool {
	return account.InvitedBy == userID
}
