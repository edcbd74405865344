package models

// Group row in the groups table.
type Group struct {
	GroupID      string `db:"group_id"`
	Name         string `db:"name"`
	Description  string `db:"description"`
	CurrencyCode string `db:"currency_code"`
	CreatorID    string `db:"creator_id"`
	AdminID      string `db:"admin_id"`

	CanUsersInvite         bool `db:"can_users_invite"`
	CanUsersEditInfo       bool `db:"can_users_edit_info"`
	CanUsersDeleteExpense  bool `db:"can_users_delete_expense"`
	CanUsersSeeInvitations bool `db:"can_users_see_invitations"`

	Enabled bool `db:"enabled"`
	AuditFields
}
