package domain

// Group is a named collection of members sharing expenses. The creator becomes
// the initial admin; policy flags decide what non-admin members may do.
type Group struct {
	GroupID      string `json:"groupID"` // Primary Key (UUID)
	Name         string `json:"name"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currencyCode"` // ISO-4217 code, e.g. "INR"
	CreatorID    string `json:"creatorID"`    // FK -> users.user_id
	AdminID      string `json:"adminID"`      // FK -> users.user_id; single admin per group

	CanUsersInvite         bool `json:"canUsersInvite"`
	CanUsersEditInfo       bool `json:"canUsersEditInfo"`
	CanUsersDeleteExpense  bool `json:"canUsersDeleteExpense"`
	CanUsersSeeInvitations bool `json:"canUsersSeeInvitations"`

	Enabled bool `json:"enabled"`
	AuditFields
}
