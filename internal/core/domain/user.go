package domain

import "time"

// User represents a registered user. At least one of Email or Mobile is always
// present; uniqueness of both is enforced at registration time and by the schema.
type User struct {
	UserID       string  `json:"userID"` // Primary Key (UUID)
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Mobile       *string `json:"mobile,omitempty"`
	PasswordHash string  `json:"-"`
	Enabled      bool    `json:"enabled"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
