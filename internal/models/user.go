package models

import "time"

// User row in the users table. Email and Mobile are both nullable but the
// schema enforces that at least one is present.
type User struct {
	UserID       string  `db:"user_id"`
	Name         string  `db:"name"`
	Email        *string `db:"email"`
	Mobile       *string `db:"mobile"`
	PasswordHash string  `db:"password_hash"`
	Enabled      bool    `db:"enabled"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
