package repositories

import (
	"context"
	"time"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by its unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email. Returns apperrors.ErrNotFound when no user matches.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByMobile retrieves a user by mobile number.
	FindUserByMobile(ctx context.Context, mobile string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser updates mutable fields of a user (name).
	UpdateUser(ctx context.Context, user domain.User) error

	// MarkUserDeleted soft-deletes and disables a user.
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, updatedByUserID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}

// UserRepositoryWithTx extends UserRepositoryFacade with transaction capabilities
type UserRepositoryWithTx interface {
	UserRepositoryFacade
	TransactionManager
}
