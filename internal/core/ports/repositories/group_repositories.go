package repositories

import (
	"context"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// GroupReader defines read operations for group data
type GroupReader interface {
	// FindGroupByID retrieves a specific group by its ID.
	FindGroupByID(ctx context.Context, groupID string) (*domain.Group, error)

	// ListGroupsByUserID retrieves all groups in which the user holds an
	// account with the given membership statuses.
	ListGroupsByUserID(ctx context.Context, userID string, statuses []domain.MembershipStatus) ([]domain.Group, error)
}

// GroupWriter defines write operations for group data
type GroupWriter interface {
	// SaveGroup persists a new group together with the creator's ACTIVE account.
	SaveGroup(ctx context.Context, group domain.Group, creatorAccount domain.Account) error

	// UpdateGroup updates mutable group fields (name, description, policy flags, admin).
	UpdateGroup(ctx context.Context, group domain.Group) error
}

// GroupRepositoryFacade combines all group-related repository interfaces
type GroupRepositoryFacade interface {
	GroupReader
	GroupWriter
}

// GroupRepositoryWithTx extends GroupRepositoryFacade with transaction capabilities
type GroupRepositoryWithTx interface {
	GroupRepositoryFacade
	TransactionManager
}
