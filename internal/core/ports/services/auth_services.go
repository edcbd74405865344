package services

import (
	"context"
	"time"

	"github.com/splittab/split_tab_app/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken issues a signed JWT for the user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateAccessToken verifies a JWT and returns the subject user ID.
	ValidateAccessToken(ctx context.Context, tokenString string) (string, error)
}
