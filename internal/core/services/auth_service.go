package services

import (
	"context"
	"time"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/platform/config"
	"github.com/splittab/split_tab_app/internal/utils"
)

// tokenService implements the TokenSvcFacade for issuing and validating JWTs.
// It requires access to application configuration for secrets and expiry times.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{
		cfg: cfg,
	}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)

	accessToken, err := utils.GenerateJWT(user.UserID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, err
	}
	return accessToken, expiryTime, nil
}

// ValidateAccessToken verifies a JWT and returns the subject user ID.
func (s *tokenService) ValidateAccessToken(ctx context.Context, tokenString string) (string, error) {
	claims, err := utils.ParseAndValidateJWT(tokenString, s.cfg.JWTSecret)
	if err != nil {
		return "", apperrors.ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", apperrors.ErrUnauthorized
	}
	return claims.Subject, nil
}
