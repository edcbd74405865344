package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splittab/split_tab_app/internal/apperrors"
	"github.com/splittab/split_tab_app/internal/core/domain"
	portsrepo "github.com/splittab/split_tab_app/internal/core/ports/repositories"
	portssvc "github.com/splittab/split_tab_app/internal/core/ports/services"
	"github.com/splittab/split_tab_app/internal/dto"
	"github.com/splittab/split_tab_app/internal/middleware"
	"github.com/splittab/split_tab_app/internal/utils"
)

var (
	ErrContactMissing = errors.New("either email or mobile is required")
)

// userService provides user registration, lookup and lifecycle operations.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new UserService.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{
		userRepo: userRepo,
	}
}

// Ensure userService implements the portssvc.UserSvcFacade interface
var _ portssvc.UserSvcFacade = (*userService)(nil)

// RegisterUser creates a new user with a hashed password after uniqueness checks.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Email == nil && req.Mobile == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrContactMissing)
	}

	if req.Email != nil {
		existing, err := s.userRepo.FindUserByEmail(ctx, *req.Email)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to check email uniqueness", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
		}
	}
	if req.Mobile != nil {
		existing, err := s.userRepo.FindUserByMobile(ctx, *req.Mobile)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to check mobile uniqueness", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to check mobile uniqueness: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: mobile already registered", apperrors.ErrDuplicate)
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", apperrors.ErrInternal)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: hash,
		Enabled:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "SELF_REGISTER",
			LastUpdatedAt: now,
			LastUpdatedBy: "SELF_REGISTER",
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User registered successfully", slog.String("user_id", user.UserID))
	return &user, nil
}

// AuthenticateUser verifies credentials. Identifier is matched against email
// when it contains '@', mobile otherwise.
func (s *userService) AuthenticateUser(ctx context.Context, identifier, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var user *domain.User
	var err error
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.FindUserByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.FindUserByMobile(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Same error as a bad password, to not leak which part failed.
			return nil, apperrors.ErrUnauthorized
		}
		logger.Error("Failed to look up user for authentication", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Enabled || user.DeletedAt != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrUnauthorized
	}

	logger.Info("User authenticated successfully", slog.String("user_id", user.UserID))
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if user.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	users, err := s.userRepo.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser updates mutable user fields. Users may only update themselves.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return nil, apperrors.ErrForbidden
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}

	updated := false
	if req.Name != nil {
		user.Name = *req.Name
		updated = true
	}
	if !updated {
		return user, nil
	}

	now := time.Now().UTC()
	user.LastUpdatedAt = now
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.Info("User updated successfully", slog.String("user_id", userID))
	return user, nil
}

// DeleteUser soft-deletes a user. Users may only delete themselves.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if userID != requestingUserID {
		return apperrors.ErrForbidden
	}

	now := time.Now().UTC()
	if err := s.userRepo.MarkUserDeleted(ctx, userID, now, requestingUserID); err != nil {
		logger.Error("Failed to mark user deleted", slog.String("error", err.Error()), slog.String("user_id", userID))
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.Info("User deleted successfully", slog.String("user_id", userID))
	return nil
}
