package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.uber.org/zap"
)

// UserUsecase serves profile reads and self-service profile changes. The caller's
// id comes from an already verified token.
type UserUsecase struct {
	users    domain.UserRepository
	listings domain.ListingRepository
	logger   *logger.Logger
}

func NewUserUsecase(users domain.UserRepository, listings domain.ListingRepository, log *logger.Logger) *UserUsecase {
	return &UserUsecase{users: users, listings: listings, logger: log.Named("UserUsecase")}
}

func (uc *UserUsecase) GetUser(ctx context.Context, id string) (*domain.PublicUser, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateUser applies patch to the caller's own account.
func (uc *UserUsecase) UpdateUser(ctx context.Context, callerID, id string, patch domain.UserPatch) (*domain.PublicUser, error) {
	if err := uc.requireSelf(callerID, id, "update"); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrInvalidInput)
		}
		user.Username = name
	}
	if patch.Email != nil && *patch.Email != user.Email {
		if !strings.Contains(*patch.Email, "@") {
			return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
		}
		other, err := uc.users.GetByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other != nil && other.ID != user.ID:
			return nil, domain.ErrDuplicateEmail
		case err != nil && !errors.Is(err, domain.ErrUserNotFound):
			return nil, err
		}
		user.Email = *patch.Email
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = hash
	}
	if patch.Avatar != nil && *patch.Avatar != "" {
		user.Avatar = *patch.Avatar
	}

	if err := uc.users.Update(ctx, user); err != nil {
		uc.logger.Error("Failed to update user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	uc.logger.Info("User updated", zap.String("user_id", id))
	return user.Public(), nil
}

// DeleteUser removes the caller's own account. Their listings are kept.
func (uc *UserUsecase) DeleteUser(ctx context.Context, callerID, id string) error {
	if err := uc.requireSelf(callerID, id, "delete"); err != nil {
		return err
	}
	if err := uc.users.Delete(ctx, id); err != nil {
		uc.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return err
	}
	uc.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (uc *UserUsecase) ListUserListings(ctx context.Context, callerID, id string) ([]*domain.Listing, error) {
	if err := uc.requireSelf(callerID, id, "list listings"); err != nil {
		return nil, err
	}
	return uc.listings.FindByOwner(ctx, id)
}

func (uc *UserUsecase) requireSelf(callerID, id, action string) error {
	if callerID == "" {
		return domain.ErrTokenRejected
	}
	if callerID != id {
		uc.logger.Warn("Account access denied",
			zap.String("caller_id", callerID),
			zap.String("target_id", id),
			zap.String("action", action))
		return domain.ErrNotOwner
	}
	return nil
}
