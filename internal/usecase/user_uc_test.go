package usecase

import (
	"context"
	"testing"

	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserUsecase_UpdateSelf(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewUserUsecase(users, new(MockListingRepository), logger.NewNop())

	user := &domain.User{ID: "u-alice", Username: "alice", Email: "alice@x.io", Password: "old-hash"}
	users.On("GetByID", ctx, "u-alice").Return(user, nil)
	users.On("GetByEmail", ctx, "alice@new.io").Return(nil, domain.ErrUserNotFound)
	users.On("Update", ctx, user).Return(nil)

	out, err := uc.UpdateUser(ctx, "u-alice", "u-alice", domain.UserPatch{
		Username: strPtr("alice2"),
		Email:    strPtr("alice@new.io"),
		Password: strPtr("new-pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice2", out.Username)
	assert.Equal(t, "alice@new.io", out.Email)
	assert.NoError(t, auth.VerifyPassword(user.Password, "new-pw"))
}

func TestUserUsecase_UpdateEmailTaken(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewUserUsecase(users, new(MockListingRepository), logger.NewNop())

	users.On("GetByID", ctx, "u-alice").Return(&domain.User{ID: "u-alice", Email: "alice@x.io"}, nil)
	users.On("GetByEmail", ctx, "bob@x.io").Return(&domain.User{ID: "u-bob", Email: "bob@x.io"}, nil)

	_, err := uc.UpdateUser(ctx, "u-alice", "u-alice", domain.UserPatch{Email: strPtr("bob@x.io")})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUserUsecase_SelfOnly(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	listings := new(MockListingRepository)
	uc := NewUserUsecase(users, listings, logger.NewNop())

	_, err := uc.UpdateUser(ctx, "u-bob", "u-alice", domain.UserPatch{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	err = uc.DeleteUser(ctx, "u-bob", "u-alice")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.ListUserListings(ctx, "", "u-alice")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	listings.AssertNotCalled(t, "FindByOwner", mock.Anything, mock.Anything)
}

func TestUserUsecase_ListOwnListingsAndDelete(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	listings := new(MockListingRepository)
	uc := NewUserUsecase(users, listings, logger.NewNop())

	listings.On("FindByOwner", ctx, "u-alice").Return([]*domain.Listing{{ID: "l-1", UserRef: "u-alice"}}, nil)
	users.On("Delete", ctx, "u-alice").Return(nil)

	out, err := uc.ListUserListings(ctx, "u-alice", "u-alice")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	require.NoError(t, uc.DeleteUser(ctx, "u-alice", "u-alice"))
	users.AssertExpectations(t)
}

func TestUserUsecase_GetUserHidesPassword(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewUserUsecase(users, new(MockListingRepository), logger.NewNop())

	users.On("GetByID", ctx, "u-alice").Return(&domain.User{ID: "u-alice", Password: "hash"}, nil)
	users.On("GetByID", ctx, "ghost").Return(nil, domain.ErrUserNotFound)

	out, err := uc.GetUser(ctx, "u-alice")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", out.ID)

	_, err = uc.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
