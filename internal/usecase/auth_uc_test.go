package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthUsecase_SignUpThenSignIn(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	events := new(MockEventPublisher)
	tokens := newTestTokens(t)
	uc := NewAuthUsecase(users, tokens, nil, events, logger.NewNop())

	var stored *domain.User
	users.On("GetByEmail", ctx, "alice@x.io").Return(nil, domain.ErrUserNotFound).Once()
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.User)
		stored.ID = "u-alice"
	}).Return(nil).Once()
	events.On("Publish", ctx, SubjectUserRegistered, mock.Anything).Return(nil).Once()

	created, err := uc.SignUp(ctx, SignUpInput{Name: "alice", Email: "alice@x.io", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "u-alice", created.ID)
	assert.Equal(t, domain.DefaultAvatar, created.Avatar)
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw1", stored.Password)

	users.On("GetByEmail", ctx, "alice@x.io").Return(stored, nil)

	session, err := uc.SignIn(ctx, "alice@x.io", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "u-alice", session.User.ID)

	subject, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-alice", subject)

	_, err = uc.SignIn(ctx, "alice@x.io", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	users.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestAuthUsecase_SignUpDuplicateEmailWinsOverOtherFields(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewAuthUsecase(users, newTestTokens(t), nil, nil, logger.NewNop())

	users.On("GetByEmail", ctx, "alice@x.io").Return(&domain.User{ID: "u-alice", Email: "alice@x.io"}, nil)

	_, err := uc.SignUp(ctx, SignUpInput{Name: "", Email: "alice@x.io", Password: ""})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_SignUpRaceOnUniqueIndex(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewAuthUsecase(users, newTestTokens(t), nil, nil, logger.NewNop())

	users.On("GetByEmail", ctx, "a@x.io").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateEmail)

	_, err := uc.SignUp(ctx, SignUpInput{Name: "a", Email: "a@x.io", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthUsecase_SignInUnknownEmail(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewAuthUsecase(users, newTestTokens(t), nil, nil, logger.NewNop())

	users.On("GetByEmail", ctx, "ghost@x.io").Return(nil, domain.ErrUserNotFound)

	_, err := uc.SignIn(ctx, "ghost@x.io", "pw")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAuthUsecase_SignInFederatedExistingUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewAuthUsecase(users, newTestTokens(t), nil, nil, logger.NewNop())

	users.On("GetByEmail", ctx, "alice@x.io").Return(&domain.User{ID: "u-alice", Email: "alice@x.io"}, nil)

	session, err := uc.SignInFederated(ctx, auth.IdentityAssertion{Name: "Alice", Email: "alice@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "u-alice", session.User.ID)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_SignInFederatedCreatesUser(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	events := new(MockEventPublisher)
	uc := NewAuthUsecase(users, newTestTokens(t), nil, events, logger.NewNop())

	var usernames []string
	users.On("GetByEmail", ctx, "bob@x.io").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		usernames = append(usernames, args.Get(1).(*domain.User).Username)
	}).Return(domain.ErrDuplicateUsername).Once()
	users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		u := args.Get(1).(*domain.User)
		usernames = append(usernames, u.Username)
		u.ID = "u-bob"
	}).Return(nil).Once()
	events.On("Publish", ctx, SubjectUserRegistered, mock.Anything).Return(errors.New("nats down"))

	session, err := uc.SignInFederated(ctx, auth.IdentityAssertion{Name: "Bob Builder", Email: "bob@x.io", Photo: "https://p/b.png"})
	require.NoError(t, err)
	assert.Equal(t, "u-bob", session.User.ID)
	assert.Equal(t, "https://p/b.png", session.User.Avatar)

	require.Len(t, usernames, 2)
	pattern := regexp.MustCompile(`^bobbuilder[0-9a-z]{4}$`)
	for _, name := range usernames {
		assert.Regexp(t, pattern, name)
	}
}

func TestAuthUsecase_SignInFederatedGivesUpOnUsernameCollisions(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	uc := NewAuthUsecase(users, newTestTokens(t), nil, nil, logger.NewNop())

	users.On("GetByEmail", ctx, "bob@x.io").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.Anything).Return(domain.ErrDuplicateUsername)

	_, err := uc.SignInFederated(ctx, auth.IdentityAssertion{Name: "Bob", Email: "bob@x.io"})
	assert.ErrorIs(t, err, domain.ErrStorage)
	users.AssertNumberOfCalls(t, "Create", usernameAttempts)
}

func TestAuthUsecase_SignInFederatedRejectsMalformedAssertion(t *testing.T) {
	uc := NewAuthUsecase(new(MockUserRepository), newTestTokens(t), nil, nil, logger.NewNop())

	_, err := uc.SignInFederated(context.Background(), auth.IdentityAssertion{Name: "Bob", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthUsecase_SignOutClearsCookie(t *testing.T) {
	uc := NewAuthUsecase(new(MockUserRepository), newTestTokens(t), nil, nil, logger.NewNop())

	cookie := uc.SignOut(context.Background(), "u-alice")
	assert.Equal(t, auth.CookieName, cookie.Name)
	assert.Equal(t, "", cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
