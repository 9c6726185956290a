package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	SubjectUserRegistered = "user.registered"

	usernameAttempts = 3
	usernameSuffix   = 4
	base36           = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Session is the outcome of a successful sign-in.
type Session struct {
	User      *domain.PublicUser
	Token     string
	ExpiresAt time.Time
}

type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// AuthUsecase runs sign-up, password sign-in, federated sign-in and sign-out.
// Emails are compared exactly as stored; no case folding is applied.
type AuthUsecase struct {
	users    domain.UserRepository
	tokens   *auth.TokenService
	verifier auth.IdentityAssertionVerifier
	events   domain.EventPublisher
	logger   *logger.Logger
}

func NewAuthUsecase(
	users domain.UserRepository,
	tokens *auth.TokenService,
	verifier auth.IdentityAssertionVerifier,
	events domain.EventPublisher,
	log *logger.Logger,
) *AuthUsecase {
	if verifier == nil {
		verifier = auth.TrustedAssertionVerifier{}
	}
	return &AuthUsecase{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		events:   events,
		logger:   log.Named("AuthUsecase"),
	}
}

// SignUp registers a password account. It does not sign the user in.
func (uc *AuthUsecase) SignUp(ctx context.Context, in SignUpInput) (*domain.PublicUser, error) {
	uc.logger.Info("Signing up user", zap.String("email", in.Email))

	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	existing, err := uc.users.GetByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		uc.logger.Warn("Sign-up rejected, email already registered", zap.String("email", in.Email))
		return nil, domain.ErrDuplicateEmail
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name and password are required", domain.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		uc.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username: strings.TrimSpace(in.Name),
		Email:    in.Email,
		Password: hash,
		Avatar:   domain.DefaultAvatar,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		uc.logger.Error("Failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	uc.publish(ctx, SubjectUserRegistered, map[string]interface{}{
		"user_id":  user.ID,
		"email":    user.Email,
		"provider": "password",
	})
	uc.logger.Info("User signed up", zap.String("user_id", user.ID))
	return user.Public(), nil
}

// SignIn checks a password and issues a token.
func (uc *AuthUsecase) SignIn(ctx context.Context, email, password string) (*Session, error) {
	uc.logger.Info("Signing in user", zap.String("email", email))

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			uc.logger.Warn("Sign-in for unknown email", zap.String("email", email))
		}
		return nil, err
	}
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		uc.logger.Warn("Sign-in with wrong password", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}
	return uc.startSession(user)
}

// SignInFederated signs in the owner of a verified external identity, creating a
// federation-only account on first use.
func (uc *AuthUsecase) SignInFederated(ctx context.Context, assertion auth.IdentityAssertion) (*Session, error) {
	verified, err := uc.verifier.Verify(ctx, assertion)
	if err != nil {
		uc.logger.Warn("Federated assertion rejected", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("Federated sign-in", zap.String("email", verified.Email))

	user, err := uc.users.GetByEmail(ctx, verified.Email)
	if err == nil {
		return uc.startSession(user)
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err = uc.createFederatedUser(ctx, verified)
	if err != nil {
		return nil, err
	}
	return uc.startSession(user)
}

func (uc *AuthUsecase) createFederatedUser(ctx context.Context, a auth.IdentityAssertion) (*domain.User, error) {
	// The placeholder is hashed and dropped; nobody ever learns it.
	hash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	avatar := a.Photo
	if avatar == "" {
		avatar = domain.DefaultAvatar
	}

	var lastErr error
	for attempt := 0; attempt < usernameAttempts; attempt++ {
		username, err := federatedUsername(a.Name)
		if err != nil {
			return nil, err
		}
		user := &domain.User{Username: username, Email: a.Email, Password: hash, Avatar: avatar}
		err = uc.users.Create(ctx, user)
		switch {
		case err == nil:
			uc.publish(ctx, SubjectUserRegistered, map[string]interface{}{
				"user_id":  user.ID,
				"email":    user.Email,
				"provider": "google",
			})
			uc.logger.Info("Federated user created", zap.String("user_id", user.ID), zap.String("username", username))
			return user, nil
		case errors.Is(err, domain.ErrDuplicateUsername):
			uc.logger.Debug("Generated username taken, retrying", zap.String("username", username))
			lastErr = err
		case errors.Is(err, domain.ErrDuplicateEmail):
			// Created concurrently by another request for the same identity.
			return uc.users.GetByEmail(ctx, a.Email)
		default:
			uc.logger.Error("Failed to create federated user", zap.String("email", a.Email), zap.Error(err))
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: no free username after %d attempts: %v", domain.ErrStorage, usernameAttempts, lastErr)
}

// SignOut always succeeds. The returned cookie clears the client's token; the
// token itself stays valid until it expires.
func (uc *AuthUsecase) SignOut(_ context.Context, userID string) *http.Cookie {
	uc.logger.Info("User signed out", zap.String("user_id", userID))
	return uc.tokens.Revoke()
}

func (uc *AuthUsecase) startSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := uc.tokens.Issue(user.ID)
	if err != nil {
		uc.logger.Error("Failed to issue token", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return &Session{User: user.Public(), Token: token, ExpiresAt: expiresAt}, nil
}

func (uc *AuthUsecase) publish(ctx context.Context, subject string, data map[string]interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// federatedUsername lower-cases name, drops whitespace and appends a random base36 suffix.
func federatedUsername(name string) (string, error) {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if base == "" {
		base = "user"
	}
	var sb strings.Builder
	sb.WriteString(base)
	alphabet := big.NewInt(int64(len(base36)))
	for i := 0; i < usernameSuffix; i++ {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", fmt.Errorf("generate username suffix: %w", err)
		}
		sb.WriteByte(base36[n.Int64()])
	}
	return sb.String(), nil
}
