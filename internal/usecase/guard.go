package usecase

import (
	"context"
	"errors"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.uber.org/zap"
)

type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// TokenVerifier resolves a token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// OwnershipGuard lets only a listing's owner mutate or delete it. Missing tokens,
// invalid tokens and foreign owners all surface as domain.ErrUnauthorized; the
// wrapped reason (ErrTokenRejected, ErrNotOwner) is kept for logging.
type OwnershipGuard struct {
	tokens   TokenVerifier
	listings domain.ListingRepository
	logger   *logger.Logger
}

func NewOwnershipGuard(tokens TokenVerifier, listings domain.ListingRepository, log *logger.Logger) *OwnershipGuard {
	return &OwnershipGuard{tokens: tokens, listings: listings, logger: log.Named("OwnershipGuard")}
}

// Identify resolves the caller of a request.
func (g *OwnershipGuard) Identify(token string) (string, error) {
	if token == "" {
		g.logger.Debug("No token presented")
		return "", domain.ErrTokenRejected
	}
	userID, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Warn("Token rejected", zap.Error(err))
		return "", domain.ErrTokenRejected
	}
	return userID, nil
}

// Authorize returns the listing when the token's subject owns it.
func (g *OwnershipGuard) Authorize(ctx context.Context, token, listingID string, action Action) (*domain.Listing, string, error) {
	userID, err := g.Identify(token)
	if err != nil {
		return nil, "", err
	}

	listing, err := g.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			g.logger.Debug("Listing not found", zap.String("listing_id", listingID), zap.String("action", string(action)))
		}
		return nil, "", err
	}

	if listing.UserRef != userID {
		g.logger.Warn("Ownership check failed",
			zap.String("listing_id", listingID),
			zap.String("listing_owner_id", listing.UserRef),
			zap.String("user_id_performing_action", userID),
			zap.String("action", string(action)))
		return nil, "", domain.ErrNotOwner
	}
	return listing, userID, nil
}
