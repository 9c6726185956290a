package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/imageset"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("estate/usecase")

const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
)

// ListingDeps groups the collaborators of ListingUsecase. Cache, Events and
// Notifier are optional.
type ListingDeps struct {
	Repo     domain.ListingRepository
	Users    domain.UserRepository
	Guard    *OwnershipGuard
	Images   *imageset.Manager
	Uploads  imageset.UploadResolver
	Cache    domain.ListingCache
	Events   domain.EventPublisher
	Notifier domain.ListingNotifier
}

type ListingUsecase struct {
	repo     domain.ListingRepository
	users    domain.UserRepository
	guard    *OwnershipGuard
	images   *imageset.Manager
	uploads  imageset.UploadResolver
	cache    domain.ListingCache
	events   domain.EventPublisher
	notifier domain.ListingNotifier
	logger   *logger.Logger
}

func NewListingUsecase(deps ListingDeps, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		repo:     deps.Repo,
		users:    deps.Users,
		guard:    deps.Guard,
		images:   deps.Images,
		uploads:  deps.Uploads,
		cache:    deps.Cache,
		events:   deps.Events,
		notifier: deps.Notifier,
		logger:   log.Named("ListingUsecase"),
	}
}

// CreateListing stores a new listing owned by the token's subject.
func (uc *ListingUsecase) CreateListing(ctx context.Context, token string, in domain.ListingInput) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.CreateListing")
	defer span.End()

	userID, err := uc.guard.Identify(token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", userID))
	uc.logger.Info("Creating listing", zap.String("user_id", userID), zap.String("name", in.Name))

	if err := in.Validate(); err != nil {
		return nil, err
	}
	urls, err := uc.images.Normalize(ctx, in.Images, uc.uploads)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	listing := &domain.Listing{UserRef: userID, ImageURLs: urls}
	in.Apply(listing)
	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing", zap.String("user_id", userID), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	uc.publish(ctx, SubjectListingCreated, listing)
	uc.notifyOwner(ctx, listing)
	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("cover", listing.Cover()))
	return listing, nil
}

// UpdateListing replaces the content and image set of a listing the caller owns.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, token, id string, in domain.ListingInput) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.UpdateListing")
	defer span.End()
	span.SetAttributes(attribute.String("listing_id", id))

	listing, userID, err := uc.guard.Authorize(ctx, token, id, ActionUpdate)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Updating listing", zap.String("listing_id", id), zap.String("user_id", userID))

	if err := in.Validate(); err != nil {
		return nil, err
	}
	urls, err := uc.images.Normalize(ctx, in.Images, uc.uploads)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	in.Apply(listing)
	listing.ImageURLs = urls
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error("Failed to update listing", zap.String("listing_id", id), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, SubjectListingUpdated, listing)
	return listing, nil
}

// DeleteListing removes a listing the caller owns. Stored images are left alone.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, token, id string) error {
	ctx, span := tracer.Start(ctx, "ListingUsecase.DeleteListing")
	defer span.End()
	span.SetAttributes(attribute.String("listing_id", id))

	_, userID, err := uc.guard.Authorize(ctx, token, id, ActionDelete)
	if err != nil {
		return err
	}
	uc.logger.Info("Deleting listing", zap.String("listing_id", id), zap.String("user_id", userID))

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		span.RecordError(err)
		return err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, SubjectListingDeleted, map[string]string{"listing_id": id, "user_id": userID})
	return nil
}

// GetListing is public. It reads through the cache when one is configured.
func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.SetListing(ctx, listing); err != nil {
			uc.logger.Warn("Listing cache write failed", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return listing, nil
}

// SearchListings applies defaults and bounds to the filter before querying.
func (uc *ListingUsecase) SearchListings(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("Searching listings", zap.String("filter", fmt.Sprintf("%+v", filter)))
	return uc.repo.FindByFilter(ctx, filter)
}

func normalizeFilter(f domain.ListingFilter) (domain.ListingFilter, error) {
	f.SearchTerm = strings.TrimSpace(f.SearchTerm)
	if f.Type == "all" {
		f.Type = ""
	}
	if f.Type != "" && !f.Type.IsValid() {
		return f, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, f.Type)
	}
	switch f.SortBy {
	case "":
		f.SortBy = "createdAt"
	case "createdAt", "regularPrice":
	default:
		return f, fmt.Errorf("%w: cannot sort by %q", domain.ErrInvalidInput, f.SortBy)
	}
	switch f.SortOrder {
	case "":
		f.SortOrder = "desc"
	case "asc", "desc":
	default:
		return f, fmt.Errorf("%w: order must be asc or desc", domain.ErrInvalidInput)
	}
	if f.Limit <= 0 {
		f.Limit = domain.DefaultSearchLimit
	}
	if f.Limit > domain.MaxSearchLimit {
		f.Limit = domain.MaxSearchLimit
	}
	if f.StartIndex < 0 {
		f.StartIndex = 0
	}
	return f, nil
}

func (uc *ListingUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func (uc *ListingUsecase) notifyOwner(ctx context.Context, listing *domain.Listing) {
	if uc.notifier == nil || uc.users == nil {
		return
	}
	owner, err := uc.users.GetByID(ctx, listing.UserRef)
	if err != nil {
		uc.logger.Warn("Cannot load owner for notification", zap.String("user_id", listing.UserRef), zap.Error(err))
		return
	}
	if err := uc.notifier.SendListingCreatedEmail(owner.Email, listing.Name); err != nil {
		uc.logger.Warn("Failed to send listing created email", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}
