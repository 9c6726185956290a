package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listingsCollection = "listings"

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(ctx context.Context, db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	repo := &ListingRepository{
		collection: db.Collection(listingsCollection),
		logger:     log.Named("ListingRepository"),
	}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userRef", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := repo.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		repo.logger.Error("Failed to create indexes for listings collection", zap.Error(err))
		return nil, fmt.Errorf("%w: create listing indexes: %v", domain.ErrStorage, err)
	}
	return repo, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.String("user_id", listing.UserRef), zap.Error(err))
		return fmt.Errorf("%w: insert listing: %v", domain.ErrStorage, err)
	}
	listing.ID = doc.ID.Hex()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	return nil
}

// Update replaces the listing content. Owner and creation time are never rewritten.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	oid, err := primitive.ObjectIDFromHex(listing.ID)
	if err != nil {
		return domain.ErrListingNotFound
	}
	listing.UpdatedAt = time.Now().UTC()
	doc, err := toListingDocument(listing)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	update := bson.M{"$set": bson.M{
		"name":          doc.Name,
		"description":   doc.Description,
		"address":       doc.Address,
		"regularPrice":  doc.RegularPrice,
		"discountPrice": doc.DiscountPrice,
		"bathrooms":     doc.Bathrooms,
		"bedrooms":      doc.Bedrooms,
		"furnished":     doc.Furnished,
		"parking":       doc.Parking,
		"type":          doc.Type,
		"offer":         doc.Offer,
		"imageUrls":     doc.ImageURLs,
		"updatedAt":     doc.UpdatedAt,
	}}
	res, err := r.collection.UpdateByID(ctx, oid, update)
	if err != nil {
		r.logger.Error("Failed to update listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("%w: update listing: %v", domain.ErrStorage, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("%w: delete listing: %v", domain.ErrStorage, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: find listing: %v", domain.ErrStorage, err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) FindByFilter(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query, opts := buildListingQuery(filter)
	return r.find(ctx, query, opts)
}

func (r *ListingRepository) FindByOwner(ctx context.Context, userID string) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"userRef": userID}, opts)
}

func (r *ListingRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		r.logger.Error("Failed to query listings", zap.Error(err))
		return nil, fmt.Errorf("%w: find listings: %v", domain.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode listings: %v", domain.ErrStorage, err)
	}
	return toDomainListings(docs), nil
}

// buildListingQuery expects a filter whose defaults are already applied.
func buildListingQuery(f domain.ListingFilter) (bson.M, *options.FindOptions) {
	query := bson.M{}
	if f.SearchTerm != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(f.SearchTerm), "$options": "i"}
	}
	if f.Offer != nil && *f.Offer {
		query["offer"] = true
	}
	if f.Furnished != nil && *f.Furnished {
		query["furnished"] = true
	}
	if f.Parking != nil && *f.Parking {
		query["parking"] = true
	}
	if f.Type != "" {
		query["type"] = f.Type
	}

	order := -1
	if f.SortOrder == "asc" {
		order = 1
	}
	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}
	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: order}, {Key: "_id", Value: order}}).
		SetSkip(f.StartIndex).
		SetLimit(f.Limit)
	return query, opts
}
