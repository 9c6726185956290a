package mongodb

import (
	"fmt"
	"time"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Avatar    string             `bson:"avatar"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type listingDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	Description   string             `bson:"description"`
	Address       string             `bson:"address"`
	RegularPrice  float64            `bson:"regularPrice"`
	DiscountPrice float64            `bson:"discountPrice"`
	Bathrooms     int                `bson:"bathrooms"`
	Bedrooms      int                `bson:"bedrooms"`
	Furnished     bool               `bson:"furnished"`
	Parking       bool               `bson:"parking"`
	Type          domain.ListingType `bson:"type"`
	Offer         bool               `bson:"offer"`
	ImageURLs     []string           `bson:"imageUrls"`
	UserRef       string             `bson:"userRef"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

// objectID parses a hex id. An empty id yields NilObjectID so the insert path can assign one.
func objectID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return oid, nil
}

func toUserDocument(u *domain.User) (*userDocument, error) {
	oid, err := objectID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:        oid,
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}, nil
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		Avatar:    d.Avatar,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	oid, err := objectID(l.ID)
	if err != nil {
		return nil, err
	}
	images := l.ImageURLs
	if images == nil {
		images = []string{}
	}
	return &listingDocument{
		ID:            oid,
		Name:          l.Name,
		Description:   l.Description,
		Address:       l.Address,
		RegularPrice:  l.RegularPrice,
		DiscountPrice: l.DiscountPrice,
		Bathrooms:     l.Bathrooms,
		Bedrooms:      l.Bedrooms,
		Furnished:     l.Furnished,
		Parking:       l.Parking,
		Type:          l.Type,
		Offer:         l.Offer,
		ImageURLs:     images,
		UserRef:       l.UserRef,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}, nil
}

func (d *listingDocument) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:            d.ID.Hex(),
		Name:          d.Name,
		Description:   d.Description,
		Address:       d.Address,
		RegularPrice:  d.RegularPrice,
		DiscountPrice: d.DiscountPrice,
		Bathrooms:     d.Bathrooms,
		Bedrooms:      d.Bedrooms,
		Furnished:     d.Furnished,
		Parking:       d.Parking,
		Type:          d.Type,
		Offer:         d.Offer,
		ImageURLs:     d.ImageURLs,
		UserRef:       d.UserRef,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out
}
