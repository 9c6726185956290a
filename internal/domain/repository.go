package domain

import "context"

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByFilter(ctx context.Context, filter ListingFilter) ([]*Listing, error)
	FindByOwner(ctx context.Context, userID string) ([]*Listing, error)
}

// ListingCache is an optional read-through cache in front of ListingRepository.FindByID.
// A miss returns (nil, nil).
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// EventPublisher emits domain events (listing.created and friends).
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ListingNotifier tells an owner about their new listing.
type ListingNotifier interface {
	SendListingCreatedEmail(toEmail, listingTitle string) error
}
