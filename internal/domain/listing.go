package domain

import (
	"fmt"
	"strings"
	"time"
)

type ListingType string

const (
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

func (t ListingType) IsValid() bool {
	return t == TypeSale || t == TypeRent
}

// Listing is a property advertisement. ImageURLs[0] is the cover image.
type Listing struct {
	ID            string      `json:"_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	RegularPrice  float64     `json:"regularPrice"`
	DiscountPrice float64     `json:"discountPrice"`
	Bathrooms     int         `json:"bathrooms"`
	Bedrooms      int         `json:"bedrooms"`
	Furnished     bool        `json:"furnished"`
	Parking       bool        `json:"parking"`
	Type          ListingType `json:"type"`
	Offer         bool        `json:"offer"`
	ImageURLs     []string    `json:"imageUrls"`
	UserRef       string      `json:"userRef"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Cover returns the cover image URL, or "" when the listing has no images.
func (l *Listing) Cover() string {
	if l == nil || len(l.ImageURLs) == 0 {
		return ""
	}
	return l.ImageURLs[0]
}

// ListingInput is the client-submitted content of a create or update.
// Images is the working set in the order chosen by the client.
type ListingInput struct {
	Name          string
	Description   string
	Address       string
	RegularPrice  float64
	DiscountPrice float64
	Bathrooms     int
	Bedrooms      int
	Furnished     bool
	Parking       bool
	Type          ListingType
	Offer         bool
	Images        []ImageRef
}

// Validate checks the field-level invariants. Image-set rules are enforced by imageset.Manager.
func (in *ListingInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	case strings.TrimSpace(in.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	case strings.TrimSpace(in.Address) == "":
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	case !in.Type.IsValid():
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, TypeSale, TypeRent)
	case in.RegularPrice <= 0:
		return fmt.Errorf("%w: regular price must be positive", ErrInvalidInput)
	case in.Bedrooms < 0 || in.Bathrooms < 0:
		return fmt.Errorf("%w: bedrooms and bathrooms cannot be negative", ErrInvalidInput)
	case in.Offer && (in.DiscountPrice < 0 || in.DiscountPrice >= in.RegularPrice):
		return fmt.Errorf("%w: discount price must be lower than regular price", ErrInvalidInput)
	}
	return nil
}

// Apply copies the input fields onto l. ImageURLs are set separately once resolved.
func (in *ListingInput) Apply(l *Listing) {
	l.Name = in.Name
	l.Description = in.Description
	l.Address = in.Address
	l.RegularPrice = in.RegularPrice
	l.DiscountPrice = in.DiscountPrice
	l.Bathrooms = in.Bathrooms
	l.Bedrooms = in.Bedrooms
	l.Furnished = in.Furnished
	l.Parking = in.Parking
	l.Type = in.Type
	l.Offer = in.Offer
	if !in.Offer {
		l.DiscountPrice = 0
	}
}

// ListingFilter holds the search parameters of GET /api/listing/get.
// Nil booleans mean "any".
type ListingFilter struct {
	SearchTerm string
	Offer      *bool
	Furnished  *bool
	Parking    *bool
	Type       ListingType // empty means sale and rent
	SortBy     string      // "createdAt" or "regularPrice"
	SortOrder  string      // "asc" or "desc"
	Limit      int64
	StartIndex int64
}

const (
	DefaultSearchLimit = 9
	MaxSearchLimit     = 50
)
