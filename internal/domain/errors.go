package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEmail is returned when a sign-up or profile update uses an email already on record.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrUserNotFound indicates no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates the password did not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a token with a bad signature, malformed payload or elapsed expiry.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthorized is the single public category for every authorization failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrListingNotFound indicates no listing exists with the given id.
	ErrListingNotFound = errors.New("listing not found")
	// ErrInvalidInput indicates a request that fails field validation.
	ErrInvalidInput = errors.New("invalid input data")

	// ErrEmptySet indicates an image set with no entries.
	ErrEmptySet = errors.New("image set is empty")
	// ErrTooManyImages indicates an image set above the configured maximum.
	ErrTooManyImages = errors.New("too many images")
	// ErrUnresolvedLocal indicates a local image that could not be turned into a remote URL.
	ErrUnresolvedLocal = errors.New("local image could not be resolved")
	// ErrImageTooLarge indicates a local image above the configured byte limit.
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrStorage wraps failures of the document store or another external collaborator.
	ErrStorage = errors.New("storage failure")
)

// Internal reasons behind ErrUnauthorized. They match ErrUnauthorized with errors.Is
// so the boundary reports one category, while logs keep the distinction.
var (
	ErrTokenRejected = fmt.Errorf("%w: missing or invalid token", ErrUnauthorized)
	ErrNotOwner      = fmt.Errorf("%w: caller does not own the resource", ErrUnauthorized)
)
