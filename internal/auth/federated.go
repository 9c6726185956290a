package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
)

// IdentityAssertion is the profile an external identity provider vouched for.
type IdentityAssertion struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// IdentityAssertionVerifier checks a federated assertion before the service trusts it.
// Provider-specific signature checks belong in implementations of this interface.
type IdentityAssertionVerifier interface {
	Verify(ctx context.Context, assertion IdentityAssertion) (IdentityAssertion, error)
}

// TrustedAssertionVerifier accepts assertions already verified by the client-side
// provider SDK and only checks their shape.
type TrustedAssertionVerifier struct{}

func (TrustedAssertionVerifier) Verify(_ context.Context, a IdentityAssertion) (IdentityAssertion, error) {
	a.Name = strings.TrimSpace(a.Name)
	// Email is kept byte-for-byte: lookups are case-sensitive as stored.
	if a.Email == "" || !strings.Contains(a.Email, "@") {
		return IdentityAssertion{}, fmt.Errorf("%w: assertion email is missing or malformed", domain.ErrInvalidInput)
	}
	if a.Name == "" {
		return IdentityAssertion{}, fmt.Errorf("%w: assertion name is missing", domain.ErrInvalidInput)
	}
	return a, nil
}
