package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, now *time.Time) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret", time.Hour, WithClock(func() time.Time { return *now }))
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, &now)

	token, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenService_ExpiredTokenIsInvalid(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService(t, &now)

	token, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	now = now.Add(time.Hour + time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(t, &now)
	other, err := NewTokenService("another-secret", time.Hour)
	require.NoError(t, err)

	token, _, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsMalformedAndUnsignedTokens(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(t, &now)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	noneToken, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c", noneToken} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenService_RejectsTokenWithoutExpiry(t *testing.T) {
	now := time.Now()
	svc := newTestTokenService(t, &now)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_CookieAttributes(t *testing.T) {
	svc, err := NewTokenService("s", time.Hour, WithSecureCookie(true))
	require.NoError(t, err)

	exp := time.Now().Add(time.Hour)
	c := svc.Cookie("tok", exp)
	assert.Equal(t, CookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)

	revoked := svc.Revoke()
	assert.Equal(t, CookieName, revoked.Name)
	assert.Empty(t, revoked.Value)
	assert.Negative(t, revoked.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, TokenFromRequest(req))
	req.AddCookie(c)
	assert.Equal(t, "tok", TokenFromRequest(req))
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)
	assert.NoError(t, VerifyPassword(hash, "pw123"))
	assert.Error(t, VerifyPassword(hash, "wrong"))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestTrustedAssertionVerifier(t *testing.T) {
	v := TrustedAssertionVerifier{}

	got, err := v.Verify(context.Background(), IdentityAssertion{Name: "  Alice Smith ", Email: "Alice@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", got.Name)
	assert.Equal(t, "Alice@Example.com", got.Email)

	_, err = v.Verify(context.Background(), IdentityAssertion{Name: "Alice"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = v.Verify(context.Background(), IdentityAssertion{Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
