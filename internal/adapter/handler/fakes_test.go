package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/imageset"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/metrics"
	"github.com/kimamovic21/real-estate-marketplace/internal/usecase"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
		if existing.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type memListings struct {
	mu       sync.Mutex
	seq      int
	listings map[string]*domain.Listing
}

func newMemListings() *memListings { return &memListings{listings: map[string]*domain.Listing{}} }

func clone(l *domain.Listing) *domain.Listing {
	cp := *l
	cp.ImageURLs = append([]string(nil), l.ImageURLs...)
	return &cp
}

func (m *memListings) Create(_ context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	l.ID = fmt.Sprintf("l-%d", m.seq)
	l.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	m.listings[l.ID] = clone(l)
	return nil
}

func (m *memListings) Update(_ context.Context, l *domain.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[l.ID]; !ok {
		return domain.ErrListingNotFound
	}
	m.listings[l.ID] = clone(l)
	return nil
}

func (m *memListings) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(m.listings, id)
	return nil
}

func (m *memListings) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return clone(l), nil
}

func (m *memListings) FindByFilter(_ context.Context, f domain.ListingFilter) ([]*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Listing
	for _, l := range m.listings {
		if f.SearchTerm != "" && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(f.SearchTerm)) {
			continue
		}
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		out = append(out, clone(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memListings) FindByOwner(_ context.Context, userID string) ([]*domain.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Listing
	for _, l := range m.listings {
		if l.UserRef == userID {
			out = append(out, clone(l))
		}
	}
	return out, nil
}

type testServer struct {
	handler  *Handler
	users    *memUsers
	listings *memListings
}

// newTestServer wires the real usecases over in-memory stores. Local images
// resolve to "cdn/<handle>.jpg".
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	tokens, err := auth.NewTokenService("handler-test-secret", time.Hour)
	require.NoError(t, err)

	users := newMemUsers()
	listings := newMemListings()
	resolver := imageset.UploadResolverFunc(func(_ context.Context, img domain.LocalImage) (domain.RemoteImage, error) {
		return domain.RemoteImage{URL: "cdn/" + img.Handle + ".jpg"}, nil
	})

	h := New(Deps{
		Auth: usecase.NewAuthUsecase(users, tokens, nil, nil, log),
		Listings: usecase.NewListingUsecase(usecase.ListingDeps{
			Repo:    listings,
			Users:   users,
			Guard:   usecase.NewOwnershipGuard(tokens, listings, log),
			Images:  imageset.NewManager(imageset.Config{MaxImages: 6, MaxImageBytes: 1024}, log),
			Uploads: resolver,
		}, log),
		Users:   usecase.NewUserUsecase(users, listings, log),
		Tokens:  tokens,
		Limits:  UploadLimits{MaxImages: 6, MaxImageBytes: 1024},
		Metrics: metrics.NewMetricsManager("estate_test"),
	}, log)

	return &testServer{handler: h, users: users, listings: listings}
}
