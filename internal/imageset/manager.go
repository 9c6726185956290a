// Package imageset turns a client-submitted working set of listing images into the
// ordered list of URLs that is persisted with the listing. Position 0 is the cover.
package imageset

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	DefaultMaxImages     = 6
	DefaultMaxImageBytes = 2 << 20
	DefaultUploadTimeout = 30 * time.Second
)

// UploadResolver persists a local image and returns its remote form.
type UploadResolver interface {
	Resolve(ctx context.Context, img domain.LocalImage) (domain.RemoteImage, error)
}

// UploadResolverFunc adapts a function to UploadResolver.
type UploadResolverFunc func(ctx context.Context, img domain.LocalImage) (domain.RemoteImage, error)

func (f UploadResolverFunc) Resolve(ctx context.Context, img domain.LocalImage) (domain.RemoteImage, error) {
	return f(ctx, img)
}

type Config struct {
	MaxImages     int
	MaxImageBytes int64
	UploadTimeout time.Duration
}

// Manager validates and resolves image sets. It never uploads by itself and never reorders.
type Manager struct {
	maxImages     int
	maxImageBytes int64
	uploadTimeout time.Duration
	logger        *logger.Logger
}

func NewManager(cfg Config, log *logger.Logger) *Manager {
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = DefaultMaxImages
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = DefaultUploadTimeout
	}
	return &Manager{
		maxImages:     cfg.MaxImages,
		maxImageBytes: cfg.MaxImageBytes,
		uploadTimeout: cfg.UploadTimeout,
		logger:        log.Named("ImageSetManager"),
	}
}

func (m *Manager) MaxImages() int { return m.maxImages }

// Validate checks the count invariant for a set of n images.
func (m *Manager) Validate(n int) error {
	if n == 0 {
		return domain.ErrEmptySet
	}
	if n > m.maxImages {
		return fmt.Errorf("%w: %d images, at most %d allowed", domain.ErrTooManyImages, n, m.maxImages)
	}
	return nil
}

// Normalize resolves every local entry through resolver and returns the URLs in
// submitted order. It is all-or-nothing: any failed upload yields ErrUnresolvedLocal
// and no URLs. Repeated URLs keep their first position only. A handle names one
// staged file: entries sharing a handle share one upload.
func (m *Manager) Normalize(ctx context.Context, candidates []domain.ImageRef, resolver UploadResolver) ([]string, error) {
	if err := m.Validate(len(candidates)); err != nil {
		return nil, err
	}
	if err := m.precheck(candidates, resolver); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(candidates))
	resolved := make(map[string]string)
	for i, c := range candidates {
		switch img := c.(type) {
		case domain.RemoteImage:
			urls = append(urls, img.URL)
		case domain.LocalImage:
			if url, ok := resolved[img.Handle]; ok {
				urls = append(urls, url)
				continue
			}
			remote, err := m.resolve(ctx, resolver, img)
			if err != nil {
				m.logger.Warn("Local image could not be resolved, aborting image set",
					zap.Int("position", i), zap.String("handle", img.Handle), zap.Error(err))
				return nil, fmt.Errorf("%w: position %d (%s): %v", domain.ErrUnresolvedLocal, i, img.Handle, err)
			}
			resolved[img.Handle] = remote.URL
			urls = append(urls, remote.URL)
		}
	}
	return dedupe(urls), nil
}

func (m *Manager) precheck(candidates []domain.ImageRef, resolver UploadResolver) error {
	staged := make(map[string][]byte)
	for i, c := range candidates {
		switch img := c.(type) {
		case domain.RemoteImage:
			if img.URL == "" {
				return fmt.Errorf("%w: image at position %d has an empty url", domain.ErrInvalidInput, i)
			}
		case domain.LocalImage:
			if img.Handle == "" {
				return fmt.Errorf("%w: local image at position %d has no file handle", domain.ErrInvalidInput, i)
			}
			if prev, ok := staged[img.Handle]; ok && !bytes.Equal(prev, img.Data) {
				return fmt.Errorf("%w: handle %q names two different files", domain.ErrInvalidInput, img.Handle)
			}
			staged[img.Handle] = img.Data
			size := img.Size
			if n := int64(len(img.Data)); n > size {
				size = n
			}
			if size > m.maxImageBytes {
				return fmt.Errorf("%w: image at position %d is %d bytes, limit %d", domain.ErrImageTooLarge, i, size, m.maxImageBytes)
			}
			if len(img.Data) == 0 {
				return fmt.Errorf("%w: image at position %d has no content", domain.ErrUnresolvedLocal, i)
			}
			if resolver == nil {
				return fmt.Errorf("%w: no upload target configured", domain.ErrUnresolvedLocal)
			}
		default:
			return fmt.Errorf("%w: unknown image reference at position %d", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// resolve bounds a single upload by the configured timeout even if the resolver
// ignores its context.
func (m *Manager) resolve(ctx context.Context, resolver UploadResolver, img domain.LocalImage) (domain.RemoteImage, error) {
	ctx, cancel := context.WithTimeout(ctx, m.uploadTimeout)
	defer cancel()

	type result struct {
		remote domain.RemoteImage
		err    error
	}
	done := make(chan result, 1)
	go func() {
		remote, err := resolver.Resolve(ctx, img)
		done <- result{remote, err}
	}()

	select {
	case <-ctx.Done():
		return domain.RemoteImage{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return domain.RemoteImage{}, r.err
		}
		if r.remote.URL == "" {
			return domain.RemoteImage{}, fmt.Errorf("upload returned an empty url")
		}
		return r.remote, nil
	}
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Remove deletes the entry at position i and re-checks the count invariant.
func (m *Manager) Remove(seq []domain.ImageRef, i int) ([]domain.ImageRef, error) {
	out, err := Remove(seq, i)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(len(out)); err != nil {
		return nil, err
	}
	return out, nil
}
