// Package detail loads the full record of a single collection point and keeps
// the detail screen's navigation-tagged state.
package detail

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"coleta/internal/model"

	"github.com/patrickmn/go-cache"
)

// Fetcher is the backend side of a detail lookup.
type Fetcher interface {
	FetchDetail(ctx context.Context, id int64) (model.PointDetail, error)
}

// ImageFetcher downloads a point photo.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (image.Image, error)
}

// Service fetches point details. Every call goes to the backend.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService creates a detail service.
func NewService(fetcher Fetcher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{fetcher: fetcher, logger: logger}
}

// FetchDetail returns the record of point id.
func (s *Service) FetchDetail(ctx context.Context, id int64) (model.PointDetail, error) {
	d, err := s.fetcher.FetchDetail(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "point detail fetch failed", slog.Int64("point", id), slog.Any("error", err))
		return model.PointDetail{}, fmt.Errorf("failed to load point %d: %w", id, err)
	}
	s.logger.DebugContext(ctx, "point detail loaded", slog.Int64("point", id), slog.Int("items", len(d.Items)))
	return d, nil
}

// RenderFunc turns an image into terminal text of the given size.
type RenderFunc func(img image.Image, width, height int) string

// Photos renders point photos and keeps the rendered text for a while.
type Photos struct {
	fetcher ImageFetcher
	render  RenderFunc
	cache   *cache.Cache
}

// NewPhotos creates a photo renderer whose output lives for ttl.
func NewPhotos(fetcher ImageFetcher, render RenderFunc, ttl time.Duration) *Photos {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Photos{
		fetcher: fetcher,
		render:  render,
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Art returns the rendered photo at url.
func (p *Photos) Art(ctx context.Context, url string, width, height int) (string, error) {
	key := fmt.Sprintf("%s@%dx%d", url, width, height)
	if cached, found := p.cache.Get(key); found {
		return cached.(string), nil
	}

	img, err := p.fetcher.FetchImage(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to load photo: %w", err)
	}
	art := p.render(img, width, height)
	p.cache.Set(key, art, cache.DefaultExpiration)
	return art, nil
}
