package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"coleta/internal/filter"
	"coleta/internal/model"
)

// Catalog lists the material categories.
type Catalog interface {
	FetchItems(ctx context.Context) ([]model.Item, error)
}

// PointFetcher is the backend side of a point query.
type PointFetcher interface {
	QueryPoints(ctx context.Context, region model.RegionQuery, itemIDs []int64) ([]model.PointSummary, error)
}

// QueryService resolves the effective item set and queries points for a region.
// Every call issues exactly one request; nothing is deduplicated or cached.
type QueryService struct {
	fetcher  PointFetcher
	fallback []int64
	logger   *slog.Logger
}

// NewQueryService creates a query service. An empty fallback uses filter.DefaultFallback.
func NewQueryService(fetcher PointFetcher, fallback []int64, logger *slog.Logger) *QueryService {
	if len(fallback) == 0 {
		fallback = filter.DefaultFallback
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		fetcher:  fetcher,
		fallback: append([]int64(nil), fallback...),
		logger:   logger,
	}
}

// EffectiveItems returns the ids a query for selected would send.
func (s *QueryService) EffectiveItems(selected filter.Selection) []int64 {
	return selected.Effective(s.fallback)
}

// Query fetches the points of region matching selected.
func (s *QueryService) Query(ctx context.Context, region model.RegionQuery, selected filter.Selection) ([]model.PointSummary, error) {
	items := s.EffectiveItems(selected)
	s.logger.DebugContext(ctx, "querying points",
		slog.String("region", region.String()),
		slog.Any("items", items),
		slog.Bool("fallback", selected.Empty()),
	)

	points, err := s.fetcher.QueryPoints(ctx, region, items)
	if err != nil {
		return nil, fmt.Errorf("failed to query points for %s: %w", region, err)
	}
	return points, nil
}
