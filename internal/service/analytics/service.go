package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/observability/telemetry"
	"github.com/seu-repo/sigem-energia/internal/ports"
	"github.com/seu-repo/sigem-energia/pkg/config"
)

// Service answers analytical queries over the stored series. Every method is
// a pure function of (filter, store contents): no cross-request mutable state.
type Service struct {
	repo   ports.ReadingRepository
	cache  ports.Cache
	tariff *domain.TariffConfig
	pages  config.PaginationConfig
	ttl    time.Duration
	log    *zap.Logger
}

func NewService(repo ports.ReadingRepository, cache ports.Cache, tariff *domain.TariffConfig, cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		tariff: tariff,
		pages:  cfg.Pagination,
		ttl:    cfg.Cache.AnalyticsTTL,
		log:    log,
	}
}

// Tariff exposes the immutable pricing configuration for the response
// envelope.
func (s *Service) Tariff() *domain.TariffConfig {
	return s.tariff
}

// FetchReadings returns one page of data for the filter: individual readings
// annotated with hour/day-of-week in raw mode, aggregated buckets otherwise.
// The total count follows the granularity: matching rows in raw mode,
// distinct (bucket, kind) groups in bucketed mode.
func (s *Service) FetchReadings(ctx context.Context, f domain.QueryFilter, g domain.Granularity, page, perPage int) (interface{}, domain.Pagination, error) {
	if err := s.validatePage(page, perPage); err != nil {
		return nil, domain.Pagination{}, err
	}
	defer s.observe("readings", time.Now())

	offset := (page - 1) * perPage

	if g == domain.GranularityRaw {
		readings, err := s.repo.FindReadings(ctx, f, perPage, offset)
		if err != nil {
			return nil, domain.Pagination{}, err
		}
		total, err := s.repo.CountReadings(ctx, f)
		if err != nil {
			return nil, domain.Pagination{}, err
		}

		points := make([]domain.ReadingPoint, 0, len(readings))
		for _, r := range readings {
			points = append(points, domain.NewReadingPoint(r))
		}
		return points, domain.NewPagination(page, perPage, total), nil
	}

	buckets, err := s.repo.AggregateBuckets(ctx, f, g, perPage, offset)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	total, err := s.repo.CountBuckets(ctx, f, g)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return buckets, domain.NewPagination(page, perPage, total), nil
}

// Stats returns the complete bucket summary for a filter, unpaginated. Used
// for the optional stats section of the response envelope.
func (s *Service) Stats(ctx context.Context, f domain.QueryFilter, g domain.Granularity) ([]domain.AggregatedBucket, error) {
	defer s.observe("stats", time.Now())
	return s.repo.AggregateBuckets(ctx, f, g, s.pages.MaxPerPage, 0)
}

func (s *Service) validatePage(page, perPage int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrMalformedInput, page)
	}
	if perPage < s.pages.MinPerPage || perPage > s.pages.MaxPerPage {
		return fmt.Errorf("%w: per_page must be between %d and %d, got %d",
			domain.ErrMalformedInput, s.pages.MinPerPage, s.pages.MaxPerPage, perPage)
	}
	return nil
}

func (s *Service) observe(section string, start time.Time) {
	telemetry.QueryLatency.WithLabelValues(section).Observe(time.Since(start).Seconds())
}
