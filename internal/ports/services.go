package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

// ErrCacheMiss is returned by Cache.Get for keys that are absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// MeterSource is the upstream data port. The source exposes no filtering or
// pagination: every fetch returns the full series for a measurement kind.
type MeterSource interface {
	FetchAll(ctx context.Context, kind domain.MeasurementKind) ([]domain.MeterReading, error)
}

// Cache abstracts the response cache.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// IngestService runs sync cycles against the store.
type IngestService interface {
	// SyncAll fetches, normalizes, deduplicates and persists every
	// measurement kind; a fetch failure skips that kind only.
	SyncAll(ctx context.Context) (*domain.SyncReport, error)

	// Ready reports whether the first sync cycle has completed.
	Ready() bool
}

// AnalyticsService answers time-windowed analytical queries over the stored
// series. Every call is a pure function of (filter, store contents).
type AnalyticsService interface {
	FetchReadings(ctx context.Context, f domain.QueryFilter, g domain.Granularity, page, perPage int) (interface{}, domain.Pagination, error)
	HourlyPattern(ctx context.Context, f domain.QueryFilter) ([]domain.HourlyPatternEntry, error)
	DailyPattern(ctx context.Context, f domain.QueryFilter) ([]domain.DailyPatternEntry, error)
	Heatmap(ctx context.Context, f domain.QueryFilter) ([]domain.Heatmap, error)
	CostBreakdown(ctx context.Context, f domain.QueryFilter) (*domain.CostReport, error)
}
