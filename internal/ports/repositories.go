package ports

import (
	"context"
	"time"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

// ReadingRepository is the store port shared by the sync engine and the
// analytics engine. All query methods apply the same QueryFilter semantics so
// every section of a response is computed over an identical slice of data.
type ReadingRepository interface {
	// Upsert persists readings keyed on (muid, timestamp, measurement_type).
	// On conflict the stored reading and quality are overwritten. Returns the
	// number of affected rows.
	Upsert(ctx context.Context, readings []domain.MeterReading) (int64, error)

	// MaxTimestamp returns the latest persisted timestamp for a series, or
	// nil when the series has never been synced.
	MaxTimestamp(ctx context.Context, meterID string, kind domain.MeasurementKind) (*time.Time, error)

	// FindReadings returns matching readings ordered by (timestamp,
	// measurement_type) with offset pagination.
	FindReadings(ctx context.Context, f domain.QueryFilter, limit, offset int) ([]domain.MeterReading, error)
	CountReadings(ctx context.Context, f domain.QueryFilter) (int64, error)

	// AggregateBuckets groups matching readings into calendar-aligned buckets
	// per measurement kind, ordered by (bucket_start, measurement_type).
	// Pagination applies to the distinct (bucket, kind) groups.
	AggregateBuckets(ctx context.Context, f domain.QueryFilter, g domain.Granularity, limit, offset int) ([]domain.AggregatedBucket, error)
	CountBuckets(ctx context.Context, f domain.QueryFilter, g domain.Granularity) (int64, error)

	// PatternByHour groups matching readings by (kind, hour-of-day) with
	// spread statistics. Population standard deviation: one sample yields 0.
	PatternByHour(ctx context.Context, f domain.QueryFilter) ([]domain.HourlyPatternEntry, error)

	// PatternByDayOfWeek groups matching readings by (kind, day-of-week).
	PatternByDayOfWeek(ctx context.Context, f domain.QueryFilter) ([]domain.DailyPatternEntry, error)

	// SumByHourAndDay returns sparse (kind, hour, day-of-week) cells with sum,
	// mean and count, feeding the heatmap and cost paths.
	SumByHourAndDay(ctx context.Context, f domain.QueryFilter) ([]domain.HeatmapCell, error)
}
