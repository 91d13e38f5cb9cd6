package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/ports"
)

type ReadingRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReadingRepository(db *gorm.DB, log *zap.Logger) ports.ReadingRepository {
	return &ReadingRepository{
		db:  db,
		log: log,
	}
}

// Upsert persists readings with INSERT ... ON CONFLICT DO UPDATE keyed on
// (muid, timestamp, measurement_type). Single-row upsert is the unit of
// atomicity: concurrent readers see either the pre- or post-upsert row.
func (r *ReadingRepository) Upsert(ctx context.Context, readings []domain.MeterReading) (int64, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "muid"},
			{Name: "timestamp"},
			{Name: "measurement_type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"reading", "quality"}),
	}).Create(&readings)

	if res.Error != nil {
		return 0, fmt.Errorf("%w: upsert failed: %v", domain.ErrStoreUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}

// MaxTimestamp returns the sync watermark for one series, nil when the series
// has never been persisted. MAX over an empty series yields SQL NULL, so the
// scan target must be a NullTime, not a *time.Time.
func (r *ReadingRepository) MaxTimestamp(ctx context.Context, meterID string, kind domain.MeasurementKind) (*time.Time, error) {
	var max sql.NullTime
	err := r.db.WithContext(ctx).
		Model(&domain.MeterReading{}).
		Where("muid = ? AND measurement_type = ?", meterID, kind).
		Select("MAX(timestamp)").
		Scan(&max).Error
	if err != nil {
		return nil, fmt.Errorf("%w: max timestamp query failed: %v", domain.ErrStoreUnavailable, err)
	}
	if !max.Valid {
		return nil, nil
	}
	return &max.Time, nil
}

func (r *ReadingRepository) FindReadings(ctx context.Context, f domain.QueryFilter, limit, offset int) ([]domain.MeterReading, error) {
	var readings []domain.MeterReading
	err := r.filtered(ctx, f).
		Order("timestamp, measurement_type").
		Limit(limit).
		Offset(offset).
		Find(&readings).Error
	if err != nil {
		return nil, fmt.Errorf("%w: readings query failed: %v", domain.ErrStoreUnavailable, err)
	}
	return readings, nil
}

func (r *ReadingRepository) CountReadings(ctx context.Context, f domain.QueryFilter) (int64, error) {
	var count int64
	if err := r.filtered(ctx, f).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: readings count failed: %v", domain.ErrStoreUnavailable, err)
	}
	return count, nil
}

// AggregateBuckets groups readings into calendar-aligned buckets via
// date_trunc, one group per (bucket, measurement kind).
func (r *ReadingRepository) AggregateBuckets(ctx context.Context, f domain.QueryFilter, g domain.Granularity, limit, offset int) ([]domain.AggregatedBucket, error) {
	grain, err := truncArg(g)
	if err != nil {
		return nil, err
	}

	var buckets []domain.AggregatedBucket
	err = r.filtered(ctx, f).
		Select(fmt.Sprintf(`date_trunc('%s', timestamp) AS bucket_start,
			measurement_type AS kind,
			SUM(reading) AS sum,
			COUNT(*) AS count,
			AVG(reading) AS mean,
			MIN(reading) AS min,
			MAX(reading) AS max`, grain)).
		Group("bucket_start, measurement_type").
		Order("bucket_start, measurement_type").
		Limit(limit).
		Offset(offset).
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("%w: bucket aggregation failed: %v", domain.ErrStoreUnavailable, err)
	}
	return buckets, nil
}

// CountBuckets counts distinct (bucket, measurement kind) groups; bucketed
// pagination runs over groups, not raw rows.
func (r *ReadingRepository) CountBuckets(ctx context.Context, f domain.QueryFilter, g domain.Granularity) (int64, error) {
	grain, err := truncArg(g)
	if err != nil {
		return 0, err
	}

	var count int64
	err = r.filtered(ctx, f).
		Select(fmt.Sprintf("COUNT(DISTINCT (date_trunc('%s', timestamp), measurement_type))", grain)).
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: bucket count failed: %v", domain.ErrStoreUnavailable, err)
	}
	return count, nil
}

func (r *ReadingRepository) PatternByHour(ctx context.Context, f domain.QueryFilter) ([]domain.HourlyPatternEntry, error) {
	var entries []domain.HourlyPatternEntry
	// STDDEV_POP so a single-sample group reports 0, not NULL.
	err := r.filtered(ctx, f).
		Select(`measurement_type AS kind,
			EXTRACT(HOUR FROM timestamp)::int AS hour,
			AVG(reading) AS mean,
			COALESCE(STDDEV_POP(reading), 0) AS std_dev,
			MIN(reading) AS min,
			MAX(reading) AS max,
			COUNT(*) AS count`).
		Group("measurement_type, hour").
		Order("measurement_type, hour").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: hourly pattern query failed: %v", domain.ErrStoreUnavailable, err)
	}
	return entries, nil
}

func (r *ReadingRepository) PatternByDayOfWeek(ctx context.Context, f domain.QueryFilter) ([]domain.DailyPatternEntry, error) {
	var entries []domain.DailyPatternEntry
	// EXTRACT(DOW ...) matches time.Weekday numbering: 0=Sunday..6=Saturday.
	err := r.filtered(ctx, f).
		Select(`measurement_type AS kind,
			EXTRACT(DOW FROM timestamp)::int AS day_of_week,
			SUM(reading) AS sum,
			COUNT(*) AS count,
			AVG(reading) AS mean`).
		Group("measurement_type, day_of_week").
		Order("measurement_type, day_of_week").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: daily pattern query failed: %v", domain.ErrStoreUnavailable, err)
	}
	return entries, nil
}

func (r *ReadingRepository) SumByHourAndDay(ctx context.Context, f domain.QueryFilter) ([]domain.HeatmapCell, error) {
	var cells []domain.HeatmapCell
	err := r.filtered(ctx, f).
		Select(`measurement_type AS kind,
			EXTRACT(HOUR FROM timestamp)::int AS hour,
			EXTRACT(DOW FROM timestamp)::int AS day_of_week,
			SUM(reading) AS sum,
			AVG(reading) AS mean,
			COUNT(*) AS count`).
		Group("measurement_type, hour, day_of_week").
		Order("measurement_type, hour, day_of_week").
		Scan(&cells).Error
	if err != nil {
		return nil, fmt.Errorf("%w: hour/day aggregation failed: %v", domain.ErrStoreUnavailable, err)
	}
	return cells, nil
}

// filtered applies the shared QueryFilter semantics to a base query.
func (r *ReadingRepository) filtered(ctx context.Context, f domain.QueryFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.MeterReading{})

	if f.Start != nil {
		q = q.Where("timestamp >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("timestamp <= ?", *f.End)
	}
	if f.Kind != domain.SelectBoth {
		q = q.Where("measurement_type = ?", string(f.Kind))
	}
	switch f.Days {
	case domain.WeekdaysOnly:
		q = q.Where("EXTRACT(ISODOW FROM timestamp) BETWEEN 1 AND 5")
	case domain.WeekendsOnly:
		q = q.Where("EXTRACT(ISODOW FROM timestamp) IN (6, 7)")
	}

	return q
}

func truncArg(g domain.Granularity) (string, error) {
	switch g {
	case domain.GranularityHourly:
		return "hour", nil
	case domain.GranularityDaily:
		return "day", nil
	case domain.GranularityWeekly:
		return "week", nil
	default:
		return "", fmt.Errorf("%w: granularity %q is not bucketed", domain.ErrMalformedInput, g)
	}
}
