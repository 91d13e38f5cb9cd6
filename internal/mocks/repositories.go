package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

type readingKey struct {
	meterID string
	ts      int64
	kind    domain.MeasurementKind
}

// MockReadingRepository is a mock implementation of ReadingRepository. When a
// Func field is nil the call falls through to an in-memory store keyed on
// (muid, timestamp, measurement_type), matching the upsert semantics of the
// real table.
type MockReadingRepository struct {
	mu   sync.Mutex
	data map[readingKey]domain.MeterReading

	UpsertFunc             func(ctx context.Context, readings []domain.MeterReading) (int64, error)
	MaxTimestampFunc       func(ctx context.Context, meterID string, kind domain.MeasurementKind) (*time.Time, error)
	FindReadingsFunc       func(ctx context.Context, f domain.QueryFilter, limit, offset int) ([]domain.MeterReading, error)
	CountReadingsFunc      func(ctx context.Context, f domain.QueryFilter) (int64, error)
	AggregateBucketsFunc   func(ctx context.Context, f domain.QueryFilter, g domain.Granularity, limit, offset int) ([]domain.AggregatedBucket, error)
	CountBucketsFunc       func(ctx context.Context, f domain.QueryFilter, g domain.Granularity) (int64, error)
	PatternByHourFunc      func(ctx context.Context, f domain.QueryFilter) ([]domain.HourlyPatternEntry, error)
	PatternByDayOfWeekFunc func(ctx context.Context, f domain.QueryFilter) ([]domain.DailyPatternEntry, error)
	SumByHourAndDayFunc    func(ctx context.Context, f domain.QueryFilter) ([]domain.HeatmapCell, error)
}

func NewMockReadingRepository() *MockReadingRepository {
	return &MockReadingRepository{
		data: make(map[readingKey]domain.MeterReading),
	}
}

func (m *MockReadingRepository) Upsert(ctx context.Context, readings []domain.MeterReading) (int64, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, readings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range readings {
		m.data[readingKey{r.MeterID, r.Timestamp.UTC().UnixNano(), r.Kind}] = r
	}
	return int64(len(readings)), nil
}

func (m *MockReadingRepository) MaxTimestamp(ctx context.Context, meterID string, kind domain.MeasurementKind) (*time.Time, error) {
	if m.MaxTimestampFunc != nil {
		return m.MaxTimestampFunc(ctx, meterID, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var max *time.Time
	for k, r := range m.data {
		if k.meterID != meterID || k.kind != kind {
			continue
		}
		if max == nil || r.Timestamp.After(*max) {
			ts := r.Timestamp
			max = &ts
		}
	}
	return max, nil
}

func (m *MockReadingRepository) FindReadings(ctx context.Context, f domain.QueryFilter, limit, offset int) ([]domain.MeterReading, error) {
	if m.FindReadingsFunc != nil {
		return m.FindReadingsFunc(ctx, f, limit, offset)
	}
	all := m.matching(f)
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockReadingRepository) CountReadings(ctx context.Context, f domain.QueryFilter) (int64, error) {
	if m.CountReadingsFunc != nil {
		return m.CountReadingsFunc(ctx, f)
	}
	return int64(len(m.matching(f))), nil
}

func (m *MockReadingRepository) AggregateBuckets(ctx context.Context, f domain.QueryFilter, g domain.Granularity, limit, offset int) ([]domain.AggregatedBucket, error) {
	if m.AggregateBucketsFunc != nil {
		return m.AggregateBucketsFunc(ctx, f, g, limit, offset)
	}
	return nil, nil
}

func (m *MockReadingRepository) CountBuckets(ctx context.Context, f domain.QueryFilter, g domain.Granularity) (int64, error) {
	if m.CountBucketsFunc != nil {
		return m.CountBucketsFunc(ctx, f, g)
	}
	return 0, nil
}

func (m *MockReadingRepository) PatternByHour(ctx context.Context, f domain.QueryFilter) ([]domain.HourlyPatternEntry, error) {
	if m.PatternByHourFunc != nil {
		return m.PatternByHourFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockReadingRepository) PatternByDayOfWeek(ctx context.Context, f domain.QueryFilter) ([]domain.DailyPatternEntry, error) {
	if m.PatternByDayOfWeekFunc != nil {
		return m.PatternByDayOfWeekFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockReadingRepository) SumByHourAndDay(ctx context.Context, f domain.QueryFilter) ([]domain.HeatmapCell, error) {
	if m.SumByHourAndDayFunc != nil {
		return m.SumByHourAndDayFunc(ctx, f)
	}
	return nil, nil
}

// StoredCount returns the number of distinct (muid, timestamp, kind) rows in
// the in-memory store.
func (m *MockReadingRepository) StoredCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Stored returns the stored row for a key, if present.
func (m *MockReadingRepository) Stored(meterID string, ts time.Time, kind domain.MeasurementKind) (domain.MeterReading, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[readingKey{meterID, ts.UTC().UnixNano(), kind}]
	return r, ok
}

func (m *MockReadingRepository) matching(f domain.QueryFilter) []domain.MeterReading {
	m.mu.Lock()
	defer m.mu.Unlock()
	kinds := make(map[domain.MeasurementKind]bool)
	for _, k := range f.Kinds() {
		kinds[k] = true
	}
	var out []domain.MeterReading
	for _, r := range m.data {
		if !kinds[r.Kind] {
			continue
		}
		if f.Start != nil && r.Timestamp.Before(*f.Start) {
			continue
		}
		if f.End != nil && r.Timestamp.After(*f.End) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}
