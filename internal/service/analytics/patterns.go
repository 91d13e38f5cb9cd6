package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/observability/telemetry"
	"github.com/seu-repo/sigem-energia/internal/ports"
)

// HourlyPattern returns mean/spread statistics per (kind, hour-of-day) over
// the filtered readings.
func (s *Service) HourlyPattern(ctx context.Context, f domain.QueryFilter) ([]domain.HourlyPatternEntry, error) {
	defer s.observe("hourly_pattern", time.Now())

	var entries []domain.HourlyPatternEntry
	if s.cached(ctx, "hourly_pattern:"+f.CacheKey(), &entries) {
		return entries, nil
	}

	entries, err := s.repo.PatternByHour(ctx, f)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "hourly_pattern:"+f.CacheKey(), entries)
	return entries, nil
}

// DailyPattern returns volume statistics per (kind, day-of-week) over the
// filtered readings.
func (s *Service) DailyPattern(ctx context.Context, f domain.QueryFilter) ([]domain.DailyPatternEntry, error) {
	defer s.observe("daily_pattern", time.Now())

	var entries []domain.DailyPatternEntry
	if s.cached(ctx, "daily_pattern:"+f.CacheKey(), &entries) {
		return entries, nil
	}

	entries, err := s.repo.PatternByDayOfWeek(ctx, f)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "daily_pattern:"+f.CacheKey(), entries)
	return entries, nil
}

// Heatmap returns a complete 24x7 average matrix per measurement kind. Any
// kind restriction in the filter is ignored: both kinds are always computed,
// and every cell is populated, 0.0 where no readings fall.
func (s *Service) Heatmap(ctx context.Context, f domain.QueryFilter) ([]domain.Heatmap, error) {
	defer s.observe("heatmap", time.Now())

	f = f.WithAllKinds()

	var maps []domain.Heatmap
	if s.cached(ctx, "heatmap:"+f.CacheKey(), &maps) {
		return maps, nil
	}

	cells, err := s.repo.SumByHourAndDay(ctx, f)
	if err != nil {
		return nil, err
	}

	maps = make([]domain.Heatmap, 0, len(domain.AllKinds))
	for _, kind := range domain.AllKinds {
		maps = append(maps, domain.NewHeatmap(kind, cells))
	}

	s.store(ctx, "heatmap:"+f.CacheKey(), maps)
	return maps, nil
}

// cached loads a cached section into dest. Cache failures degrade to a miss.
func (s *Service) cached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil || raw == "" {
		if err != nil && !errors.Is(err, ports.ErrCacheMiss) {
			s.log.Warn("Cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		}
		telemetry.CacheHitsTotal.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.log.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		telemetry.CacheHitsTotal.WithLabelValues("miss").Inc()
		return false
	}
	telemetry.CacheHitsTotal.WithLabelValues("hit").Inc()
	return true
}

// store writes a computed section to the cache. Best effort.
func (s *Service) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.ttl); err != nil {
		s.log.Warn("Failed to cache analytics section", zap.String("key", key), zap.Error(err))
	}
}
