package analytics

import (
	"context"
	"time"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

// CostBreakdown prices the filtered window through the dual-tariff schedule.
// Only active energy is priced: any kind restriction in the filter is
// replaced with active. Consumption is summed per (hour, day-of-week) cell,
// each cell classified as peak or off-peak, and the two totals reconciled so
// peak kWh + off-peak kWh always equals total kWh.
func (s *Service) CostBreakdown(ctx context.Context, f domain.QueryFilter) (*domain.CostReport, error) {
	defer s.observe("cost_breakdown", time.Now())

	f = f.WithKind(domain.KindActive)

	var report domain.CostReport
	if s.cached(ctx, "cost_breakdown:"+f.CacheKey(), &report) {
		return &report, nil
	}

	cells, err := s.repo.SumByHourAndDay(ctx, f)
	if err != nil {
		return nil, err
	}

	report = domain.NewCostReport(s.tariff, cells)
	s.store(ctx, "cost_breakdown:"+f.CacheKey(), report)
	return &report, nil
}
