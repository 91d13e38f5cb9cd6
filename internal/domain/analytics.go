package domain

import (
	"math"
	"time"
)

// AggregatedBucket is one fixed-width time bucket of readings for one
// measurement kind, produced by the aggregation pipeline in non-raw mode.
type AggregatedBucket struct {
	BucketStart time.Time       `json:"bucket_start"`
	Kind        MeasurementKind `json:"measurement_type"`
	Sum         float64         `json:"sum"`
	Count       int64           `json:"count"`
	Mean        float64         `json:"mean"`
	Min         float64         `json:"min"`
	Max         float64         `json:"max"`
}

// HourlyPatternEntry carries spread statistics for one (kind, hour) group.
type HourlyPatternEntry struct {
	Kind   MeasurementKind `json:"measurement_type"`
	Hour   int             `json:"hour"`
	Mean   float64         `json:"mean"`
	StdDev float64         `json:"std_dev"`
	Min    float64         `json:"min"`
	Max    float64         `json:"max"`
	Count  int64           `json:"count"`
}

// DailyPatternEntry carries volume statistics for one (kind, day-of-week)
// group. DayOfWeek follows time.Weekday numbering: 0=Sunday..6=Saturday.
type DailyPatternEntry struct {
	Kind      MeasurementKind `json:"measurement_type"`
	DayOfWeek int             `json:"day_of_week"`
	Sum       float64         `json:"sum"`
	Count     int64           `json:"count"`
	Mean      float64         `json:"mean"`
}

// HeatmapCell aggregates readings falling into one (hour, day-of-week) slot.
type HeatmapCell struct {
	Kind      MeasurementKind
	Hour      int
	DayOfWeek int
	Sum       float64
	Mean      float64
	Count     int64
}

// Heatmap is a complete 24x7 average matrix for one measurement kind. Matrix
// is indexed [hour][dayOfWeek]; unobserved cells stay 0.0, never absent.
type Heatmap struct {
	Kind   MeasurementKind `json:"measurement_type"`
	Matrix [24][7]float64  `json:"matrix"`
}

// NewHeatmap builds a fully populated matrix from sparse cells for one kind.
func NewHeatmap(kind MeasurementKind, cells []HeatmapCell) Heatmap {
	hm := Heatmap{Kind: kind}
	for _, cell := range cells {
		if cell.Kind != kind || cell.Hour < 0 || cell.Hour > 23 || cell.DayOfWeek < 0 || cell.DayOfWeek > 6 {
			continue
		}
		hm.Matrix[cell.Hour][cell.DayOfWeek] = cell.Mean
	}
	return hm
}

// TariffBreakdown is the cost share attributed to one tariff class.
type TariffBreakdown struct {
	Name           string      `json:"name"`
	Class          TariffClass `json:"tariff"`
	KWh            float64     `json:"kwh"`
	Cost           float64     `json:"cost"`
	Rate           float64     `json:"rate_per_kwh"`
	PercentOfTotal float64     `json:"percent_of_total"`
}

// CostReport prices the filtered consumption through the dual-tariff schedule,
// including counterfactual scenarios. PeakKWh + OffPeakKWh always equals
// TotalKWh for the filtered window.
type CostReport struct {
	Currency         string          `json:"currency"`
	TotalKWh         float64         `json:"total_kwh"`
	TotalCost        float64         `json:"total_cost"`
	Peak             TariffBreakdown `json:"peak"`
	OffPeak          TariffBreakdown `json:"off_peak"`
	BlendedRate      float64         `json:"blended_rate_per_kwh"`
	AllPeakCost      float64         `json:"all_peak_cost"`
	AllOffPeakCost   float64         `json:"all_off_peak_cost"`
	PotentialSavings float64         `json:"potential_savings"`
}

// NewCostReport classifies per-(hour, day-of-week) consumption sums through
// the tariff schedule and reconciles the totals. Zero total consumption yields
// zero percentages and rates rather than a division fault.
func NewCostReport(tariff *TariffConfig, cells []HeatmapCell) CostReport {
	var peakKWh, offPeakKWh float64
	for _, cell := range cells {
		class, _ := tariff.Classify(cell.Hour, isWeekendDay(cell.DayOfWeek))
		if class == TariffPeak {
			peakKWh += cell.Sum
		} else {
			offPeakKWh += cell.Sum
		}
	}

	totalKWh := peakKWh + offPeakKWh
	peakCost := peakKWh * tariff.PeakRate
	offPeakCost := offPeakKWh * tariff.OffPeakRate
	totalCost := peakCost + offPeakCost

	report := CostReport{
		Currency:  tariff.Currency,
		TotalKWh:  totalKWh,
		TotalCost: totalCost,
		Peak: TariffBreakdown{
			Name:  tariff.PeakName,
			Class: TariffPeak,
			KWh:   peakKWh,
			Cost:  peakCost,
			Rate:  tariff.PeakRate,
		},
		OffPeak: TariffBreakdown{
			Name:  tariff.OffPeakName,
			Class: TariffOffPeak,
			KWh:   offPeakKWh,
			Cost:  offPeakCost,
			Rate:  tariff.OffPeakRate,
		},
		AllPeakCost:      totalKWh * tariff.PeakRate,
		AllOffPeakCost:   totalKWh * tariff.OffPeakRate,
		PotentialSavings: peakKWh * (tariff.PeakRate - tariff.OffPeakRate),
	}

	if totalKWh > 0 {
		report.Peak.PercentOfTotal = peakKWh / totalKWh * 100
		report.OffPeak.PercentOfTotal = offPeakKWh / totalKWh * 100
		report.BlendedRate = totalCost / totalKWh
	}

	return report
}

// isWeekendDay interprets time.Weekday numbering (0=Sunday, 6=Saturday).
func isWeekendDay(dayOfWeek int) bool {
	return dayOfWeek == 0 || dayOfWeek == 6
}

// Pagination describes one page of a result set.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPagination computes page bookkeeping for a total row/group count.
func NewPagination(page, perPage int, totalCount int64) Pagination {
	totalPages := int(math.Ceil(float64(totalCount) / float64(perPage)))
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && totalCount > 0,
	}
}

// ReadingsResponse is the envelope returned by the readings endpoint. The
// optional sections are populated only when requested.
type ReadingsResponse struct {
	Data          interface{}          `json:"data"`
	Pagination    Pagination           `json:"pagination"`
	Pricing       *TariffConfig        `json:"pricing"`
	Stats         []AggregatedBucket   `json:"stats,omitempty"`
	HourlyPattern []HourlyPatternEntry `json:"hourly_pattern,omitempty"`
	DailyPattern  []DailyPatternEntry  `json:"daily_pattern,omitempty"`
	Heatmap       []Heatmap            `json:"heatmap,omitempty"`
	CostBreakdown *CostReport          `json:"cost_breakdown,omitempty"`
}
