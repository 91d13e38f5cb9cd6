package domain

import (
	"fmt"
	"time"
)

// KindSelector restricts a query to one measurement kind, or none.
type KindSelector string

const (
	SelectActive   KindSelector = "active"
	SelectReactive KindSelector = "reactive"
	SelectBoth     KindSelector = "both"
)

// DayRestriction limits a query to weekdays or weekends (ISO Sat/Sun).
type DayRestriction int

const (
	AllDays DayRestriction = iota
	WeekdaysOnly
	WeekendsOnly
)

// QueryFilter is the normalized form of a caller's constraints. It is built
// once per request and passed unchanged to every sub-query so all sections of
// a response are computed over an identical slice of data.
type QueryFilter struct {
	Start *time.Time
	End   *time.Time
	Kind  KindSelector
	Days  DayRestriction
}

const filterDateLayout = "2006-01-02"

// NewQueryFilter validates and normalizes raw query inputs. Blank start/end
// mean "no constraint"; a present but unparseable date is ErrMalformedInput.
// Dates are inclusive calendar days: end is extended to the end of its day.
// If both day flags are set, weekday-only wins.
func NewQueryFilter(start, end, kind string, weekdayOnly, weekendOnly bool) (QueryFilter, error) {
	f := QueryFilter{Kind: SelectBoth, Days: AllDays}

	if start != "" {
		t, err := time.Parse(filterDateLayout, start)
		if err != nil {
			return QueryFilter{}, fmt.Errorf("%w: invalid start date %q", ErrMalformedInput, start)
		}
		f.Start = &t
	}

	if end != "" {
		t, err := time.Parse(filterDateLayout, end)
		if err != nil {
			return QueryFilter{}, fmt.Errorf("%w: invalid end date %q", ErrMalformedInput, end)
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		f.End = &endOfDay
	}

	switch kind {
	case "", string(SelectBoth):
		f.Kind = SelectBoth
	case string(SelectActive):
		f.Kind = SelectActive
	case string(SelectReactive):
		f.Kind = SelectReactive
	default:
		return QueryFilter{}, fmt.Errorf("%w: unknown measurement type %q", ErrMalformedInput, kind)
	}

	if weekdayOnly {
		f.Days = WeekdaysOnly
	} else if weekendOnly {
		f.Days = WeekendsOnly
	}

	return f, nil
}

// Kinds expands the selector into concrete measurement kinds.
func (f QueryFilter) Kinds() []MeasurementKind {
	switch f.Kind {
	case SelectActive:
		return []MeasurementKind{KindActive}
	case SelectReactive:
		return []MeasurementKind{KindReactive}
	default:
		return AllKinds
	}
}

// WithKind returns a copy of the filter restricted to a single kind. Used by
// the cost path, which prices active energy only.
func (f QueryFilter) WithKind(k MeasurementKind) QueryFilter {
	switch k {
	case KindReactive:
		f.Kind = SelectReactive
	default:
		f.Kind = SelectActive
	}
	return f
}

// WithAllKinds returns a copy of the filter with the kind restriction lifted.
// The heatmap path always computes both kinds.
func (f QueryFilter) WithAllKinds() QueryFilter {
	f.Kind = SelectBoth
	return f
}

// CacheKey renders the filter as a stable string for cache lookups.
func (f QueryFilter) CacheKey() string {
	start, end := "-", "-"
	if f.Start != nil {
		start = f.Start.UTC().Format(time.RFC3339)
	}
	if f.End != nil {
		end = f.End.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s|%s|%s|%d", start, end, f.Kind, f.Days)
}

// Granularity selects how the aggregation pipeline groups readings.
type Granularity string

const (
	GranularityRaw    Granularity = "raw"
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
	GranularityWeekly Granularity = "weekly"
)

// ParseGranularity maps a query-string value to a Granularity. Blank defaults
// to raw.
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "", string(GranularityRaw):
		return GranularityRaw, nil
	case string(GranularityHourly):
		return GranularityHourly, nil
	case string(GranularityDaily):
		return GranularityDaily, nil
	case string(GranularityWeekly):
		return GranularityWeekly, nil
	default:
		return "", fmt.Errorf("%w: unknown granularity %q", ErrMalformedInput, s)
	}
}
