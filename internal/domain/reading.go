package domain

import "time"

// MeasurementKind identifies which physical quantity a reading measures.
type MeasurementKind string

const (
	KindActive   MeasurementKind = "active"
	KindReactive MeasurementKind = "reactive"
)

// AllKinds lists every measurement kind the system ingests.
var AllKinds = []MeasurementKind{KindActive, KindReactive}

// MeterReading is one measured value for one physical meter at one instant.
// The triple (MeterID, Timestamp, Kind) is unique: re-ingesting it overwrites
// Value and Quality instead of creating a duplicate row.
type MeterReading struct {
	Timestamp time.Time       `gorm:"column:timestamp;not null;uniqueIndex:idx_meter_readings_key,priority:2" json:"timestamp"`
	MeterID   string          `gorm:"column:muid;not null;uniqueIndex:idx_meter_readings_key,priority:1" json:"muid"`
	Kind      MeasurementKind `gorm:"column:measurement_type;not null;uniqueIndex:idx_meter_readings_key,priority:3" json:"measurement_type"`
	Value     float64         `gorm:"column:reading;not null" json:"reading"` // kWh
	Quality   string          `gorm:"column:quality" json:"quality,omitempty"`
}

func (MeterReading) TableName() string {
	return "meter_readings"
}

// ReadingPoint is a MeterReading annotated with its derived hour-of-day and
// day-of-week (0=Sunday..6=Saturday), as served in raw-granularity responses.
type ReadingPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	MeterID   string          `json:"muid"`
	Kind      MeasurementKind `json:"measurement_type"`
	Value     float64         `json:"reading"`
	Quality   string          `json:"quality,omitempty"`
	Hour      int             `json:"hour"`
	DayOfWeek int             `json:"day_of_week"`
}

// NewReadingPoint derives the hour/day-of-week annotations from the reading's
// timestamp in UTC.
func NewReadingPoint(r MeterReading) ReadingPoint {
	ts := r.Timestamp.UTC()
	return ReadingPoint{
		Timestamp: r.Timestamp,
		MeterID:   r.MeterID,
		Kind:      r.Kind,
		Value:     r.Value,
		Quality:   r.Quality,
		Hour:      ts.Hour(),
		DayOfWeek: int(ts.Weekday()),
	}
}

// SyncReport summarizes one full sync cycle across all measurement kinds.
type SyncReport struct {
	CycleID     string                    `json:"cycle_id"`
	StartedAt   time.Time                 `json:"started_at"`
	Duration    time.Duration             `json:"duration"`
	RowsByKind  map[MeasurementKind]int64 `json:"rows_by_kind"`
	SkippedKind []MeasurementKind         `json:"skipped_kinds,omitempty"`
}

// TotalRows returns the number of newly persisted rows across all kinds.
func (r *SyncReport) TotalRows() int64 {
	var total int64
	for _, n := range r.RowsByKind {
		total += n
	}
	return total
}
