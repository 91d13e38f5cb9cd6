package source

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

// RawRecord is one duck-typed record from the upstream payload:
//
//	{
//	  "measurement": "energy",
//	  "timestamp": "2023-02-28T23:45:00.000Z",
//	  "tags": {"muid": "...", "quality": "measured"},
//	  "0100011D00FF": 0.0117
//	}
//
// The reading column is named after an OBIS code that varies per feed, so
// UnmarshalJSON separates the known metadata keys from the remaining columns.
type RawRecord struct {
	Measurement string
	Timestamp   string
	Tags        map[string]string
	Values      map[string]float64
}

var metadataKeys = map[string]bool{
	"measurement": true,
	"timestamp":   true,
	"tags":        true,
}

func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.Values = make(map[string]float64)
	for key, raw := range fields {
		switch {
		case key == "measurement":
			if err := json.Unmarshal(raw, &r.Measurement); err != nil {
				return err
			}
		case key == "timestamp":
			if err := json.Unmarshal(raw, &r.Timestamp); err != nil {
				return err
			}
		case key == "tags":
			if err := json.Unmarshal(raw, &r.Tags); err != nil {
				return err
			}
		default:
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				// Non-numeric extra column: not a reading, ignore it.
				continue
			}
			r.Values[key] = v
		}
	}
	return nil
}

// Normalize converts raw records into strongly-typed MeterReadings. Exactly
// one non-metadata numeric column is expected per record; anything else is a
// schema violation, reported loudly rather than skipped.
func Normalize(records []RawRecord, kind domain.MeasurementKind) ([]domain.MeterReading, error) {
	readings := make([]domain.MeterReading, 0, len(records))

	for i, rec := range records {
		if len(rec.Values) != 1 {
			return nil, fmt.Errorf("%w: record %d has %d reading columns, expected exactly 1",
				domain.ErrSchemaViolation, i, len(rec.Values))
		}

		var value float64
		for _, v := range rec.Values {
			value = v
		}

		ts, err := time.Parse(time.RFC3339, rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d has unparseable timestamp %q",
				domain.ErrSchemaViolation, i, rec.Timestamp)
		}

		muid, ok := rec.Tags["muid"]
		if !ok || muid == "" {
			return nil, fmt.Errorf("%w: record %d is missing the muid tag", domain.ErrSchemaViolation, i)
		}

		quality := rec.Tags["quality"]
		if quality == "" {
			quality = "unknown"
		}

		readings = append(readings, domain.MeterReading{
			Timestamp: ts,
			MeterID:   muid,
			Kind:      kind,
			Value:     value,
			Quality:   quality,
		})
	}

	return readings, nil
}
