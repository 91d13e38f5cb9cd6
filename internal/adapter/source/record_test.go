package source

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

func TestRawRecord_UnmarshalJSON_SeparatesReadingColumn(t *testing.T) {
	payload := `{
		"measurement": "energy",
		"timestamp": "2023-02-28T23:45:00.000Z",
		"tags": {"muid": "9badcc2e-f522-4814-a429-d61e4e1d6bf4", "quality": "measured"},
		"0100011D00FF": 0.0117
	}`

	var rec RawRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if rec.Measurement != "energy" {
		t.Errorf("expected measurement 'energy', got %q", rec.Measurement)
	}
	if rec.Tags["muid"] != "9badcc2e-f522-4814-a429-d61e4e1d6bf4" {
		t.Errorf("unexpected muid tag: %q", rec.Tags["muid"])
	}
	if len(rec.Values) != 1 {
		t.Fatalf("expected 1 reading column, got %d", len(rec.Values))
	}
	if rec.Values["0100011D00FF"] != 0.0117 {
		t.Errorf("expected 0.0117, got %v", rec.Values["0100011D00FF"])
	}
}

func TestRawRecord_UnmarshalJSON_IgnoresNonNumericExtras(t *testing.T) {
	payload := `{
		"measurement": "energy",
		"timestamp": "2023-02-28T23:45:00.000Z",
		"tags": {"muid": "m-1"},
		"0100021D00FF": 0.25,
		"source_file": "export-2023-02.json"
	}`

	var rec RawRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rec.Values) != 1 {
		t.Errorf("non-numeric extras must not count as readings, got %v", rec.Values)
	}
}

func TestNormalize_Success(t *testing.T) {
	records := []RawRecord{
		{
			Measurement: "energy",
			Timestamp:   "2023-02-28T23:45:00.000Z",
			Tags:        map[string]string{"muid": "m-1", "quality": "measured"},
			Values:      map[string]float64{"0100011D00FF": 0.0117},
		},
		{
			Measurement: "energy",
			Timestamp:   "2023-03-01T00:00:00.000Z",
			Tags:        map[string]string{"muid": "m-1"},
			Values:      map[string]float64{"0100011D00FF": 0.0121},
		},
	}

	readings, err := Normalize(records, domain.KindActive)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings))
	}

	first := readings[0]
	if first.MeterID != "m-1" || first.Kind != domain.KindActive {
		t.Errorf("unexpected identity fields: %+v", first)
	}
	if first.Value != 0.0117 {
		t.Errorf("expected value 0.0117, got %v", first.Value)
	}
	want := time.Date(2023, 2, 28, 23, 45, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, first.Timestamp)
	}

	// Missing quality tag defaults rather than failing.
	if readings[1].Quality != "unknown" {
		t.Errorf("expected quality 'unknown', got %q", readings[1].Quality)
	}
}

func TestNormalize_WrongColumnCountIsSchemaViolation(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]float64
	}{
		{"no reading column", map[string]float64{}},
		{"two reading columns", map[string]float64{"a": 1, "b": 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := []RawRecord{{
				Timestamp: "2023-03-01T00:00:00.000Z",
				Tags:      map[string]string{"muid": "m-1"},
				Values:    tc.values,
			}}
			_, err := Normalize(records, domain.KindActive)
			if !errors.Is(err, domain.ErrSchemaViolation) {
				t.Errorf("expected ErrSchemaViolation, got %v", err)
			}
		})
	}
}

func TestNormalize_BadTimestampIsSchemaViolation(t *testing.T) {
	records := []RawRecord{{
		Timestamp: "yesterday at noon",
		Tags:      map[string]string{"muid": "m-1"},
		Values:    map[string]float64{"0100011D00FF": 1},
	}}
	_, err := Normalize(records, domain.KindActive)
	if !errors.Is(err, domain.ErrSchemaViolation) {
		t.Errorf("expected ErrSchemaViolation, got %v", err)
	}
}

func TestNormalize_MissingMuidIsSchemaViolation(t *testing.T) {
	records := []RawRecord{{
		Timestamp: "2023-03-01T00:00:00.000Z",
		Tags:      map[string]string{"quality": "measured"},
		Values:    map[string]float64{"0100011D00FF": 1},
	}}
	_, err := Normalize(records, domain.KindActive)
	if !errors.Is(err, domain.ErrSchemaViolation) {
		t.Errorf("expected ErrSchemaViolation, got %v", err)
	}
}
