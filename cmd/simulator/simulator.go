package main

import (
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// The reading column names mimic the OBIS codes of the real export: active
// energy under 1-0:1.29, reactive energy under 1-0:2.29.
const (
	activeColumn   = "0100011D00FF"
	reactiveColumn = "0100021D00FF"
)

// FeedConfig holds the feed generator configuration
type FeedConfig struct {
	MeterID  string
	Days     int
	Interval time.Duration
	FailRate float64
}

// Feed serves a growing in-memory meter dataset in the upstream's duck-typed
// JSON shape: metadata keys plus one dynamically named reading column.
type Feed struct {
	cfg FeedConfig
	log *zap.Logger

	mu     sync.RWMutex
	cursor time.Time
	active []feedRecord
	react  []feedRecord
}

type feedRecord map[string]interface{}

func NewFeed(cfg FeedConfig, log *zap.Logger) *Feed {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Days <= 0 {
		cfg.Days = 7
	}

	f := &Feed{cfg: cfg, log: log}

	start := time.Now().UTC().Truncate(cfg.Interval).AddDate(0, 0, -cfg.Days)
	f.cursor = start
	steps := int(time.Duration(cfg.Days) * 24 * time.Hour / cfg.Interval)
	for i := 0; i < steps; i++ {
		f.appendInterval()
	}

	log.Info("Feed dataset generated",
		zap.String("muid", cfg.MeterID),
		zap.Int("records_per_kind", len(f.active)),
	)
	return f
}

// Grow appends one interval of readings on a fixed cadence, so repeated
// fetches observe a moving watermark.
func (f *Feed) Grow(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		f.mu.Lock()
		f.appendInterval()
		f.mu.Unlock()
		f.log.Info("Appended interval", zap.Time("cursor", f.cursor))
	}
}

// ServeActive serves the full active-energy dataset.
func (f *Feed) ServeActive(w http.ResponseWriter, r *http.Request) {
	f.serve(w, func() []feedRecord { return f.active })
}

// ServeReactive serves the full reactive-energy dataset.
func (f *Feed) ServeReactive(w http.ResponseWriter, r *http.Request) {
	f.serve(w, func() []feedRecord { return f.react })
}

func (f *Feed) serve(w http.ResponseWriter, records func() []feedRecord) {
	if f.cfg.FailRate > 0 && rand.Float64() < f.cfg.FailRate {
		http.Error(w, "simulated outage", http.StatusServiceUnavailable)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": records(),
	})
}

// appendInterval adds one reading per kind at the current cursor. Consumption
// follows a daily curve: a morning ramp, an evening peak, low overnight load,
// plus noise. Callers hold the lock.
func (f *Feed) appendInterval() {
	ts := f.cursor.Format("2006-01-02T15:04:05.000Z")
	hour := float64(f.cursor.Hour()) + float64(f.cursor.Minute())/60

	base := 0.008
	morning := 0.01 * math.Exp(-math.Pow(hour-8, 2)/4)
	evening := 0.02 * math.Exp(-math.Pow(hour-19, 2)/6)
	noise := rand.Float64() * 0.003

	activeValue := base + morning + evening + noise
	reactiveValue := activeValue * (0.15 + rand.Float64()*0.1)

	f.active = append(f.active, feedRecord{
		"measurement": "energy",
		"timestamp":   ts,
		"tags":        map[string]string{"muid": f.cfg.MeterID, "quality": "measured"},
		activeColumn:  round(activeValue),
	})
	f.react = append(f.react, feedRecord{
		"measurement":  "energy",
		"timestamp":    ts,
		"tags":         map[string]string{"muid": f.cfg.MeterID, "quality": "measured"},
		reactiveColumn: round(reactiveValue),
	})

	f.cursor = f.cursor.Add(f.cfg.Interval)
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
