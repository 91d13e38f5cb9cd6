package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/ports"
	"github.com/seu-repo/sigem-energia/pkg/config"
)

// Client pulls full meter datasets from the upstream S3-style endpoints. The
// source supports no filtering or pagination, so every fetch returns the
// entire series for a measurement kind. A circuit breaker keeps a flapping
// upstream from stalling every sync cycle.
type Client struct {
	http    *http.Client
	urls    map[domain.MeasurementKind]string
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewClient(cfg config.SourceConfig, log *zap.Logger) ports.MeterSource {
	failureThreshold := cfg.Breaker.FailureThreshold
	if failureThreshold == 0 {
		failureThreshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "meter-source",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Source circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	timeout := cfg.FetchTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http: &http.Client{Timeout: timeout},
		urls: map[domain.MeasurementKind]string{
			domain.KindActive:   cfg.ActiveURL,
			domain.KindReactive: cfg.ReactiveURL,
		},
		breaker: cb,
		log:     log,
	}
}

// FetchAll retrieves and normalizes the full dataset for one measurement
// kind. Transport failures, timeouts and non-2xx responses wrap
// domain.ErrSourceUnavailable; payload shape mismatches wrap
// domain.ErrSchemaViolation.
func (c *Client) FetchAll(ctx context.Context, kind domain.MeasurementKind) ([]domain.MeterReading, error) {
	url, ok := c.urls[kind]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w: no source URL configured for kind %s", domain.ErrSourceUnavailable, kind)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: circuit open for kind %s", domain.ErrSourceUnavailable, kind)
		}
		return nil, err
	}

	var payload dataset
	if err := json.Unmarshal(body.([]byte), &payload); err != nil {
		return nil, fmt.Errorf("%w: cannot decode source payload: %v", domain.ErrSchemaViolation, err)
	}

	return Normalize(payload.Data, kind)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", domain.ErrSourceUnavailable, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	return body, nil
}

type dataset struct {
	Data []RawRecord `json:"data"`
}
