package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/sigem-energia/internal/domain"
)

// MockMeterSource is a mock implementation of MeterSource interface
type MockMeterSource struct {
	mu       sync.Mutex
	Datasets map[domain.MeasurementKind][]domain.MeterReading
	Errs     map[domain.MeasurementKind]error
	Fetches  int

	FetchAllFunc func(ctx context.Context, kind domain.MeasurementKind) ([]domain.MeterReading, error)
}

func NewMockMeterSource() *MockMeterSource {
	return &MockMeterSource{
		Datasets: make(map[domain.MeasurementKind][]domain.MeterReading),
		Errs:     make(map[domain.MeasurementKind]error),
	}
}

func (m *MockMeterSource) FetchAll(ctx context.Context, kind domain.MeasurementKind) ([]domain.MeterReading, error) {
	m.mu.Lock()
	m.Fetches++
	m.mu.Unlock()
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx, kind)
	}
	if err := m.Errs[kind]; err != nil {
		return nil, err
	}
	return m.Datasets[kind], nil
}

// MockIngestService is a mock implementation of IngestService interface
type MockIngestService struct {
	mu    sync.Mutex
	Calls int

	SyncAllFunc func(ctx context.Context) (*domain.SyncReport, error)
	ReadyFunc   func() bool
}

func (m *MockIngestService) SyncAll(ctx context.Context) (*domain.SyncReport, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.SyncAllFunc != nil {
		return m.SyncAllFunc(ctx)
	}
	return &domain.SyncReport{RowsByKind: map[domain.MeasurementKind]int64{}}, nil
}

func (m *MockIngestService) Ready() bool {
	if m.ReadyFunc != nil {
		return m.ReadyFunc()
	}
	return true
}

// SyncCalls returns how many times SyncAll was invoked.
func (m *MockIngestService) SyncCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
