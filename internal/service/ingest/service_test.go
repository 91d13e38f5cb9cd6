package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigem-energia/internal/domain"
	"github.com/seu-repo/sigem-energia/internal/mocks"
	"github.com/seu-repo/sigem-energia/pkg/config"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func reading(muid string, ts time.Time, kind domain.MeasurementKind, value float64) domain.MeterReading {
	return domain.MeterReading{
		Timestamp: ts,
		MeterID:   muid,
		Kind:      kind,
		Value:     value,
		Quality:   "measured",
	}
}

func snapshot(muid string, base time.Time, n int) map[domain.MeasurementKind][]domain.MeterReading {
	out := make(map[domain.MeasurementKind][]domain.MeterReading)
	for _, kind := range domain.AllKinds {
		for i := 0; i < n; i++ {
			out[kind] = append(out[kind], reading(muid, base.Add(time.Duration(i)*15*time.Minute), kind, float64(i)))
		}
	}
	return out
}

func TestSyncAll_FirstSyncInsertsEverything(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets = snapshot("muid-1", base, 96)
	mockRepo := mocks.NewMockReadingRepository()
	mockQueue := mocks.NewMockMessageQueue()

	service := NewService(mockSource, mockRepo, mockQueue, config.SyncConfig{}, newTestLogger())

	// Act
	report, err := service.SyncAll(ctx)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := report.TotalRows(); got != 192 {
		t.Errorf("expected 192 persisted rows, got %d", got)
	}
	if mockRepo.StoredCount() != 192 {
		t.Errorf("expected 192 stored rows, got %d", mockRepo.StoredCount())
	}
	if len(report.SkippedKind) != 0 {
		t.Errorf("expected no skipped kinds, got %v", report.SkippedKind)
	}
}

func TestSyncAll_UnchangedSnapshotIsIdempotent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets = snapshot("muid-1", base, 96)
	mockRepo := mocks.NewMockReadingRepository()

	service := NewService(mockSource, mockRepo, mocks.NewMockMessageQueue(), config.SyncConfig{}, newTestLogger())

	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	// Act: second cycle against the exact same upstream snapshot.
	report, err := service.SyncAll(ctx)

	// Assert
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if got := report.TotalRows(); got != 0 {
		t.Errorf("expected 0 new rows on unchanged snapshot, got %d", got)
	}
	if mockRepo.StoredCount() != 192 {
		t.Errorf("expected store unchanged at 192 rows, got %d", mockRepo.StoredCount())
	}
}

func TestSyncAll_OnlyRecordsPastWatermarkPersisted(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets = snapshot("muid-1", base, 96)
	mockRepo := mocks.NewMockReadingRepository()

	service := NewService(mockSource, mockRepo, mocks.NewMockMessageQueue(), config.SyncConfig{}, newTestLogger())
	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	// Upstream grows by 4 intervals per kind.
	mockSource.Datasets = snapshot("muid-1", base, 100)

	// Act
	report, err := service.SyncAll(ctx)

	// Assert
	if err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	if got := report.RowsByKind[domain.KindActive]; got != 4 {
		t.Errorf("expected 4 new active rows, got %d", got)
	}
	if got := report.RowsByKind[domain.KindReactive]; got != 4 {
		t.Errorf("expected 4 new reactive rows, got %d", got)
	}
	if mockRepo.StoredCount() != 200 {
		t.Errorf("expected 200 stored rows, got %d", mockRepo.StoredCount())
	}
}

func TestSyncAll_WatermarkFilterLeavesSourceSliceIntact(t *testing.T) {
	// Arrange: the source hands out its retained slice on every fetch, so
	// filtering must not compact its backing array in place.
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets = snapshot("muid-1", base, 4)
	mockRepo := mocks.NewMockReadingRepository()

	service := NewService(mockSource, mockRepo, mocks.NewMockMessageQueue(), config.SyncConfig{}, newTestLogger())
	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("first cycle failed: %v", err)
	}

	// Act: upstream grows, so the second cycle keeps only the tail of each
	// fetched slice past the watermark.
	mockSource.Datasets = snapshot("muid-1", base, 8)
	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}

	// Assert
	for _, kind := range domain.AllKinds {
		rows := mockSource.Datasets[kind]
		if len(rows) != 8 {
			t.Fatalf("%s dataset length changed to %d", kind, len(rows))
		}
		for i, r := range rows {
			want := base.Add(time.Duration(i) * 15 * time.Minute)
			if !r.Timestamp.Equal(want) || r.Value != float64(i) {
				t.Errorf("%s dataset row %d mutated: %+v", kind, i, r)
			}
		}
	}
}

func TestSyncAll_SourceFailureSkipsKindOnly(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets[domain.KindReactive] = snapshot("muid-1", base, 10)[domain.KindReactive]
	mockSource.Errs[domain.KindActive] = domain.ErrSourceUnavailable
	mockRepo := mocks.NewMockReadingRepository()

	service := NewService(mockSource, mockRepo, mocks.NewMockMessageQueue(), config.SyncConfig{}, newTestLogger())

	// Act
	report, err := service.SyncAll(ctx)

	// Assert
	if err != nil {
		t.Fatalf("expected cycle to survive a fetch failure, got %v", err)
	}
	if len(report.SkippedKind) != 1 || report.SkippedKind[0] != domain.KindActive {
		t.Errorf("expected active kind skipped, got %v", report.SkippedKind)
	}
	if got := report.RowsByKind[domain.KindReactive]; got != 10 {
		t.Errorf("expected reactive rows persisted despite active failure, got %d", got)
	}
}

func TestSyncAll_StoreFailureAbortsCycle(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets = snapshot("muid-1", base, 10)
	mockRepo := mocks.NewMockReadingRepository()
	mockRepo.UpsertFunc = func(ctx context.Context, readings []domain.MeterReading) (int64, error) {
		return 0, domain.ErrStoreUnavailable
	}

	service := NewService(mockSource, mockRepo, mocks.NewMockMessageQueue(), config.SyncConfig{}, newTestLogger())

	// Act
	_, err := service.SyncAll(ctx)

	// Assert
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if service.Ready() {
		t.Error("a failed cycle must not mark the service ready")
	}
}

func TestSyncAll_ReingestedRecordOverwrites(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ts := time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

	mockRepo := mocks.NewMockReadingRepository()
	if _, err := mockRepo.Upsert(ctx, []domain.MeterReading{
		reading("muid-1", ts, domain.KindActive, 1.0),
	}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	// Act: same key, corrected value and quality.
	corrected := reading("muid-1", ts, domain.KindActive, 2.5)
	corrected.Quality = "estimated"
	if _, err := mockRepo.Upsert(ctx, []domain.MeterReading{corrected}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Assert
	if mockRepo.StoredCount() != 1 {
		t.Errorf("expected 1 row after re-ingest, got %d", mockRepo.StoredCount())
	}
	stored, ok := mockRepo.Stored("muid-1", ts, domain.KindActive)
	if !ok {
		t.Fatal("expected the row to exist")
	}
	if stored.Value != 2.5 || stored.Quality != "estimated" {
		t.Errorf("expected overwritten value/quality, got %+v", stored)
	}
}

func TestSyncAll_MultipleMetersInFeedProceeds(t *testing.T) {
	// Arrange
	ctx := context.Background()
	ts := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets[domain.KindActive] = []domain.MeterReading{
		reading("muid-1", ts, domain.KindActive, 1),
		reading("muid-2", ts.Add(15*time.Minute), domain.KindActive, 2),
	}
	mockRepo := mocks.NewMockReadingRepository()

	service := NewService(mockSource, mockRepo, mocks.NewMockMessageQueue(), config.SyncConfig{}, newTestLogger())

	// Act
	report, err := service.SyncAll(ctx)

	// Assert
	if err != nil {
		t.Fatalf("expected the anomaly to be logged, not fatal: %v", err)
	}
	if got := report.RowsByKind[domain.KindActive]; got != 2 {
		t.Errorf("expected both rows persisted, got %d", got)
	}
}

func TestSyncAll_PublishesReport(t *testing.T) {
	// Arrange
	ctx := context.Background()
	base := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	mockSource := mocks.NewMockMeterSource()
	mockSource.Datasets = snapshot("muid-1", base, 4)
	mockQueue := mocks.NewMockMessageQueue()

	service := NewService(mockSource, mocks.NewMockReadingRepository(), mockQueue, config.SyncConfig{}, newTestLogger())

	// Act
	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	// Assert
	msgs := mockQueue.Published(SyncCompletedSubject)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 published report, got %d", len(msgs))
	}
	var report domain.SyncReport
	if err := json.Unmarshal(msgs[0], &report); err != nil {
		t.Fatalf("report payload not JSON: %v", err)
	}
	if report.TotalRows() != 8 {
		t.Errorf("expected 8 rows in published report, got %d", report.TotalRows())
	}
}

func TestSignalReady_WritesMarkerOnce(t *testing.T) {
	// Arrange
	ctx := context.Background()
	markerPath := filepath.Join(t.TempDir(), "ready")

	mockSource := mocks.NewMockMeterSource()
	service := NewService(mockSource, mocks.NewMockReadingRepository(), mocks.NewMockMessageQueue(),
		config.SyncConfig{ReadyMarkerPath: markerPath}, newTestLogger())

	if service.Ready() {
		t.Fatal("service must not be ready before the first cycle")
	}

	// Act
	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}

	// Assert
	if !service.Ready() {
		t.Error("expected service ready after first cycle")
	}
	first, err := os.ReadFile(markerPath)
	if err != nil {
		t.Fatalf("expected marker file, got %v", err)
	}

	// A second cycle must not rewrite the marker.
	time.Sleep(1100 * time.Millisecond)
	if _, err := service.SyncAll(ctx); err != nil {
		t.Fatalf("second cycle failed: %v", err)
	}
	second, err := os.ReadFile(markerPath)
	if err != nil {
		t.Fatalf("marker file vanished: %v", err)
	}
	if string(first) != string(second) {
		t.Error("marker file was rewritten on a later cycle")
	}
}
