package service

import (
	"testing"
	"time"

	"folio/internal/models"
)

// ============================================================
// PortfolioService Tests
// ============================================================

// фиксированное "сейчас" для детерминированных расчётов
var testNow = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

func newTestPortfolioService(accounts *MockAccountRepository, snapshots *MockSnapshotRepository) *PortfolioService {
	s := NewPortfolioService(accounts, snapshots)
	s.now = func() time.Time { return testNow }
	return s
}

func TestCalculateChange(t *testing.T) {
	target := testNow.Add(-24 * time.Hour)

	tests := []struct {
		name        string
		points      []models.PortfolioPoint
		current     float64
		wantChange  float64
		wantPercent float64
	}{
		{
			name:        "no history means zero change",
			points:      nil,
			current:     100.0,
			wantChange:  0,
			wantPercent: 0,
		},
		{
			name: "single point",
			points: []models.PortfolioPoint{
				{Timestamp: target, Value: 1000.0},
			},
			current:     1100.0,
			wantChange:  100.0,
			wantPercent: 10.0,
		},
		{
			name: "nearest point wins over older point",
			points: []models.PortfolioPoint{
				{Timestamp: target.Add(-10 * time.Hour), Value: 500.0},
				{Timestamp: target.Add(1 * time.Hour), Value: 1000.0},
			},
			current:     1100.0,
			wantChange:  100.0,
			wantPercent: 10.0,
		},
		{
			name: "nearest point wins regardless of list order",
			points: []models.PortfolioPoint{
				{Timestamp: target.Add(30 * time.Minute), Value: 1000.0},
				{Timestamp: target.Add(6 * time.Hour), Value: 500.0},
			},
			current:     900.0,
			wantChange:  -100.0,
			wantPercent: -10.0,
		},
		{
			name: "tie goes to the earlier point",
			points: []models.PortfolioPoint{
				{Timestamp: target.Add(-1 * time.Hour), Value: 800.0},
				{Timestamp: target.Add(1 * time.Hour), Value: 1000.0},
			},
			current:     1000.0,
			wantChange:  200.0,
			wantPercent: 25.0,
		},
		{
			name: "zero baseline guards the percent",
			points: []models.PortfolioPoint{
				{Timestamp: target, Value: 0.0},
			},
			current:     500.0,
			wantChange:  500.0,
			wantPercent: 0,
		},
	}

	s := newTestPortfolioService(NewMockAccountRepository(), NewMockSnapshotRepository())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := s.calculateChange(tt.points, tt.current)

			if change.Change != tt.wantChange {
				t.Errorf("expected change %f, got %f", tt.wantChange, change.Change)
			}
			if change.ChangePercent != tt.wantPercent {
				t.Errorf("expected percent %f, got %f", tt.wantPercent, change.ChangePercent)
			}
		})
	}
}

func TestGetSummary(t *testing.T) {
	accounts := NewMockAccountRepository()
	snapshots := NewMockSnapshotRepository()

	balance1 := 1000.0
	balance2 := 500.0
	_ = accounts.Upsert(&models.Account{UserID: 1, Provider: models.ProviderSimpleFIN, ExternalID: "A", BalanceUSD: &balance1})
	_ = accounts.Upsert(&models.Account{UserID: 1, Provider: models.ProviderSolana, ExternalID: "B", BalanceUSD: &balance2})
	// Счёт с неизвестным балансом входит в count, но не в сумму
	_ = accounts.Upsert(&models.Account{UserID: 1, Provider: models.ProviderSolana, ExternalID: "C"})

	// Снимки обоих счетов сутки назад: baseline 900 + 500 = 1400
	snapshots.snapshots = []*models.Snapshot{
		{AccountID: 1, ValueUSD: 900.0, CreatedAt: testNow.Add(-24 * time.Hour)},
		{AccountID: 2, ValueUSD: 500.0, CreatedAt: testNow.Add(-24 * time.Hour)},
	}

	s := newTestPortfolioService(accounts, snapshots)

	summary, err := s.GetSummary(1)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	if summary.TotalValueUSD != 1500.0 {
		t.Errorf("expected total 1500, got %f", summary.TotalValueUSD)
	}
	if summary.AccountCount != 3 {
		t.Errorf("expected 3 accounts, got %d", summary.AccountCount)
	}
	if summary.Change24h != 100.0 {
		t.Errorf("expected change 100, got %f", summary.Change24h)
	}
}

func TestGetSummaryDistantBaseline(t *testing.T) {
	accounts := NewMockAccountRepository()
	snapshots := NewMockSnapshotRepository()

	balance := 1100.0
	_ = accounts.Upsert(&models.Account{UserID: 1, Provider: models.ProviderSolana, ExternalID: "A", BalanceUSD: &balance})

	// Единственный снимок трое суток назад: он всё равно baseline,
	// портфель без свежей истории не имеет права показывать {0, 0}
	snapshots.snapshots = []*models.Snapshot{
		{AccountID: 1, ValueUSD: 1000.0, CreatedAt: testNow.Add(-72 * time.Hour)},
	}

	s := newTestPortfolioService(accounts, snapshots)

	summary, err := s.GetSummary(1)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}

	if summary.Change24h != 100.0 {
		t.Errorf("expected change 100 vs three-day-old baseline, got %f", summary.Change24h)
	}
	if summary.ChangePercent24h != 10.0 {
		t.Errorf("expected percent 10, got %f", summary.ChangePercent24h)
	}
}

func TestGetHistoryBucketing(t *testing.T) {
	snapshots := NewMockSnapshotRepository()

	day1 := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	// Две синхронизации одного счёта в первый день, одна во второй
	snapshots.snapshots = []*models.Snapshot{
		{AccountID: 1, ValueUSD: 1000.0, CreatedAt: day1.Add(8 * time.Hour)},
		{AccountID: 1, ValueUSD: 1050.0, CreatedAt: day1.Add(20 * time.Hour)},
		{AccountID: 1, ValueUSD: 1100.0, CreatedAt: day2.Add(9 * time.Hour)},
	}

	s := newTestPortfolioService(NewMockAccountRepository(), snapshots)

	history, err := s.GetHistory(1, day1, day2.Add(24*time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}

	if len(history) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(history))
	}

	// Внутри бакета выигрывает последняя точка
	if history[0].Value != 1050.0 {
		t.Errorf("expected latest value of day 1 (1050), got %f", history[0].Value)
	}
	if !history[0].Timestamp.Equal(day1) {
		t.Errorf("bucket timestamp must be bucket start, got %v", history[0].Timestamp)
	}
	if history[1].Value != 1100.0 {
		t.Errorf("expected 1100 for day 2, got %f", history[1].Value)
	}
}

func TestGetHistorySumsAcrossAccounts(t *testing.T) {
	snapshots := NewMockSnapshotRepository()

	day := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)

	// Один цикл синхронизации, но отметки снимков разные: SimpleFIN
	// ставит balance-date провайдера, и счета одного прохода ложатся
	// в разные моменты. Дневная точка обязана быть суммой обоих.
	snapshots.snapshots = []*models.Snapshot{
		{AccountID: 1, ValueUSD: 1000.0, CreatedAt: day.Add(10 * time.Hour)},
		{AccountID: 2, ValueUSD: 500.0, CreatedAt: day.Add(11 * time.Hour)},
	}

	s := newTestPortfolioService(NewMockAccountRepository(), snapshots)

	history, err := s.GetHistory(1, day, day.Add(24*time.Hour), 24*time.Hour)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}

	if len(history) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(history))
	}
	if history[0].Value != 1500.0 {
		t.Errorf("expected daily point 1500 (sum of both accounts), got %f", history[0].Value)
	}
}

func TestTotalSeries(t *testing.T) {
	base := time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC)

	series := totalSeries([]*models.Snapshot{
		{AccountID: 1, ValueUSD: 1000.0, CreatedAt: base},
		{AccountID: 2, ValueUSD: 500.0, CreatedAt: base},
		{AccountID: 1, ValueUSD: 1200.0, CreatedAt: base.Add(time.Hour)},
	})

	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}

	// Одновременные снимки схлопываются в одну точку-сумму
	if series[0].Value != 1500.0 {
		t.Errorf("expected 1500 at first point, got %f", series[0].Value)
	}

	// Обновился только счёт 1: значение счёта 2 переносится
	if series[1].Value != 1700.0 {
		t.Errorf("expected 1700 after account 1 update, got %f", series[1].Value)
	}

	if len(totalSeries(nil)) != 0 {
		t.Error("expected empty series for no snapshots")
	}
}

func TestGetHistoryEmpty(t *testing.T) {
	s := newTestPortfolioService(NewMockAccountRepository(), NewMockSnapshotRepository())

	history, err := s.GetHistory(1, testNow.Add(-time.Hour), testNow, 24*time.Hour)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d points", len(history))
	}
}
