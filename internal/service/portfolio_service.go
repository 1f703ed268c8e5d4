package service

import (
	"sort"
	"time"

	"folio/internal/models"
	"folio/pkg/utils"
)

// changeWindow - горизонт расчёта изменения портфеля
const changeWindow = 24 * time.Hour

// PortfolioService предоставляет бизнес-логику агрегации портфеля.
//
// Функции:
// - GetSummary: текущая суммарная стоимость + изменение за 24 часа
// - GetHistory: история стоимости портфеля по бакетам времени
// - GetAccounts: список счетов пользователя
//
// Изменение за 24 часа считается от исторической точки, БЛИЖАЙШЕЙ
// к отметке "сейчас минус 24 часа", а не от первой попавшейся.
// Baseline ищется по всей истории: точка, найденная трое суток назад,
// лучше чем отсутствие изменения вовсе.
type PortfolioService struct {
	accountRepo  AccountRepositoryInterface
	snapshotRepo SnapshotRepositoryInterface

	// now подменяется в тестах
	now func() time.Time
}

// NewPortfolioService создает новый экземпляр PortfolioService
func NewPortfolioService(accountRepo AccountRepositoryInterface, snapshotRepo SnapshotRepositoryInterface) *PortfolioService {
	return &PortfolioService{
		accountRepo:  accountRepo,
		snapshotRepo: snapshotRepo,
		now:          time.Now,
	}
}

// GetSummary возвращает сводку портфеля: текущую стоимость,
// изменение за 24 часа и количество счетов.
//
// Стоимость читается из счетов напрямую (не из кэша), поэтому сводка
// всегда отражает последнюю завершённую синхронизацию.
func (s *PortfolioService) GetSummary(userID int) (*models.PortfolioSummary, error) {
	total, err := s.accountRepo.TotalValue(userID)
	if err != nil {
		return nil, err
	}

	count, err := s.accountRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	snapshots, err := s.snapshotRepo.GetByUserUntil(userID, now)
	if err != nil {
		return nil, err
	}

	change := s.calculateChange(totalSeries(snapshots), total)

	return &models.PortfolioSummary{
		TotalValueUSD:    total,
		Change24h:        change.Change,
		ChangePercent24h: change.ChangePercent,
		AccountCount:     count,
		UpdatedAt:        now,
	}, nil
}

// calculateChange считает изменение текущей стоимости относительно
// исторической точки, ближайшей к отметке "24 часа назад".
//
// Правила:
// - Нет истории: изменение {0, 0}, а не ошибка
// - Расстояние до цели не ограничено: единственная точка трёхдневной
//   давности всё равно становится baseline'ом
// - При равном расстоянии до цели выигрывает более ранняя точка
// - Baseline равен нулю: процент 0, деления на ноль нет
func (s *PortfolioService) calculateChange(points []models.PortfolioPoint, current float64) models.PortfolioChange {
	if len(points) == 0 {
		return models.PortfolioChange{}
	}

	target := s.now().Add(-changeWindow)

	baseline := points[0]
	bestDist := absDuration(baseline.Timestamp.Sub(target))
	for _, p := range points[1:] {
		dist := absDuration(p.Timestamp.Sub(target))
		// Строгое "меньше": при равном расстоянии остаётся более ранняя точка
		if dist < bestDist {
			baseline = p
			bestDist = dist
		}
	}

	change := current - baseline.Value

	var percent float64
	if baseline.Value != 0 {
		percent = change / baseline.Value * 100
	}

	return models.PortfolioChange{
		Change:        change,
		ChangePercent: percent,
	}
}

// GetHistory возвращает историю стоимости портфеля за период,
// сведённую к точкам с шагом interval.
//
// Несколько синхронизаций внутри одного бакета сводятся к одной точке:
// остаётся последняя по времени (самое свежее значение бакета).
// Timestamp точки - начало бакета.
func (s *PortfolioService) GetHistory(userID int, from, to time.Time, interval time.Duration) ([]models.PortfolioPoint, error) {
	snapshots, err := s.snapshotRepo.GetByUserInRange(userID, from, to)
	if err != nil {
		return nil, err
	}

	return bucketPoints(totalSeries(snapshots), interval), nil
}

// GetAccounts возвращает все счета пользователя
func (s *PortfolioService) GetAccounts(userID int) ([]*models.Account, error) {
	return s.accountRepo.GetByUserID(userID)
}

// totalSeries строит временной ряд суммарной стоимости портфеля из
// снимков отдельных счетов.
//
// Снимки одного цикла синхронизации могут иметь разные отметки времени
// (SimpleFIN ставит balance-date провайдера), поэтому суммировать можно
// только с переносом: на каждый момент берётся последнее известное
// значение КАЖДОГО счёта, сумма по счетам и есть стоимость портфеля.
// Снимки с одинаковой отметкой схлопываются в одну точку.
func totalSeries(snapshots []*models.Snapshot) []models.PortfolioPoint {
	if len(snapshots) == 0 {
		return nil
	}

	sorted := make([]*models.Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	latest := make(map[int]float64, 4)
	var points []models.PortfolioPoint
	for _, snap := range sorted {
		latest[snap.AccountID] = snap.ValueUSD

		total := 0.0
		for _, v := range latest {
			total += v
		}

		if len(points) > 0 && points[len(points)-1].Timestamp.Equal(snap.CreatedAt) {
			points[len(points)-1].Value = total
			continue
		}
		points = append(points, models.PortfolioPoint{
			Timestamp: snap.CreatedAt,
			Value:     total,
		})
	}

	return points
}

// bucketPoints сводит точки к бакетам. Вход отсортирован по времени,
// поэтому более поздняя точка бакета просто перезаписывает раннюю.
func bucketPoints(points []models.PortfolioPoint, interval time.Duration) []models.PortfolioPoint {
	if len(points) == 0 {
		return nil
	}

	var result []models.PortfolioPoint
	for _, p := range points {
		bucket := utils.BucketStart(p.Timestamp, interval)
		if len(result) > 0 && result[len(result)-1].Timestamp.Equal(bucket) {
			result[len(result)-1].Value = p.Value
			continue
		}
		result = append(result, models.PortfolioPoint{
			Timestamp: bucket,
			Value:     p.Value,
		})
	}

	return result
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
