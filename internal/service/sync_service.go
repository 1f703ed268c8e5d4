package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"folio/internal/models"
	"folio/internal/provider"
)

// SyncBroadcaster - интерфейс для real-time рассылки через WebSocket
type SyncBroadcaster interface {
	BroadcastSyncResult(result *models.SyncResult)
	BroadcastPortfolioUpdate(summary *models.PortfolioSummary)
}

// SummarySource отдаёт свежую сводку портфеля для рассылки после
// синхронизации. Реализуется PortfolioService.
type SummarySource interface {
	GetSummary(userID int) (*models.PortfolioSummary, error)
}

// SyncService оркестрирует синхронизацию портфеля.
//
// Каждый провайдер опрашивается в отдельной горутине; отказ одного
// провайдера не мешает остальным. Результаты сохраняются идемпотентно:
// счета и транзакции через upsert, снимки балансов append-only.
// После сохранения сводка пересчитывается заново из свежих данных.
//
// WebSocket интеграция:
// - После каждой синхронизации отправляет syncResult
// - Следом уходит portfolioUpdate со свежей сводкой портфеля
type SyncService struct {
	providers    []provider.Provider
	userRepo     UserRepositoryInterface
	accountRepo  AccountRepositoryInterface
	snapshotRepo SnapshotRepositoryInterface
	txRepo       TransactionRepositoryInterface
	wsHub        SyncBroadcaster
	summaries    SummarySource
}

// NewSyncService создает новый экземпляр SyncService
func NewSyncService(
	providers []provider.Provider,
	userRepo UserRepositoryInterface,
	accountRepo AccountRepositoryInterface,
	snapshotRepo SnapshotRepositoryInterface,
	txRepo TransactionRepositoryInterface,
) *SyncService {
	return &SyncService{
		providers:    providers,
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		snapshotRepo: snapshotRepo,
		txRepo:       txRepo,
	}
}

// SetWebSocketHub устанавливает WebSocket hub для broadcast результатов.
//
// Вызывается после инициализации Hub в main.go:
//
//	syncService := service.NewSyncService(providers, userRepo, accountRepo, snapshotRepo, txRepo)
//	syncService.SetWebSocketHub(wsHub)
func (s *SyncService) SetWebSocketHub(hub SyncBroadcaster) {
	s.wsHub = hub
}

// SetSummarySource задаёт источник сводки портфеля для portfolioUpdate
// рассылки. Без него после синхронизации уходит только syncResult.
func (s *SyncService) SetSummarySource(src SummarySource) {
	s.summaries = src
}

// providerOutcome - результат опроса одного провайдера
type providerOutcome struct {
	provider models.ProviderKind
	accounts []models.AccountData
	err      error
}

// SyncUser синхронизирует все провайдеры одного пользователя.
//
// Возвращает результат даже при частичных отказах: статус каждого
// провайдера виден в result.Providers. Ошибка возвращается только
// при сбое сохранения или пересчёта сводки.
func (s *SyncService) SyncUser(ctx context.Context, userID int) (*models.SyncResult, error) {
	started := time.Now()
	log.Printf("[sync] starting sync for user %d across %d providers", userID, len(s.providers))

	// Параллельный fan-out по провайдерам
	outcomes := make([]providerOutcome, len(s.providers))
	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			accounts, err := p.FetchAccounts(ctx, userID)
			outcomes[i] = providerOutcome{
				provider: p.Name(),
				accounts: accounts,
				err:      err,
			}
		}(i, p)
	}
	wg.Wait()

	result := &models.SyncResult{
		Timestamp: time.Now().UTC(),
	}

	for _, outcome := range outcomes {
		status := models.ProviderSyncStatus{Provider: outcome.provider}

		if outcome.err != nil {
			status.Failed = true
			status.Error = outcome.err.Error()
			log.Printf("[sync] provider %s failed for user %d: %v", outcome.provider, userID, outcome.err)
			syncFailures.WithLabelValues(string(outcome.provider)).Inc()
			result.Providers = append(result.Providers, status)
			continue
		}

		for _, data := range outcome.accounts {
			synced, txCount, err := s.persistAccount(data)
			if err != nil {
				return nil, fmt.Errorf("persist account %s/%s: %w", outcome.provider, data.Account.ExternalID, err)
			}
			if synced {
				status.AccountsSynced++
			}
			status.TransactionsSynced += txCount
		}

		accountsSynced.WithLabelValues(string(outcome.provider)).Add(float64(status.AccountsSynced))
		result.Providers = append(result.Providers, status)
	}

	// Сводка пересчитывается из свежих данных, не из данных этого прохода
	total, err := s.accountRepo.TotalValue(userID)
	if err != nil {
		return nil, fmt.Errorf("recompute total: %w", err)
	}
	count, err := s.accountRepo.CountByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("recompute count: %w", err)
	}

	result.TotalValueUSD = total
	result.AccountCount = count

	portfolioValue.WithLabelValues(strconv.Itoa(userID)).Set(total)

	syncsTotal.Inc()
	if result.AllFailed() {
		syncsAllFailed.Inc()
	}
	syncDuration.Observe(time.Since(started).Seconds())

	log.Printf("[sync] user %d done in %v: %d accounts, total $%.2f",
		userID, time.Since(started).Round(time.Millisecond), count, total)

	if s.wsHub != nil {
		s.wsHub.BroadcastSyncResult(result)

		if s.summaries != nil {
			summary, err := s.summaries.GetSummary(userID)
			if err != nil {
				log.Printf("[sync] portfolio broadcast skipped for user %d: %v", userID, err)
			} else {
				s.wsHub.BroadcastPortfolioUpdate(summary)
			}
		}
	}

	return result, nil
}

// SyncAll синхронизирует всех пользователей последовательно.
// Отказ синхронизации одного пользователя не останавливает остальных.
func (s *SyncService) SyncAll(ctx context.Context) ([]*models.SyncResult, error) {
	users, err := s.userRepo.GetAll()
	if err != nil {
		return nil, err
	}

	var results []*models.SyncResult
	for _, user := range users {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		result, err := s.SyncUser(ctx, user.ID)
		if err != nil {
			log.Printf("[sync] user %d failed: %v", user.ID, err)
			continue
		}
		results = append(results, result)
	}

	return results, nil
}

// persistAccount сохраняет счёт, его снимок и транзакции.
// Возвращает признак сохранения счёта и число сохранённых транзакций.
func (s *SyncService) persistAccount(data models.AccountData) (bool, int, error) {
	account := data.Account
	if err := s.accountRepo.Upsert(&account); err != nil {
		return false, 0, err
	}

	// Снимок пишется только при известной стоимости: null-баланс
	// не должен рисовать ложный ноль в истории
	if account.BalanceUSD != nil {
		snapshot := &models.Snapshot{
			AccountID: account.ID,
			ValueUSD:  *account.BalanceUSD,
			CreatedAt: data.SnapshotAt,
		}
		if err := s.snapshotRepo.Create(snapshot); err != nil {
			return false, 0, err
		}
	}

	txCount := 0
	for i := range data.Transactions {
		tx := data.Transactions[i]
		tx.AccountID = account.ID
		if err := s.txRepo.Upsert(&tx); err != nil {
			return false, txCount, err
		}
		txCount++
	}

	return true, txCount, nil
}
