package handlers

import (
	"net/http"
	"time"

	"folio/internal/models"
	"folio/internal/service"
	"folio/pkg/ratelimit"
)

// SyncHandler обрабатывает запуск синхронизации портфеля.
//
// Endpoints:
// - POST /api/v1/sync - синхронизировать все провайдеры
//
// Защита:
// - Bearer токен проверяется middleware.BearerAuth до этого handler'а
// - Частота запуска ограничена общим лимитом 10 запусков / 15 минут:
//   каждый запуск дёргает внешние API, злоупотребление выжигает их квоты
type SyncHandler struct {
	syncService service.SyncServiceInterface
	limiter     *ratelimit.Limiter
}

// NewSyncHandler создает новый SyncHandler с внедрением зависимостей.
func NewSyncHandler(syncService service.SyncServiceInterface, limiter *ratelimit.Limiter) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
		limiter:     limiter,
	}
}

// Sync запускает синхронизацию всех пользователей.
//
// POST /api/v1/sync
//
// Response 200 OK:
//
//	{
//	  "results": [
//	    {
//	      "providers": [
//	        {"provider": "simplefin", "accounts_synced": 3, "transactions_synced": 42, "failed": false},
//	        {"provider": "solana", "accounts_synced": 1, "transactions_synced": 0, "failed": false}
//	      ],
//	      "total_value_usd": 12500.75,
//	      "account_count": 4,
//	      "timestamp": "2025-08-20T10:00:00Z"
//	    }
//	  ],
//	  "timestamp": "2025-08-20T10:00:01Z"
//	}
//
// Частичные отказы провайдеров видны в поле providers и не роняют запрос.
//
// Response 429 Too Many Requests:
//
//	{"error": "rate limit exceeded", "retry_after_ms": 120000}
//
// Response 500 Internal Server Error:
//
//	{"error": "sync failed"}
//
// Подробность ошибки остаётся в логе сервера и клиенту не отдаётся.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.syncService == nil {
		writeError(w, http.StatusInternalServerError, "sync service not initialized", "")
		return
	}

	if res := ratelimit.SyncPolicy.Check(h.limiter, ratelimit.SyncKey); !res.Allowed {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":          "rate limit exceeded",
			"retry_after_ms": res.RetryAfter.Milliseconds(),
		})
		return
	}

	results, err := h.syncService.SyncAll(r.Context())
	if err != nil {
		writeInternalError(w, r, "sync failed", err)
		return
	}

	if results == nil {
		results = []*models.SyncResult{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":   results,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
