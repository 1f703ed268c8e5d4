package handlers

import (
	"net/http"
	"time"

	"folio/internal/models"
	"folio/internal/service"
)

// supportedPeriods отображает параметр period в глубину выборки
var supportedPeriods = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// PortfolioHandler обрабатывает HTTP запросы агрегированного портфеля.
//
// Endpoints:
// - GET /api/v1/portfolio - сводка: стоимость, изменение за 24ч, счета
// - GET /api/v1/portfolio/history?period=7d|30d|90d|1y - история стоимости
type PortfolioHandler struct {
	portfolioService service.PortfolioServiceInterface

	// interval - шаг бакетов истории (HISTORY_INTERVAL)
	interval time.Duration
}

// NewPortfolioHandler создает новый PortfolioHandler с внедрением зависимостей.
// Нулевой interval заменяется суточным шагом.
func NewPortfolioHandler(portfolioService service.PortfolioServiceInterface, interval time.Duration) *PortfolioHandler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &PortfolioHandler{
		portfolioService: portfolioService,
		interval:         interval,
	}
}

// GetPortfolio возвращает сводку портфеля.
//
// GET /api/v1/portfolio
//
// Response 200 OK:
//
//	{
//	  "total_value_usd": 12500.75,
//	  "change_24h": 150.25,
//	  "change_percent_24h": 1.22,
//	  "account_count": 4,
//	  "updated_at": "2025-08-20T10:00:00Z"
//	}
//
// Response 500 Internal Server Error:
//
//	{"error": "failed to get portfolio"}
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	if h.portfolioService == nil {
		writeError(w, http.StatusInternalServerError, "portfolio service not initialized", "")
		return
	}

	summary, err := h.portfolioService.GetSummary(userIDFromQuery(r))
	if err != nil {
		writeInternalError(w, r, "failed to get portfolio", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetHistory возвращает историю стоимости портфеля.
//
// GET /api/v1/portfolio/history?period=30d
//
// Query Parameters:
// - period (optional): "7d", "30d" (default), "90d", "1y"
//
// Response 200 OK:
//
//	[
//	  {"timestamp": "2025-08-18T00:00:00Z", "value": 12350.50},
//	  {"timestamp": "2025-08-19T00:00:00Z", "value": 12400.00},
//	  {"timestamp": "2025-08-20T00:00:00Z", "value": 12500.75}
//	]
//
// Несколько синхронизаций за день сведены к одной точке (последней).
//
// Response 400 Bad Request:
//
//	{"error": "invalid period", "valid_periods": ["7d", "30d", "90d", "1y"]}
func (h *PortfolioHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.portfolioService == nil {
		writeError(w, http.StatusInternalServerError, "portfolio service not initialized", "")
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = "30d"
	}

	lookback, ok := supportedPeriods[period]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":         "invalid period",
			"valid_periods": []string{"7d", "30d", "90d", "1y"},
		})
		return
	}

	now := time.Now().UTC()
	history, err := h.portfolioService.GetHistory(userIDFromQuery(r), now.Add(-lookback), now, h.interval)
	if err != nil {
		writeInternalError(w, r, "failed to get history", err)
		return
	}

	// Пустая история отдаётся как [], а не null
	if history == nil {
		history = []models.PortfolioPoint{}
	}

	writeJSON(w, http.StatusOK, history)
}
