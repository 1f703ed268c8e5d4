package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"folio/internal/models"
	"folio/internal/service"
)

// AccountHandler обрабатывает HTTP запросы списка счетов.
//
// Endpoints:
// - GET /api/v1/accounts - все счета пользователя
// - GET /api/v1/accounts/{id}/transactions - транзакции счёта
type AccountHandler struct {
	portfolioService service.PortfolioServiceInterface
	txRepo           service.TransactionRepositoryInterface
}

// NewAccountHandler создает новый AccountHandler с внедрением зависимостей.
func NewAccountHandler(portfolioService service.PortfolioServiceInterface, txRepo service.TransactionRepositoryInterface) *AccountHandler {
	return &AccountHandler{
		portfolioService: portfolioService,
		txRepo:           txRepo,
	}
}

// GetAccounts возвращает все счета пользователя.
//
// GET /api/v1/accounts
//
// Response 200 OK:
//
//	[
//	  {
//	    "id": 1,
//	    "provider": "simplefin",
//	    "name": "Chase Checking",
//	    "type": "checking",
//	    "balance_usd": 1000.50,
//	    "external_id": "ACT-123",
//	    "last_synced_at": "2025-08-20T10:00:00Z"
//	  },
//	  {
//	    "id": 2,
//	    "provider": "solana",
//	    "name": "Solana Wallet (7xKX...gAsU)",
//	    "type": "crypto",
//	    "balance_usd": null
//	  }
//	]
//
// balance_usd равен null, когда стоимость счёта неизвестна
// (например, ни один токен кошелька не удалось оценить).
func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	if h.portfolioService == nil {
		writeError(w, http.StatusInternalServerError, "portfolio service not initialized", "")
		return
	}

	accounts, err := h.portfolioService.GetAccounts(userIDFromQuery(r))
	if err != nil {
		writeInternalError(w, r, "failed to get accounts", err)
		return
	}

	if accounts == nil {
		accounts = []*models.Account{}
	}

	writeJSON(w, http.StatusOK, accounts)
}

// GetTransactions возвращает последние транзакции счёта.
//
// GET /api/v1/accounts/{id}/transactions?limit=50
//
// Response 200 OK:
//
//	[
//	  {
//	    "id": 10,
//	    "account_id": 1,
//	    "posted_at": "2025-08-19T15:30:00Z",
//	    "amount": -45.90,
//	    "description": "Grocery Store",
//	    "payee": "Whole Foods",
//	    "pending": false
//	  }
//	]
//
// Response 400 Bad Request:
//
//	{"error": "invalid account id"}
func (h *AccountHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	if h.txRepo == nil {
		writeError(w, http.StatusInternalServerError, "transaction repository not initialized", "")
		return
	}

	vars := mux.Vars(r)
	accountID, err := strconv.Atoi(vars["id"])
	if err != nil || accountID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid account id", "")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > 500 {
				limit = 500
			}
		}
	}

	txs, err := h.txRepo.GetByAccountID(accountID, limit)
	if err != nil {
		writeInternalError(w, r, "failed to get transactions", err)
		return
	}

	if txs == nil {
		txs = []*models.Transaction{}
	}

	writeJSON(w, http.StatusOK, txs)
}
