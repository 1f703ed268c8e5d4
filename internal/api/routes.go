package api

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"folio/internal/api/handlers"
	"folio/internal/api/middleware"
	"folio/internal/service"
	"folio/internal/websocket"
	"folio/pkg/ratelimit"
	"folio/pkg/utils"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	SyncService      service.SyncServiceInterface
	PortfolioService service.PortfolioServiceInterface
	AuthService      service.AuthServiceInterface
	TransactionRepo  service.TransactionRepositoryInterface

	// Limiter общий для всех rate-limited endpoints
	Limiter *ratelimit.Limiter

	// SyncToken - bearer токен endpoint'а синхронизации (пусто = отключён)
	SyncToken string

	// HistoryInterval - шаг бакетов /portfolio/history (HISTORY_INTERVAL,
	// ноль = сутки)
	HistoryInterval time.Duration

	// Logger - структурированный logger для HTTP middleware
	Logger *utils.Logger

	// Hub - WebSocket hub для real-time обновлений
	Hub *websocket.Hub
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех API endpoints.
// Регистрирует handlers для каждого маршрута.
// Применяет middleware к группам маршрутов.
// Организует версионирование API (v1).
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── /sync
//	│   └── POST / - запустить синхронизацию (Bearer + rate limit)
//	├── /portfolio
//	│   ├── GET / - сводка портфеля
//	│   └── GET /history - история стоимости
//	├── /accounts
//	│   ├── GET / - список счетов
//	│   └── GET /{id}/transactions - транзакции счёта
//	└── /auth
//	    ├── POST /signup - регистрация
//	    ├── POST /signin - вход
//	    └── POST /simplefin - привязка SimpleFIN
//
// /ws/
//
//	└── /stream - WebSocket для real-time обновлений
//
// /metrics - Prometheus метрики
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
// 4. BearerAuth (только для /sync)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	var logger *utils.Logger
	if deps != nil {
		logger = deps.Logger
	}

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging(logger))
	router.Use(middleware.CORS)

	// Создание handlers с внедрением зависимостей
	var syncHandler *handlers.SyncHandler
	if deps != nil && deps.SyncService != nil {
		syncHandler = handlers.NewSyncHandler(deps.SyncService, deps.Limiter)
	}

	var portfolioHandler *handlers.PortfolioHandler
	if deps != nil && deps.PortfolioService != nil {
		portfolioHandler = handlers.NewPortfolioHandler(deps.PortfolioService, deps.HistoryInterval)
	}

	var accountHandler *handlers.AccountHandler
	if deps != nil && deps.PortfolioService != nil {
		accountHandler = handlers.NewAccountHandler(deps.PortfolioService, deps.TransactionRepo)
	}

	var authHandler *handlers.AuthHandler
	if deps != nil && deps.AuthService != nil {
		authHandler = handlers.NewAuthHandler(deps.AuthService)
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Sync route: собственный subrouter, потому что только он
	// требует bearer токен
	if syncHandler != nil {
		sync := api.PathPrefix("/sync").Subrouter()
		sync.Use(middleware.BearerAuth(deps.SyncToken))
		sync.HandleFunc("", syncHandler.Sync).Methods("POST")
	}

	// Portfolio routes
	if portfolioHandler != nil {
		api.HandleFunc("/portfolio", portfolioHandler.GetPortfolio).Methods("GET")
		api.HandleFunc("/portfolio/history", portfolioHandler.GetHistory).Methods("GET")
	}

	// Account routes
	if accountHandler != nil {
		api.HandleFunc("/accounts", accountHandler.GetAccounts).Methods("GET")
		api.HandleFunc("/accounts/{id}/transactions", accountHandler.GetTransactions).Methods("GET")
	}

	// Auth routes
	if authHandler != nil {
		api.HandleFunc("/auth/signup", authHandler.SignUp).Methods("POST")
		api.HandleFunc("/auth/signin", authHandler.SignIn).Methods("POST")
		api.HandleFunc("/auth/simplefin", authHandler.ConnectSimpleFIN).Methods("POST")
	}

	// WebSocket route
	if deps != nil && deps.Hub != nil {
		router.HandleFunc("/ws/stream", deps.Hub.ServeWS)
	}

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Debug endpoints под Basic Auth
	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(middleware.DebugAuth)
	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
