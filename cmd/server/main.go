package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/api"
	"folio/internal/config"
	"folio/internal/provider"
	"folio/internal/repository"
	"folio/internal/service"
	"folio/internal/websocket"
	"folio/pkg/ratelimit"
	"folio/pkg/utils"

	_ "github.com/lib/pq"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Структурированный logger
	logger := utils.InitLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	defer logger.Sync()

	// Инициализация базы данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	logger.Infow("connected to database", "dsn", cfg.Database.DSNWithoutPassword())

	// Инициализация репозиториев
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	txRepo := repository.NewTransactionRepository(db)

	encryptionKey := []byte(cfg.Security.EncryptionKey)

	// Инициализация провайдеров: retry-политика транспорта приходит
	// из конфигурации (MAX_RETRIES, RETRY_BACKOFF, REQUEST_TIMEOUT)
	transport := provider.NewTransport(provider.GetGlobalHTTPClient())
	transport.SetDefaults(provider.Options{
		MaxRetries: cfg.Sync.MaxRetries,
		BaseDelay:  cfg.Sync.RetryBackoff,
		Timeout:    cfg.Sync.RequestTimeout,
	})
	accessURLs := repository.NewAccessURLStore(userRepo, encryptionKey)
	oracle := provider.NewCoinGecko(transport, cfg.Providers.PriceOracleURL)

	deps := provider.Deps{
		Transport:     transport,
		AccessURLs:    accessURLs,
		WalletAddress: cfg.Providers.SolanaWallet,
		RPCEndpoint:   cfg.Providers.SolanaRPCEndpoint,
		Oracle:        oracle,
	}

	var providers []provider.Provider
	for _, kind := range provider.SupportedProviders {
		p, err := provider.New(string(kind), deps)
		if err != nil {
			logger.Fatalw("failed to create provider", "provider", kind, "error", err)
		}
		providers = append(providers, p)
	}

	// Общий limiter для auth и sync endpoints
	limiter := ratelimit.NewLimiter()

	// Инициализация сервисов
	syncService := service.NewSyncService(providers, userRepo, accountRepo, snapshotRepo, txRepo)
	portfolioService := service.NewPortfolioService(accountRepo, snapshotRepo)
	authService := service.NewAuthService(userRepo, limiter, encryptionKey)

	// Инициализация WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	syncService.SetWebSocketHub(hub)
	syncService.SetSummarySource(portfolioService)

	// Настройка HTTP роутера
	router := api.SetupRoutes(&api.Dependencies{
		SyncService:      syncService,
		PortfolioService: portfolioService,
		AuthService:      authService,
		TransactionRepo:  txRepo,
		Limiter:          limiter,
		SyncToken:        cfg.Security.SyncToken,
		HistoryInterval:  cfg.Sync.HistoryInterval,
		Logger:           logger,
		Hub:              hub,
	})

	// HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера в отдельной горутине
	go func() {
		logger.Infow("starting server", "addr", server.Addr, "https", cfg.Server.UseHTTPS)
		if cfg.Server.UseHTTPS {
			if err := server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile); err != nil && err != http.ErrServerClosed {
				logger.Fatalw("server failed", "error", err)
			}
		} else {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalw("server failed", "error", err)
			}
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalw("server forced to shutdown", "error", err)
	}

	logger.Infow("server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
