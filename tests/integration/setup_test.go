// Package integration contains integration tests for the portfolio tracker.
//
// These tests verify the correct interaction between components:
// - API integration tests: full HTTP request cycle
// - WebSocket tests: connection, broadcast messaging
// - Database tests: repository behavior against a real PostgreSQL
//
// Tests skip automatically when the test database is unreachable.
// Run with: go test ./tests/integration/...
package integration

import (
	"database/sql"
	"fmt"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"folio/internal/api"
	"folio/internal/repository"
	"folio/internal/service"
	"folio/internal/websocket"
	"folio/pkg/ratelimit"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

// testEncryptionKey is exactly 32 bytes as required by AES-256
const testEncryptionKey = "integration-test-key-32-bytes!!!"

// TestConfig contains configuration for integration tests
type TestConfig struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// TestServer encapsulates all components needed for integration testing
type TestServer struct {
	DB       *sql.DB
	Router   *mux.Router
	Server   *httptest.Server
	Hub      *websocket.Hub
	Repos    *TestRepositories
	Services *TestServices
	Cleanup  func()
}

// TestRepositories contains all repository instances for testing
type TestRepositories struct {
	User        *repository.UserRepository
	Account     *repository.AccountRepository
	Snapshot    *repository.SnapshotRepository
	Transaction *repository.TransactionRepository
}

// TestServices contains all service instances for testing
type TestServices struct {
	Portfolio *service.PortfolioService
	Auth      *service.AuthService
}

// getTestConfig returns configuration from environment variables or defaults
func getTestConfig() TestConfig {
	return TestConfig{
		DBDriver:   getEnv("TEST_DB_DRIVER", "postgres"),
		DBHost:     getEnv("TEST_DB_HOST", "localhost"),
		DBPort:     getEnv("TEST_DB_PORT", "5432"),
		DBName:     getEnv("TEST_DB_NAME", "folio_test"),
		DBUser:     getEnv("TEST_DB_USER", "postgres"),
		DBPassword: getEnv("TEST_DB_PASSWORD", "postgres"),
		DBSSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) (*sql.DB, func()) {
	config := getTestConfig()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName, config.DBSSLMode,
	)

	db, err := sql.Open(config.DBDriver, connStr)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil, func() {}
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Skipf("Skipping integration test: cannot ping database: %v", err)
		return nil, func() {}
	}

	// Set connection pool settings
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return db, cleanup
}

// SetupTestServer creates a complete test server with all components
func SetupTestServer(t *testing.T) *TestServer {
	db, dbCleanup := SetupTestDB(t)
	if db == nil {
		return nil
	}

	// Initialize tables
	if err := initTestTables(db); err != nil {
		t.Skipf("Skipping integration test: cannot initialize tables: %v", err)
		return nil
	}

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create repositories
	repos := &TestRepositories{
		User:        repository.NewUserRepository(db),
		Account:     repository.NewAccountRepository(db),
		Snapshot:    repository.NewSnapshotRepository(db),
		Transaction: repository.NewTransactionRepository(db),
	}

	// Create services
	limiter := ratelimit.NewLimiter()
	services := &TestServices{
		Portfolio: service.NewPortfolioService(repos.Account, repos.Snapshot),
		Auth:      service.NewAuthService(repos.User, limiter, []byte(testEncryptionKey)),
	}

	// Setup router. SyncService is intentionally absent: integration
	// tests never call external provider APIs.
	deps := &api.Dependencies{
		PortfolioService: services.Portfolio,
		AuthService:      services.Auth,
		TransactionRepo:  repos.Transaction,
		Limiter:          limiter,
		Hub:              hub,
	}
	router := api.SetupRoutes(deps)

	// Create test server
	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		hub.Stop()
		cleanupTestTables(db)
		dbCleanup()
	}

	return &TestServer{
		DB:       db,
		Router:   router,
		Server:   server,
		Hub:      hub,
		Repos:    repos,
		Services: services,
		Cleanup:  cleanup,
	}
}

// initTestTables creates or truncates tables for testing
func initTestTables(db *sql.DB) error {
	// Create tables if not exist
	tables := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			simplefin_access_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			user_id INT REFERENCES users(id) ON DELETE CASCADE,
			provider VARCHAR(20) NOT NULL,
			name VARCHAR(255) NOT NULL,
			type VARCHAR(20) NOT NULL DEFAULT 'other',
			balance_usd DECIMAL(20, 2),
			external_id VARCHAR(255) NOT NULL,
			metadata JSONB DEFAULT '{}',
			last_synced_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE (user_id, provider, external_id)
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id SERIAL PRIMARY KEY,
			account_id INT REFERENCES accounts(id) ON DELETE CASCADE,
			value_usd DECIMAL(20, 2) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id SERIAL PRIMARY KEY,
			account_id INT REFERENCES accounts(id) ON DELETE CASCADE,
			external_id VARCHAR(255) NOT NULL,
			posted_at TIMESTAMP NOT NULL,
			amount DECIMAL(20, 2) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			payee TEXT NOT NULL DEFAULT '',
			memo TEXT NOT NULL DEFAULT '',
			pending BOOLEAN NOT NULL DEFAULT false,
			UNIQUE (account_id, external_id)
		)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	cleanupTestTables(db)

	return nil
}

// cleanupTestTables truncates all test tables
func cleanupTestTables(db *sql.DB) {
	tables := []string{
		"transactions",
		"snapshots",
		"accounts",
		"users",
	}

	for _, table := range tables {
		db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
	}
}

// TruncateTable truncates a specific table for testing
func TruncateTable(db *sql.DB, tableName string) error {
	_, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", tableName))
	return err
}
