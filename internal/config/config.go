package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Providers ProvidersConfig
	Sync      SyncConfig
	Logging   LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port     int
	Host     string
	UseHTTPS bool
	CertFile string
	KeyFile  string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// SecurityConfig - настройки безопасности
type SecurityConfig struct {
	// SyncToken - bearer токен для endpoint синхронизации.
	// Пустое значение означает, что endpoint отключён.
	SyncToken     string
	EncryptionKey string
}

// ProvidersConfig - настройки внешних провайдеров данных
type ProvidersConfig struct {
	// Solana
	SolanaWallet      string
	SolanaRPCEndpoint string

	// CoinGecko (пусто = публичный API)
	PriceOracleURL string
}

// SyncConfig - настройки процесса синхронизации
type SyncConfig struct {
	// Retry логика для внешних запросов
	MaxRetries   int
	RetryBackoff time.Duration

	// Таймаут одной попытки запроса к провайдеру
	RequestTimeout time.Duration

	// Интервал бакетов истории портфеля
	HistoryInterval time.Duration
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level  string
	Format string
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnvAsInt("SERVER_PORT", 8080),
			Host:     getEnv("SERVER_HOST", "0.0.0.0"),
			UseHTTPS: getEnvAsBool("USE_HTTPS", false),
			CertFile: getEnv("CERT_FILE", ""),
			KeyFile:  getEnv("KEY_FILE", ""),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "folio"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Security: SecurityConfig{
			SyncToken:     getEnv("SYNC_TOKEN", ""),
			EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		},
		Providers: ProvidersConfig{
			SolanaWallet:      getEnv("SOLANA_WALLET", ""),
			SolanaRPCEndpoint: getEnv("SOLANA_RPC_ENDPOINT", "https://api.mainnet-beta.solana.com"),
			PriceOracleURL:    getEnv("PRICE_ORACLE_URL", ""),
		},
		Sync: SyncConfig{
			MaxRetries:      getEnvAsInt("MAX_RETRIES", 3),
			RetryBackoff:    getEnvAsDuration("RETRY_BACKOFF", 500*time.Millisecond),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
			HistoryInterval: getEnvAsDuration("HISTORY_INTERVAL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Валидация критичных параметров безопасности
	if err := cfg.validateSecurity(); err != nil {
		return nil, err
	}

	// Валидация числовых диапазонов
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateSecurity проверяет параметры безопасности
func (c *Config) validateSecurity() error {
	// ENCRYPTION_KEY обязателен для шифрования SimpleFIN access URL
	if c.Security.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required for encrypting provider credentials")
	}

	if len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	// SYNC_TOKEN опционален (endpoint отключён без него),
	// но если задан - должен быть достаточно длинным
	if c.Security.SyncToken != "" && len(c.Security.SyncToken) < 16 {
		return fmt.Errorf("SYNC_TOKEN must be at least 16 characters")
	}

	return nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	// Валидация портов
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	// Валидация retry параметров
	if c.Sync.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES cannot be negative, got %d", c.Sync.MaxRetries)
	}

	if c.Sync.MaxRetries > 10 {
		return fmt.Errorf("MAX_RETRIES should not exceed 10, got %d", c.Sync.MaxRetries)
	}

	// Валидация таймаутов (должны быть положительными)
	if c.Sync.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", c.Sync.RequestTimeout)
	}

	if c.Sync.HistoryInterval <= 0 {
		return fmt.Errorf("HISTORY_INTERVAL must be positive, got %v", c.Sync.HistoryInterval)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
