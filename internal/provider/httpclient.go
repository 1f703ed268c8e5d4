// Package provider предоставляет унифицированный интерфейс для работы
// с провайдерами финансовых данных.
package provider

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPClientConfig содержит настройки HTTP клиента для провайдеров
type HTTPClientConfig struct {
	// Таймауты соединения
	ConnectTimeout time.Duration // таймаут установки TCP соединения (default: 5s)
	ReadTimeout    time.Duration // таймаут чтения ответа (default: 15s)
	TotalTimeout   time.Duration // общий таймаут операции (default: 60s)

	// Connection pooling
	MaxIdleConns        int           // максимум idle соединений (default: 50)
	MaxIdleConnsPerHost int           // максимум idle соединений на хост (default: 10)
	IdleConnTimeout     time.Duration // таймаут простоя соединения (default: 90s)

	// TLS
	TLSHandshakeTimeout time.Duration // таймаут TLS handshake (default: 5s)

	// Keep-Alive
	KeepAliveInterval time.Duration // интервал Keep-Alive (default: 30s)
}

// DefaultHTTPClientConfig возвращает конфигурацию по умолчанию
//
// Провайдеры (SimpleFIN, Solana RPC, price oracle) - медленные внешние
// API, поэтому read timeout просторнее, чем у торговых клиентов.
// Per-attempt deadline задаёт Transport через context, TotalTimeout
// здесь - страховочный fallback.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    15 * time.Second,
		TotalTimeout:   60 * time.Second,

		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout: 5 * time.Second,
		KeepAliveInterval:   30 * time.Second,
	}
}

// HTTPClient представляет HTTP клиент с connection pooling для провайдеров
type HTTPClient struct {
	client *http.Client
	config HTTPClientConfig
}

// globalClient - глобальный HTTP клиент для переиспользования соединений
var (
	globalClient     *HTTPClient
	globalClientOnce sync.Once
)

// GetGlobalHTTPClient возвращает глобальный HTTP клиент с настройками по умолчанию
// Использует singleton pattern для переиспользования connection pool
func GetGlobalHTTPClient() *HTTPClient {
	globalClientOnce.Do(func() {
		globalClient = NewHTTPClient(DefaultHTTPClientConfig())
	})
	return globalClient
}

// NewHTTPClient создаёт новый HTTP клиент с заданной конфигурацией
func NewHTTPClient(config HTTPClientConfig) *HTTPClient {
	dialer := &net.Dialer{
		Timeout:   config.ConnectTimeout,
		KeepAlive: config.KeepAliveInterval,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		// Connection pooling (Keep-Alive)
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,

		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},

		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: config.ReadTimeout,
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.TotalTimeout,
	}

	return &HTTPClient{
		client: client,
		config: config,
	}
}

// Do выполняет HTTP запрос
func (hc *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return hc.client.Do(req)
}

// DoWithTimeout выполняет HTTP запрос с кастомным таймаутом
func (hc *HTTPClient) DoWithTimeout(req *http.Request, timeout time.Duration) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()
	return hc.client.Do(req.WithContext(ctx))
}

// GetClient возвращает базовый http.Client для совместимости
func (hc *HTTPClient) GetClient() *http.Client {
	return hc.client
}

// Close закрывает все idle соединения
// Должен вызываться при graceful shutdown
func (hc *HTTPClient) Close() {
	if transport, ok := hc.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// CloseGlobalClient закрывает глобальный HTTP клиент
// Вызывается при graceful shutdown приложения
func CloseGlobalClient() {
	if globalClient != nil {
		globalClient.Close()
	}
}
