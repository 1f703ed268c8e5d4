package middleware

import (
	"net/http"
	"time"

	"folio/pkg/utils"
)

// Logging - middleware для логирования HTTP запросов
//
// Назначение:
// Логирует все входящие HTTP запросы через структурированный logger
// (uber-go/zap). Формат и уровень записей задаются конфигурацией
// приложения (LOG_LEVEL, LOG_FORMAT).
//
// Поля каждой записи:
// - method: HTTP метод (GET, POST, ...)
// - path: путь запроса
// - status: статус код ответа
// - duration: время обработки запроса
// - remote: адрес клиента
// - bytes: размер ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logging возвращает middleware поверх переданного logger'а.
// nil заменяется logger'ом по умолчанию, чтобы тестовые роутеры
// не требовали полной инициализации приложения.
func Logging(logger *utils.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = utils.InitLogger(utils.LogConfig{})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap ResponseWriter чтобы захватить status code
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			logger.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration", time.Since(start).String(),
				"remote", r.RemoteAddr,
				"bytes", wrapped.written,
			)
		})
	}
}
