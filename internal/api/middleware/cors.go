package middleware

import (
	"net/http"
	"os"
	"strings"
)

// defaultOrigins - dev origins дашборда портфеля, разрешённые всегда
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
}

// allowedOrigins - итоговый набор разрешённых origins.
// В production дополняется переменной CORS_ALLOWED_ORIGINS.
var allowedOrigins = buildOriginSet(os.Getenv("CORS_ALLOWED_ORIGINS"))

// buildOriginSet собирает набор origins из default'ов
// и comma-separated списка из окружения
func buildOriginSet(extra string) map[string]bool {
	origins := make(map[string]bool, len(defaultOrigins))
	for _, origin := range defaultOrigins {
		origins[origin] = true
	}
	for _, origin := range strings.Split(extra, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins[origin] = true
		}
	}
	return origins
}

// isOriginAllowed проверяет, разрешен ли origin
func isOriginAllowed(origin string) bool {
	if origin == "" {
		return false
	}
	return allowedOrigins[origin]
}

// CORS - middleware для настройки Cross-Origin Resource Sharing
//
// Назначение:
// Позволяет браузерному дашборду портфеля ходить на API с другого
// домена: сводка и история читаются GET'ами, auth и sync - POST'ами,
// других методов API не отдаёт.
//
// Поведение:
// - Разрешённый origin получает конкретный Access-Control-Allow-Origin
//   и credentials (Authorization заголовок для /sync)
// - Запрос без Origin (curl, серверные клиенты) получает "*"
// - Неразрешённый origin не получает заголовков вовсе - браузер
//   заблокирует ответ сам
// - Preflight (OPTIONS) отвечается сразу, с кешем на 24 часа
//
// Конфигурация:
// - CORS_ALLOWED_ORIGINS (через запятую) дополняет dev origins
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if isOriginAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
