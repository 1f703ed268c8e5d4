package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"folio/pkg/crypto"
)

// debugUsername и debugPassword для защиты debug endpoints.
// Загружаются из переменных окружения DEBUG_USERNAME и DEBUG_PASSWORD.
// Если не установлены, debug endpoints будут недоступны в production.
var (
	debugUsername = os.Getenv("DEBUG_USERNAME")
	debugPassword = os.Getenv("DEBUG_PASSWORD")
)

// DebugAuth - middleware для защиты debug/pprof endpoints
//
// Назначение:
// Защищает debug endpoints (/debug/pprof/*) от неавторизованного доступа.
// Использует HTTP Basic Authentication для простоты.
//
// Безопасность:
// - Использует constant-time сравнение для предотвращения timing attacks
// - В production ОБЯЗАТЕЛЬНО установить DEBUG_USERNAME и DEBUG_PASSWORD
//
// Использование:
//
//	debug := router.PathPrefix("/debug").Subrouter()
//	debug.Use(middleware.DebugAuth)
func DebugAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Если credentials не настроены, запрещаем доступ в production
		if debugUsername == "" || debugPassword == "" {
			// В development (если явно не настроено) разрешаем доступ
			if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, "Debug endpoints disabled. Set DEBUG_USERNAME and DEBUG_PASSWORD.", http.StatusForbidden)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Debug endpoints"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		// Constant-time сравнение для предотвращения timing attacks
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(debugUsername)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(debugPassword)) == 1

		if !userMatch || !passMatch {
			w.Header().Set("WWW-Authenticate", `Basic realm="Debug endpoints"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// BearerAuth - middleware аутентификации по статическому bearer токену
//
// Назначение:
// Защищает endpoint запуска синхронизации. Токен задаётся через
// SYNC_TOKEN и сравнивается constant-time, чтобы по времени ответа
// нельзя было подбирать значение посимвольно.
//
// Поведение:
// - Токен не сконфигурирован: 500 "server not configured" - endpoint
//   отключён на стороне сервера, handler не вызывается
// - Заголовок отсутствует или не в форме "Bearer <token>": 401
// - Токен не совпал: 401
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "server not configured",
				})
				return
			}

			header := r.Header.Get("Authorization")
			provided, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || !crypto.SecureCompare(provided, token) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "unauthorized",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
