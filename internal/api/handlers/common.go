package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// ErrorResponse стандартный формат ответа об ошибке для всех API endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse стандартный формат успешного ответа
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// writeJSON сериализует payload с указанным статусом
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError отправляет ошибку в стандартном формате
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// writeInternalError логирует подробность ошибки на сервере, клиенту
// уходит только общее сообщение: внутренние детали наружу не утекают
func writeInternalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	log.Printf("[api] %s %s: %s: %v", r.Method, r.URL.Path, message, err)
	writeError(w, http.StatusInternalServerError, message, "")
}

// userIDFromQuery извлекает user_id из query string.
// Для инсталляции с одним пользователем по умолчанию 1.
func userIDFromQuery(r *http.Request) int {
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return id
		}
	}
	return 1
}
