package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"folio/internal/repository"
	"folio/internal/service"
	"folio/pkg/utils"
)

// AuthHandler обрабатывает HTTP запросы аутентификации.
//
// Endpoints:
// - POST /api/v1/auth/signup - регистрация
// - POST /api/v1/auth/signin - вход
// - POST /api/v1/auth/simplefin - привязка SimpleFIN access URL
//
// Оба auth endpoint'а прикрыты лимитами на email (внутри сервиса);
// при превышении клиент получает 429 с полем retry_after_ms.
type AuthHandler struct {
	authService service.AuthServiceInterface
}

// NewAuthHandler создает новый AuthHandler с внедрением зависимостей.
func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// credentialsRequest - тело запроса signup/signin
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp регистрирует нового пользователя.
//
// POST /api/v1/auth/signup
// Body: {"email": "user@example.com", "password": "..."}
//
// Response 201 Created:
//
//	{"id": 1, "email": "user@example.com", "created_at": "..."}
//
// Response 400 Bad Request: невалидный email или короткий пароль
// Response 409 Conflict: email уже зарегистрирован
// Response 429 Too Many Requests: {"error": "...", "retry_after_ms": 60000}
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if h.authService == nil {
		writeError(w, http.StatusInternalServerError, "auth service not initialized", "")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.authService.SignUp(req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// SignIn проверяет учетные данные.
//
// POST /api/v1/auth/signin
// Body: {"email": "user@example.com", "password": "..."}
//
// Response 200 OK:
//
//	{"id": 1, "email": "user@example.com", "created_at": "..."}
//
// Response 401 Unauthorized: неверный email или пароль
// Response 429 Too Many Requests: {"error": "...", "retry_after_ms": 60000}
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if h.authService == nil {
		writeError(w, http.StatusInternalServerError, "auth service not initialized", "")
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.authService.SignIn(req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// connectRequest - тело запроса привязки SimpleFIN
type connectRequest struct {
	UserID    int    `json:"user_id"`
	AccessURL string `json:"access_url"`
}

// ConnectSimpleFIN сохраняет SimpleFIN access URL пользователя.
//
// POST /api/v1/auth/simplefin
// Body: {"user_id": 1, "access_url": "https://..."}
//
// Response 200 OK:
//
//	{"message": "simplefin connected"}
func (h *AuthHandler) ConnectSimpleFIN(w http.ResponseWriter, r *http.Request) {
	if h.authService == nil {
		writeError(w, http.StatusInternalServerError, "auth service not initialized", "")
		return
	}

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.UserID <= 0 {
		req.UserID = 1
	}

	if err := h.authService.ConnectSimpleFIN(req.UserID, req.AccessURL); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found", "")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to connect simplefin", "")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Message: "simplefin connected"})
}

// writeAuthError транслирует ошибки сервиса аутентификации в HTTP статусы
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	var rateErr *service.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":          "rate limit exceeded",
			"retry_after_ms": rateErr.RetryAfter.Milliseconds(),
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password", "")
	case errors.Is(err, repository.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "email already registered", "")
	case errors.Is(err, utils.ErrInvalidEmail), errors.Is(err, utils.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	default:
		writeInternalError(w, r, "internal error", err)
	}
}
