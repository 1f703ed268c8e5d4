package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"folio/pkg/crypto"
	"folio/pkg/ratelimit"
	"folio/pkg/utils"

	"folio/internal/models"
)

// Ошибки сервиса аутентификации
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// RateLimitError сообщает, через сколько можно повторить запрос
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %v", e.RetryAfter.Round(time.Second))
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrRateLimited)
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// AuthService предоставляет бизнес-логику аутентификации.
//
// Функции:
// - SignUp: регистрация с валидацией email/пароля и bcrypt хэшированием
// - SignIn: вход с защитой от перебора паролей
// - ConnectSimpleFIN: привязка SimpleFIN access URL (хранится зашифрованным)
//
// Лимиты:
// - SignIn: 5 попыток / 15 минут на email
// - SignUp: 10 попыток / 60 минут на email
// Ключ лимита - нормализованный email, поэтому "User@X" и "user@x"
// считаются одним и тем же ключом.
type AuthService struct {
	userRepo      UserRepositoryInterface
	limiter       *ratelimit.Limiter
	encryptionKey []byte
}

// NewAuthService создает новый экземпляр AuthService
func NewAuthService(userRepo UserRepositoryInterface, limiter *ratelimit.Limiter, encryptionKey []byte) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		limiter:       limiter,
		encryptionKey: encryptionKey,
	}
}

// SignUp регистрирует нового пользователя.
//
// Email нормализуется перед всеми проверками. При превышении лимита
// возвращается *RateLimitError с точным временем повтора.
func (s *AuthService) SignUp(email, password string) (*models.User, error) {
	email = utils.NormalizeEmail(email)

	if res := ratelimit.SignUpPolicy.Check(s.limiter, "signup:"+email); !res.Allowed {
		authRejections.WithLabelValues("signup").Inc()
		return nil, &RateLimitError{RetryAfter: res.RetryAfter}
	}

	if err := utils.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	log.Printf("[auth] registered user %d (%s)", user.ID, user.Email)
	return user, nil
}

// SignIn проверяет учетные данные пользователя.
//
// Несуществующий email и неверный пароль неразличимы снаружи:
// оба дают ErrInvalidCredentials.
func (s *AuthService) SignIn(email, password string) (*models.User, error) {
	email = utils.NormalizeEmail(email)

	if res := ratelimit.SignInPolicy.Check(s.limiter, "signin:"+email); !res.Allowed {
		authRejections.WithLabelValues("signin").Inc()
		return nil, &RateLimitError{RetryAfter: res.RetryAfter}
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !crypto.CheckPasswordMatch(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ConnectSimpleFIN сохраняет SimpleFIN access URL пользователя.
// URL содержит встроенные credentials, поэтому в БД попадает
// только зашифрованным AES-256-GCM.
func (s *AuthService) ConnectSimpleFIN(userID int, accessURL string) error {
	if accessURL == "" {
		return errors.New("access url is required")
	}

	encrypted, err := crypto.Encrypt(accessURL, s.encryptionKey)
	if err != nil {
		return err
	}

	return s.userRepo.UpdateAccessURL(userID, encrypted)
}
