package crypto

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Ошибки хеширования
var (
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordMismatch = errors.New("password does not match hash")
	ErrInvalidHash      = errors.New("invalid password hash format")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length of 72 bytes")
)

// DefaultCost - стоимость хеширования по умолчанию (рекомендуемое значение)
// Более высокое значение = больше времени на хеширование = более безопасно
const DefaultCost = 12

// MaxPasswordLength - максимальная длина пароля для bcrypt (72 байта)
const MaxPasswordLength = 72

// HashPassword хеширует пароль пользователя с использованием bcrypt
// Автоматически генерирует криптографически стойкий salt
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	// bcrypt ограничен 72 байтами
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPassword проверяет соответствие пароля хешу
// bcrypt выполняет constant-time comparison для защиты от timing attacks
func VerifyPassword(password, hash string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if hash == "" {
		return ErrInvalidHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		// Невалидный формат хеша или другая ошибка
		return ErrInvalidHash
	}

	return nil
}

// CheckPasswordMatch проверяет соответствие пароля хешу и возвращает bool
// Удобная обёртка для использования в условиях
func CheckPasswordMatch(password, hash string) bool {
	return VerifyPassword(password, hash) == nil
}

// SecureCompare сравнивает два секрета за константное время
//
// Используется для проверки Bearer-токена sync endpoint'а.
// Несовпадение длины отклоняется (ConstantTimeCompare в этом случае
// возвращает 0, явная проверка фиксирует контракт).
// Обычное сравнение строк здесь недопустимо: по времени ответа можно
// подобрать префикс токена.
func SecureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
