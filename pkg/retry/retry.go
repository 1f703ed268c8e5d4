package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Config конфигурация для retry логики
//
// Экспоненциальный backoff с jitter:
// delay = min(BaseDelay * Multiplier^attempt + jitter, MaxDelay)
//
// Jitter добавляет случайность чтобы избежать "thundering herd",
// когда много клиентов retry'ят одновременно.
type Config struct {
	// MaxRetries - количество повторных попыток ПОСЛЕ первой
	// Всего выполняется 1 + MaxRetries попыток
	MaxRetries int

	// BaseDelay - базовая задержка экспоненциального backoff
	// По умолчанию: 500ms
	BaseDelay time.Duration

	// MaxDelay - максимальная задержка между попытками
	// По умолчанию: 30s
	MaxDelay time.Duration

	// Multiplier - множитель для экспоненциального роста
	// По умолчанию: 2.0 (удвоение после каждой попытки)
	Multiplier float64

	// JitterFactor - фактор случайности (0.0 - 1.0)
	// 0.0 = нет jitter, 1.0 = до 100% вариации
	// По умолчанию: 0.1 (10% вариации)
	JitterFactor float64

	// RetryIf - функция для определения нужно ли retry'ить ошибку
	// По умолчанию: retry все ошибки
	RetryIf func(error) bool

	// OnRetry - callback вызываемый перед каждым retry
	// Полезно для логирования
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultConfig возвращает конфигурацию по умолчанию
//
// Подходит для большинства запросов к внешним провайдерам:
// - 3 повторные попытки (4 всего)
// - Задержки: 500ms, 1s, 2s (+ jitter)
func DefaultConfig() Config {
	return Config{
		MaxRetries:   3,
		BaseDelay:    500 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// validate проверяет и устанавливает значения по умолчанию
func (c *Config) validate() {
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.JitterFactor < 0 {
		c.JitterFactor = 0
	}
	if c.JitterFactor > 1 {
		c.JitterFactor = 1
	}
}

// Delay вычисляет задержку перед retry с индексом attempt
//
// attempt = 0 для первого retry, 1 для второго и т.д.
// Экспоненциальный рост BaseDelay * Multiplier^attempt, ограничение MaxDelay,
// затем симметричный jitter +-JitterFactor.
func (c Config) Delay(attempt int) time.Duration {
	c.validate()

	delay := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt))

	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.JitterFactor > 0 {
		jitter := delay * c.JitterFactor * (rand.Float64()*2 - 1)
		delay += jitter
	}

	if delay < 0 {
		delay = 0
	}

	return time.Duration(delay)
}

// Do выполняет операцию с повторными попытками
//
// Параметры:
//   - ctx: контекст для отмены (timeout, cancel)
//   - operation: функция для выполнения
//   - cfg: конфигурация retry
//
// Возвращает:
//   - nil: операция успешна
//   - error: все попытки неудачны, возвращает последнюю ошибку
//
// Пример:
//
//	err := retry.Do(ctx, func() error {
//	    return provider.FetchAccounts(...)
//	}, retry.DefaultConfig())
func Do(ctx context.Context, operation func() error, cfg Config) error {
	cfg.validate()

	var lastErr error
	attempts := 1 + cfg.MaxRetries

	for attempt := 0; attempt < attempts; attempt++ {
		// Проверяем контекст перед каждой попыткой
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return lastErr
			}
			return ctx.Err()
		default:
		}

		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		// Терминальные ошибки не retry'им
		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return err
		}

		// Последняя попытка - не ждём
		if attempt >= attempts-1 {
			break
		}

		delay := cfg.Delay(attempt)

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, delay)
		}

		// Ждём с возможностью отмены
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return lastErr
		}
	}

	return lastErr
}

// DoWithResult выполняет операцию с результатом и retry
//
// Полезно когда операция возвращает значение:
//
//	accounts, err := retry.DoWithResult(ctx, func() ([]Account, error) {
//	    return provider.FetchAccounts(...)
//	}, retry.DefaultConfig())
func DoWithResult[T any](ctx context.Context, operation func() (T, error), cfg Config) (T, error) {
	var result T
	err := Do(ctx, func() error {
		var opErr error
		result, opErr = operation()
		return opErr
	}, cfg)
	return result, err
}

// ============================================================
// Классификация ошибок
// ============================================================

// RetryableError интерфейс для ошибок которые можно retry'ить
type RetryableError interface {
	error
	Retryable() bool
}

// IsRetryable проверяет можно ли retry'ить ошибку
//
// Возвращает true если:
// - Ошибка реализует RetryableError и Retryable() == true
// - Ошибка временная (Temporary() == true)
// - Ошибка содержит wrapped RetryableError
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryable RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	type temporary interface {
		Temporary() bool
	}
	var temp temporary
	if errors.As(err, &temp) {
		return temp.Temporary()
	}

	// По умолчанию - retry'им
	return true
}

// RetryIfNotContext не retry'ит ошибки контекста (cancel, timeout)
func RetryIfNotContext(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// ============================================================
// Wrapper errors
// ============================================================

// PermanentError оборачивает ошибку которую не нужно retry'ить
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

func (e *PermanentError) Retryable() bool {
	return false
}

// Permanent оборачивает ошибку в PermanentError
//
// Пример:
//
//	if resp.StatusCode == http.StatusBadRequest {
//	    return retry.Permanent(errors.New("invalid request"))
//	}
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// TemporaryError оборачивает ошибку которую нужно retry'ить
type TemporaryError struct {
	Err error
}

func (e *TemporaryError) Error() string {
	return e.Err.Error()
}

func (e *TemporaryError) Unwrap() error {
	return e.Err
}

func (e *TemporaryError) Retryable() bool {
	return true
}

func (e *TemporaryError) Temporary() bool {
	return true
}

// Temporary оборачивает ошибку в TemporaryError
//
// Пример:
//
//	if isConnectionReset(err) {
//	    return retry.Temporary(err)
//	}
func Temporary(err error) error {
	if err == nil {
		return nil
	}
	return &TemporaryError{Err: err}
}
