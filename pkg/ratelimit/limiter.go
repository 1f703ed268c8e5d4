package ratelimit

import (
	"sync"
	"time"
)

// Limiter - sliding window rate limiter для контроля частоты попыток по ключу
//
// Алгоритм Sliding Window:
// - Для каждого ключа хранится список timestamp'ов попыток
// - Окно непрерывно "скользит": учитываются только попытки за последние window
// - Попытки старше окна удаляются лениво при каждой проверке (не по таймеру)
// - Если попыток в окне меньше лимита, попытка записывается и разрешается
// - Если лимит исчерпан, попытка НЕ записывается и возвращается время ожидания
//
// Преимущества перед fixed buckets:
// - Нет "скачка" лимита на границе интервала
// - Точное время до следующей разрешённой попытки
//
// Ключи полностью независимы: email, IP или операционный ключ.
// Глобального лимита нет.
//
// Использование:
//
//	limiter := NewLimiter()
//	res := limiter.CheckLimit("user@example.com", 5, 15*time.Minute)
//	if !res.Allowed {
//	    // отдать пользователю res.RetryAfter
//	}
type Limiter struct {
	// attempts: ключ -> упорядоченный список timestamp'ов попыток.
	// Инвариант: после prune все значения лежат в (now - window, now].
	attempts map[string][]time.Time
	mu       sync.Mutex

	// now позволяет подменять источник времени в тестах
	now func() time.Time
}

// Result - результат проверки лимита
type Result struct {
	// Allowed - разрешена ли попытка
	Allowed bool `json:"allowed"`

	// RetryAfter - через сколько освободится слот (только при отказе, всегда > 0)
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// NewLimiter создаёт новый limiter
//
// Каждая политика (sign-in, sign-up, sync) получает собственный экземпляр,
// который конструируется при старте процесса и передаётся по ссылке.
// Скрытых глобальных синглтонов нет.
func NewLimiter() *Limiter {
	return &Limiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// CheckLimit проверяет и регистрирует попытку для ключа
//
// Параметры:
//   - key: произвольный строковый ключ (нормализованный email, IP, имя операции)
//   - maxAttempts: максимум попыток в окне
//   - window: длительность скользящего окна
//
// Поведение:
//  1. Удаляются попытки с timestamp <= now - window (левая граница окна)
//  2. Если оставшихся попыток < maxAttempts: текущий момент записывается
//     как новая попытка, Allowed = true
//  3. Иначе попытка НЕ записывается, Allowed = false,
//     RetryAfter = oldestRemaining + window - now (> 0)
//
// Подсчёт и запись выполняются атомарно под mutex'ом, поэтому
// конкурентные вызовы с общим limiter'ом не приводят к over-admission.
func (l *Limiter) CheckLimit(key string, maxAttempts int, window time.Duration) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	// Ленивый prune: отбрасываем всё, что вышло за левую границу окна.
	// Список упорядочен по возрастанию, достаточно найти первую живую запись.
	stamps := l.attempts[key]
	idx := 0
	for idx < len(stamps) && !stamps[idx].After(cutoff) {
		idx++
	}
	stamps = stamps[idx:]

	if len(stamps) < maxAttempts {
		l.attempts[key] = append(stamps, now)
		return Result{Allowed: true}
	}

	// Лимит исчерпан: попытку не записываем.
	// Слот освободится, когда самая старая учтённая попытка выйдет из окна.
	l.attempts[key] = stamps
	retryAfter := stamps[0].Add(window).Sub(now)

	return Result{
		Allowed:    false,
		RetryAfter: retryAfter,
	}
}

// Reset сбрасывает состояние ключа
//
// Используется после успешной аутентификации, чтобы не штрафовать
// пользователя за прошлые неудачные попытки.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Len возвращает количество отслеживаемых ключей
// Полезно для мониторинга и отладки
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

// ============================================================
// Политики лимитирования
// ============================================================

// Policy - пара (maxAttempts, window) для конкретного сценария
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Предопределённые политики.
// Ключ для SignIn/SignUp - нормализованный email, для Sync - фиксированный
// общий ключ (инсталляции с одним пользователем).
var (
	// SignInPolicy - вход: 5 попыток за 15 минут на email
	SignInPolicy = Policy{MaxAttempts: 5, Window: 15 * time.Minute}

	// SignUpPolicy - регистрация: 10 попыток за 60 минут на email
	SignUpPolicy = Policy{MaxAttempts: 10, Window: 60 * time.Minute}

	// SyncPolicy - ручной запуск синхронизации: 10 попыток за 15 минут
	// под одним общим ключом
	SyncPolicy = Policy{MaxAttempts: 10, Window: 15 * time.Minute}
)

// SyncKey - общий ключ для лимита запуска синхронизации
const SyncKey = "global:sync"

// Check применяет политику к ключу на указанном limiter'е
func (p Policy) Check(l *Limiter, key string) Result {
	return l.CheckLimit(key, p.MaxAttempts, p.Window)
}
