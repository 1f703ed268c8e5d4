package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"folio/pkg/retry"
)

// transport.go - устойчивый HTTP транспорт для обращений к провайдерам
//
// Назначение:
// Оборачивает HTTP вызов ограниченными повторами с экспоненциальным
// backoff + jitter, учётом заголовка Retry-After и per-attempt таймаутом.
//
// Классификация исходов каждой попытки - закрытое множество вариантов,
// обрабатываемое одним диспетчером (вместо разбросанных условий):
//   - outcomeSuccess:           2xx/3xx - вернуть ответ
//   - outcomeRetryableResponse: 429 или 5xx - повторить
//   - outcomeTerminalResponse:  прочие 4xx - вернуть ответ немедленно
//   - outcomeRetryableFault:    transient сетевая ошибка - повторить
//   - outcomeTerminalFault:     прочие ошибки - пробросить немедленно
//
// Асимметрия при исчерпании попыток принципиальна:
// HTTP-неудача - это значение (caller смотрит статус),
// сетевое исключение - это ошибка (пробрасывается).

// Ошибки транспорта
var (
	ErrRequestFailed = errors.New("provider request failed")
)

// outcome - результат классификации одной попытки
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryableResponse
	outcomeTerminalResponse
	outcomeRetryableFault
	outcomeTerminalFault
)

// NoRetries - явный запрос единственной попытки без повторов.
// Нулевое значение MaxRetries означает "не задано" и заменяется
// default'ом, поэтому отказ от повторов выражается отрицательным числом.
const NoRetries = -1

// Options - параметры одного вызова через транспорт
type Options struct {
	// MaxRetries - количество повторов после первой попытки.
	// 0 - не задано (берётся default транспорта, затем 3),
	// NoRetries - ровно одна попытка.
	MaxRetries int

	// BaseDelay - база экспоненциального backoff (default: 500ms)
	BaseDelay time.Duration

	// Timeout - deadline одной попытки (default: 10s)
	// Превышение классифицируется как retryable сетевая ошибка
	Timeout time.Duration

	// Label - метка для диагностики в логах ("[simplefin]", "[solana-rpc]")
	Label string
}

// merge подставляет default'ы транспорта вместо незаданных полей.
// Явные значения вызова (включая NoRetries) имеют приоритет.
func (o *Options) merge(base Options) {
	if o.MaxRetries == 0 {
		o.MaxRetries = base.MaxRetries
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = base.BaseDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = base.Timeout
	}
}

// defaults устанавливает значения по умолчанию
func (o *Options) defaults() {
	switch {
	case o.MaxRetries < 0:
		o.MaxRetries = 0
	case o.MaxRetries == 0:
		o.MaxRetries = 3
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Label == "" {
		o.Label = "transport"
	}
}

// Transport выполняет HTTP запросы с retry политикой
//
// Настраивается один раз при старте (SetDefaults), после этого
// mutable состояния между вызовами нет - безопасен для
// конкурентного использования несколькими адаптерами.
type Transport struct {
	client   *http.Client
	defaults Options
}

// NewTransport создаёт Transport поверх клиента с connection pooling
func NewTransport(hc *HTTPClient) *Transport {
	return &Transport{client: hc.GetClient()}
}

// SetDefaults задаёт базовую retry-политику всех вызовов транспорта.
// Сюда приходят MAX_RETRIES, RETRY_BACKOFF и REQUEST_TIMEOUT из
// конфигурации; отдельный вызов может переопределить любое поле
// через свои Options.
func (t *Transport) SetDefaults(opts Options) {
	t.defaults = opts
}

// Do выполняет запрос с повторными попытками
//
// Всего попыток: 1 + MaxRetries. Тело запроса передаётся байтами,
// чтобы каждая попытка получала свежий reader.
//
// Возвращает:
//   - успешный или терминальный HTTP ответ (caller проверяет статус)
//   - последний retryable ответ, если попытки исчерпаны
//   - ошибку, если последняя попытка упала с сетевой ошибкой
//
// Retryable вызовы безопасны только потому, что все операции
// провайдеров - идемпотентные чтения.
func (t *Transport) Do(ctx context.Context, method, url string, header http.Header, body []byte, opts Options) (*http.Response, error) {
	opts.merge(t.defaults)
	opts.defaults()

	backoff := retry.Config{
		BaseDelay:    opts.BaseDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.2,
	}

	attempts := 1 + opts.MaxRetries

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		// Отмена всего вызова родительским контекстом - терминальна
		if ctx.Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, ctx.Err()
		}

		resp, err := t.attempt(ctx, method, url, header, body, opts.Timeout)
		requestsTotal.WithLabelValues(opts.Label).Inc()

		switch classify(resp, err) {
		case outcomeSuccess:
			return resp, nil

		case outcomeTerminalResponse:
			// 4xx кроме 429: немедленный возврат без повторов,
			// caller разбирает статус
			return resp, nil

		case outcomeTerminalFault:
			// Malformed request и прочие невосстановимые ошибки
			return nil, err

		case outcomeRetryableResponse:
			lastResp = resp
			lastErr = nil

		case outcomeRetryableFault:
			lastResp = nil
			lastErr = err
		}

		// Последняя попытка - не ждём
		if attempt >= attempts-1 {
			break
		}

		delay := retryDelay(lastResp, backoff, attempt)
		retriesTotal.WithLabelValues(opts.Label).Inc()

		log.Printf("[%s] retry %d/%d in %v (status=%s err=%v)",
			opts.Label, attempt+1, opts.MaxRetries, delay, respStatus(lastResp), lastErr)

		// Тело retryable ответа больше не нужно
		drainAndClose(lastResp)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, ctx.Err()
		}
	}

	// Попытки исчерпаны
	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, lastErr)
}

// attempt выполняет одну попытку с собственным deadline'ом
//
// Тело ответа буферизуется до отмены attempt-контекста, иначе caller
// не смог бы его прочитать.
func (t *Transport) attempt(ctx context.Context, method, url string, header http.Header, body []byte, timeout time.Duration) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
	if err != nil {
		// Malformed URL/метод - терминальная ошибка построения запроса
		return nil, retry.Permanent(err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}

	buffered, err := io.ReadAll(resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	resp.Body = io.NopCloser(bytes.NewReader(buffered))

	return resp, nil
}

// classify - единственный диспетчер retry политики
func classify(resp *http.Response, err error) outcome {
	if err != nil {
		if isTransientNetErr(err) {
			return outcomeRetryableFault
		}
		return outcomeTerminalFault
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return outcomeRetryableResponse
	case resp.StatusCode >= 500:
		return outcomeRetryableResponse
	case resp.StatusCode >= 400:
		return outcomeTerminalResponse
	default:
		return outcomeSuccess
	}
}

// isTransientNetErr определяет transient сетевые ошибки
//
// Retryable: таймауты (включая per-attempt deadline), connection
// reset/refused, обрывы соединения. Всё остальное (malformed input
// и т.п.) терминально.
func isTransientNetErr(err error) bool {
	if err == nil {
		return false
	}

	// Явно помеченные ошибки
	var retryable retry.RetryableError
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	// Per-attempt deadline
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	return false
}

// retryDelay вычисляет паузу перед повтором
//
// Retry-After в секундах на retryable ответе уважается дословно
// вместо расчётного backoff'а.
func retryDelay(resp *http.Response, backoff retry.Config, attempt int) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return backoff.Delay(attempt)
}

// respStatus форматирует статус для лога
func respStatus(resp *http.Response) string {
	if resp == nil {
		return "-"
	}
	return strconv.Itoa(resp.StatusCode)
}

// drainAndClose освобождает соединение после retryable ответа
func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// StatusError формирует ошибку из неуспешного HTTP статуса
// Используется адаптерами после возврата терминального/исчерпанного ответа
func StatusError(label string, resp *http.Response) error {
	return fmt.Errorf("%w: %s returned status %d", ErrRequestFailed, label, resp.StatusCode)
}
