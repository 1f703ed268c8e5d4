package provider

import (
	"context"
	"errors"

	"folio/internal/models"
)

// Общие ошибки провайдеров
var (
	// ErrNotConfigured - у провайдера нет credentials/конфигурации.
	// Терминальная ошибка: возвращается до любого сетевого обращения.
	ErrNotConfigured = errors.New("provider is not configured")

	// ErrProviderUnavailable - провайдер недоступен: транспорт исчерпал
	// попытки на сетевых ошибках. Исходная ошибка остаётся в цепочке.
	ErrProviderUnavailable = errors.New("provider is unavailable")
)

// Provider определяет унифицированный интерфейс провайдера финансовых данных
//
// Две конкретные реализации: SimpleFIN (банковский агрегатор) и Solana
// (on-chain кошелёк). Более глубокой иерархии не требуется.
// Каждый адаптер владеет своими вызовами через Transport; общего
// mutable состояния между адаптерами нет.
type Provider interface {
	// Name возвращает тип провайдера
	Name() models.ProviderKind

	// FetchAccounts получает и нормализует счета пользователя.
	// Retry transient ошибок выполняется внутри (через Transport);
	// наружу уходит либо результат, либо ошибка после исчерпания попыток.
	// Повторы одного логического запроса строго последовательны.
	FetchAccounts(ctx context.Context, userID int) ([]models.AccountData, error)
}
