package models

import "time"

// ProviderKind - тип провайдера финансовых данных
type ProviderKind string

// Поддерживаемые провайдеры
const (
	// ProviderSimpleFIN - банковский агрегатор SimpleFIN
	ProviderSimpleFIN ProviderKind = "simplefin"

	// ProviderSolana - on-chain данные Solana кошелька
	ProviderSolana ProviderKind = "solana"
)

// AccountType - канонический тип счёта
type AccountType string

// Типы счетов
const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeCrypto     AccountType = "crypto"
	AccountTypeOther      AccountType = "other"
)

// Account - каноническое представление счёта, в которое нормализуются
// данные всех провайдеров
//
// Идентичность для upsert'а: (UserID, Provider, ExternalID).
// Повторная синхронизация того же external id перезаписывает
// balance/metadata/timestamp и никогда не создаёт дубликат.
// Sync-путь счета не удаляет.
type Account struct {
	ID       int          `json:"id" db:"id"`
	UserID   int          `json:"user_id" db:"user_id"`
	Provider ProviderKind `json:"provider" db:"provider"`
	Name     string       `json:"name" db:"name"`
	Type     AccountType  `json:"type" db:"type"`

	// BalanceUSD nullable: провайдер мог не отдать баланс
	BalanceUSD *float64 `json:"balance_usd" db:"balance_usd"`

	// ExternalID - нативный идентификатор провайдера (id счёта SimpleFIN,
	// адрес кошелька Solana)
	ExternalID string `json:"external_id" db:"external_id"`

	// Metadata - произвольные provider-specific данные (breakdown токенов,
	// домен банка и т.п.)
	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`

	LastSyncedAt *time.Time `json:"last_synced_at" db:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// AccountData - результат нормализации одного счёта провайдером
//
// Содержит всё, что orchestrator должен персистировать за один цикл:
// канонический счёт, timestamp снапшота и нормализованные транзакции.
type AccountData struct {
	Account Account

	// SnapshotAt - момент "as of" от провайдера, либо время синка,
	// если провайдер его не сообщил
	SnapshotAt time.Time

	Transactions []Transaction
}
