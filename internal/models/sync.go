package models

import "time"

// ProviderSyncStatus - результат синхронизации одного провайдера
type ProviderSyncStatus struct {
	Provider ProviderKind `json:"provider"`

	// AccountsSynced - количество успешно персистированных счетов
	AccountsSynced int `json:"accounts_synced"`

	// TransactionsSynced - количество upsert'нутых транзакций
	TransactionsSynced int `json:"transactions_synced"`

	// Failed - провайдер завершился с ошибкой (остальные не блокируются)
	Failed bool `json:"failed"`

	// Error - краткое описание без внутренних деталей
	Error string `json:"error,omitempty"`
}

// SyncResult - структурированный итог полного цикла синхронизации
//
// Возвращается вызывающему (UI refresh, authenticated sync endpoint).
// Частичный провал одного провайдера не делает результат ошибочным.
type SyncResult struct {
	Providers []ProviderSyncStatus `json:"providers"`

	// TotalValueUSD и AccountCount - свежий пересчёт после персистирования,
	// никогда не кэшированный running total
	TotalValueUSD float64 `json:"total_value_usd"`
	AccountCount  int     `json:"account_count"`

	Timestamp time.Time `json:"timestamp"`
}

// AllFailed возвращает true если все провайдеры завершились с ошибкой
func (r *SyncResult) AllFailed() bool {
	if len(r.Providers) == 0 {
		return false
	}
	for _, p := range r.Providers {
		if !p.Failed {
			return false
		}
	}
	return true
}
