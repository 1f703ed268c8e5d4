package models

import "time"

// Transaction - нормализованная транзакция счёта
//
// Идентичность: (AccountID, ExternalID). Повторная загрузка той же
// транзакции идемпотентна (upsert, не insert) - retry провайдера
// не создаёт дубликатов.
type Transaction struct {
	ID          int       `json:"id" db:"id"`
	AccountID   int       `json:"account_id" db:"account_id"`
	ExternalID  string    `json:"external_id" db:"external_id"`
	PostedAt    time.Time `json:"posted_at" db:"posted_at"`
	Amount      float64   `json:"amount" db:"amount"`
	Description string    `json:"description" db:"description"`
	Payee       string    `json:"payee,omitempty" db:"payee"`
	Memo        string    `json:"memo,omitempty" db:"memo"`
	Pending     bool      `json:"pending" db:"pending"`
}
