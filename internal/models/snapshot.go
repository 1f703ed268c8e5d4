package models

import "time"

// Snapshot - точка стоимости счёта во времени
//
// Append-only временной ряд: снапшоты создаются один раз за цикл
// синхронизации на счёт и после этого неизменяемы. Update/delete
// в нормальной работе отсутствуют. По снапшотам восстанавливается
// история портфеля.
type Snapshot struct {
	ID        int       `json:"id" db:"id"`
	AccountID int       `json:"account_id" db:"account_id"`
	ValueUSD  float64   `json:"value_usd" db:"value_usd"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
