package models

import "time"

// PortfolioPoint - точка истории портфеля (timestamp, value)
//
// Производная read-only проекция: сумма снапшотов по всем счетам,
// сгруппированная по интервалу. Не персистируется как отдельная
// сущность - пересчитывается на чтении.
type PortfolioPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// PortfolioChange - изменение стоимости портфеля за период
type PortfolioChange struct {
	// Change - абсолютное изменение в USD
	Change float64 `json:"change"`

	// ChangePercent - изменение в процентах от baseline
	// 0 при нулевом baseline (защита от деления на ноль)
	ChangePercent float64 `json:"change_percent"`
}

// PortfolioSummary - агрегированное состояние портфеля для API
type PortfolioSummary struct {
	TotalValueUSD    float64   `json:"total_value_usd"`
	Change24h        float64   `json:"change_24h"`
	ChangePercent24h float64   `json:"change_percent_24h"`
	AccountCount     int       `json:"account_count"`
	UpdatedAt        time.Time `json:"updated_at"`
}
