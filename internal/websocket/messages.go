package websocket

import (
	"time"

	"folio/internal/models"
)

// ============================================================
// ТИПЫ WEBSOCKET СООБЩЕНИЙ
// ============================================================

// MessageType определяет тип WebSocket сообщения
type MessageType string

const (
	// MessageTypeSyncResult - итог завершённой синхронизации
	MessageTypeSyncResult MessageType = "syncResult"

	// MessageTypePortfolioUpdate - свежая сводка портфеля после пересчёта
	MessageTypePortfolioUpdate MessageType = "portfolioUpdate"
)

// BaseMessage - базовая структура всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// SyncResultMessage - сообщение об итоге синхронизации
//
// Отправляется после каждого SyncUser, включая частичные и полные
// отказы провайдеров: клиент сам решает, что показать пользователю.
type SyncResultMessage struct {
	BaseMessage
	Data *models.SyncResult `json:"data"`
}

// PortfolioUpdateMessage - сообщение со свежей сводкой портфеля
type PortfolioUpdateMessage struct {
	BaseMessage
	Data *models.PortfolioSummary `json:"data"`
}

// ============================================================
// ФАБРИКИ СООБЩЕНИЙ
// ============================================================

// NewSyncResultMessage создает сообщение об итоге синхронизации
func NewSyncResultMessage(result *models.SyncResult) SyncResultMessage {
	return SyncResultMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeSyncResult,
			Timestamp: time.Now().UTC(),
		},
		Data: result,
	}
}

// NewPortfolioUpdateMessage создает сообщение со сводкой портфеля
func NewPortfolioUpdateMessage(summary *models.PortfolioSummary) PortfolioUpdateMessage {
	return PortfolioUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePortfolioUpdate,
			Timestamp: time.Now().UTC(),
		},
		Data: summary,
	}
}
