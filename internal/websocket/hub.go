package websocket

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"folio/internal/models"
)

// ============ ОПТИМИЗАЦИЯ: sync.Pool для JSON буферов ============

var jsonBufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// Hub управляет всеми активными WebSocket соединениями
//
// Назначение:
// Центральный менеджер для broadcast сообщений всем подключенным клиентам.
// Обеспечивает real-time обновления данных на frontend без необходимости polling.
//
// Функции:
// - Регистрация новых WebSocket клиентов
// - Отмена регистрации отключенных клиентов
// - Broadcast сообщений всем активным клиентам
// - Очистка отключенных и медленных соединений
// - Потокобезопасная работа с клиентами (sync.RWMutex)
//
// Типы сообщений:
// - syncResult: итог завершённой синхронизации
// - portfolioUpdate: свежая сводка портфеля
//
// Использование:
// 1. Создать hub: hub := NewHub()
// 2. Запустить в горутине: go hub.Run()
// 3. Отправлять сообщения: hub.BroadcastSyncResult(result)
type Hub struct {
	// Зарегистрированные клиенты
	clients map[*Client]bool

	// Broadcast канал для отправки сообщений всем клиентам
	broadcast chan []byte

	// Регистрация нового клиента
	register chan *Client

	// Отмена регистрации клиента
	unregister chan *Client

	// Сигнал остановки главного цикла
	stop chan struct{}

	// Счётчик сообщений, отброшенных при переполнении broadcast канала
	dropped atomic.Int64

	// Mutex для потокобезопасного доступа к clients
	mu sync.RWMutex
}

// NewHub создает новый Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stop:       make(chan struct{}),
	}
}

// Run запускает главный цикл Hub
//
// Должен запускаться в отдельной горутине: go hub.Run()
// Обрабатывает регистрацию, отмену регистрации и broadcast.
// Отправка идёт без блокировки списка клиентов: сначала копия под
// коротким RLock, потом запись, потом удаление медленных под Write Lock.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client connected. Total clients: %d", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Client disconnected. Total clients: %d", len(h.clients))

		case message := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			var toRemove []*Client
			for _, client := range clients {
				select {
				case client.send <- message:
					// Сообщение отправлено успешно
				default:
					// Клиент не успевает обрабатывать сообщения - помечаем для удаления
					toRemove = append(toRemove, client)
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, client := range toRemove {
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
				}
				h.mu.Unlock()
				log.Printf("Removed %d slow clients. Total clients: %d", len(toRemove), len(h.clients))
			}
		}
	}
}

// Broadcast отправляет сообщение всем подключенным клиентам.
// Использует sync.Pool для буферов сериализации.
func (h *Hub) Broadcast(message interface{}) {
	buf := jsonBufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	if err := json.NewEncoder(buf).Encode(message); err != nil {
		log.Printf("Error marshaling broadcast message: %v", err)
		jsonBufferPool.Put(buf)
		return
	}

	// Убираем trailing newline от Encode
	data := buf.Bytes()
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	// Копируем данные (буфер вернётся в пул)
	msgCopy := make([]byte, len(data))
	copy(msgCopy, data)

	jsonBufferPool.Put(buf)

	// Не блокируем вызывающую горутину, если канал переполнен
	select {
	case h.broadcast <- msgCopy:
	default:
		h.dropped.Add(1)
	}
}

// DroppedMessages возвращает число сообщений, отброшенных
// из-за переполнения broadcast канала
func (h *Hub) DroppedMessages() int64 {
	return h.dropped.Load()
}

// BroadcastSyncResult отправляет итог завершённой синхронизации
func (h *Hub) BroadcastSyncResult(result *models.SyncResult) {
	h.Broadcast(NewSyncResultMessage(result))
}

// BroadcastPortfolioUpdate отправляет свежую сводку портфеля
func (h *Hub) BroadcastPortfolioUpdate(summary *models.PortfolioSummary) {
	h.Broadcast(NewPortfolioUpdateMessage(summary))
}

// ServeWS - HTTP handler для WebSocket endpoint
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ServeWS(h, w, r)
}

// Stop останавливает главный цикл и закрывает все соединения
func (h *Hub) Stop() {
	close(h.stop)
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
