package websocket

import (
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Время ожидания записи сообщения
	writeWait = 10 * time.Second

	// Время ожидания между pong сообщениями
	pongWait = 60 * time.Second

	// Интервал отправки ping сообщений (должен быть меньше pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения.
	// syncResult со статусами провайдеров и ошибками укладывается
	// в 1-2KB, portfolioUpdate ещё меньше; 16KB оставляет запас
	// на портфель с десятками счетов.
	maxMessageSize = 16384

	// Размер буфера отправки клиента. Медленный клиент, не
	// вычитавший буфер, отключается Hub'ом вместо блокировки рассылки.
	clientSendBufferSize = 512
)

// OriginChecker проверяет Origin с O(1) lookup через map
// Потокобезопасен для чтения после инициализации
type OriginChecker struct {
	allowedOrigins map[string]struct{}
	allowAll       bool
}

// originChecker - глобальный экземпляр, инициализируется один раз
var originChecker = initOriginChecker()

func initOriginChecker() *OriginChecker {
	checker := &OriginChecker{
		allowedOrigins: make(map[string]struct{}),
	}

	// ALLOWED_ORIGINS=http://localhost:3000,https://example.com
	envOrigins := os.Getenv("ALLOWED_ORIGINS")

	if envOrigins == "" || envOrigins == "*" {
		// Development mode или явно разрешены все
		checker.allowAll = true
		// Стандартные dev origins дашборда для fallback
		devOrigins := []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8080",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
			"http://127.0.0.1:8080",
		}
		for _, origin := range devOrigins {
			checker.allowedOrigins[origin] = struct{}{}
		}
	} else {
		checker.allowAll = false
		origins := strings.Split(envOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				checker.allowedOrigins[origin] = struct{}{}
			}
		}
	}

	return checker
}

// Check проверяет origin за O(1)
func (oc *OriginChecker) Check(origin string) bool {
	if origin == "" {
		return true // Non-browser clients (curl, API tools)
	}
	if oc.allowAll {
		return true
	}
	_, ok := oc.allowedOrigins[origin]
	return ok
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return originChecker.Check(r.Header.Get("Origin"))
	},
	EnableCompression: true,
}

// clientPool переиспользует Client структуры между подключениями
var clientPool = sync.Pool{
	New: func() interface{} {
		return &Client{
			send: make(chan []byte, clientSendBufferSize),
		}
	},
}

// Client представляет одно WebSocket соединение дашборда.
//
// Поток данных односторонний: сервер рассылает syncResult и
// portfolioUpdate, клиент ничего не присылает кроме ping/pong.
//
// Каждый клиент имеет две горутины:
// 1. readPump - контролирует соединение и читает служебные фреймы
// 2. writePump - пишет сообщения из буфера send
type Client struct {
	// WebSocket соединение
	conn *websocket.Conn

	// Hub которому принадлежит клиент
	hub *Hub

	// Буферизованный канал исходящих сообщений
	send chan []byte
}

// readPump контролирует соединение со стороны чтения
//
// Клиентских команд протокол не предусматривает: входящие текстовые
// сообщения игнорируются, читается только для обработки close/pong.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		c.returnToPool()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			break
		}
	}
}

// writePump отправляет сообщения клиенту
//
// Запускается в отдельной горутине для каждого клиента.
// Читает из канала send и отправляет через WebSocket.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Накопившийся буфер уходит одним фреймом. Чтение только
			// через non-blocking select: len(c.send) между проверкой
			// и чтением может измениться.
		drainLoop:
			for {
				select {
				case msg, ok := <-c.send:
					if !ok {
						break drainLoop
					}
					w.Write([]byte{'\n'})
					w.Write(msg)
				default:
					break drainLoop
				}
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS обрабатывает WebSocket запросы от клиента
//
// Апгрейдит HTTP соединение до WebSocket, берёт клиента из пула
// и запускает его горутины.
//
// Использование в routes:
// router.HandleFunc("/ws/stream", hub.ServeWS)
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	client := clientPool.Get().(*Client)
	client.conn = conn
	client.hub = hub
	// Канал переживает возврат в пул: старые сообщения вычищаются
	for len(client.send) > 0 {
		<-client.send
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// returnToPool возвращает клиента в пул после отключения
func (c *Client) returnToPool() {
	c.conn = nil
	c.hub = nil
	for len(c.send) > 0 {
		<-c.send
	}
	clientPool.Put(c)
}
