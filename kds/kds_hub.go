package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/kafe-cerita-bot/models"
)

// Event types
const (
	EventOrderCompleted = "bot_order_completed"
	EventMenuUpdate     = "menu_update"
	EventMenuDelete     = "menu_delete"
	EventInfoUpdate     = "info_update"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client layar bar (barista, admin) untuk broadcast
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
	logger  *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		logger:  logger,
	}
}

// RegisterClient -> menambahkan connection dengan role
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount -> jumlah client yang terhubung
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// RecordOrder -> menyiarkan pesanan bot yang sudah selesai ke layar bar
func (h *Hub) RecordOrder(_ context.Context, order *models.BotOrder) error {
	h.logger.Infof("Pesanan baru untuk bar: %s", order.Label())
	h.Broadcast(Message{
		Event: EventOrderCompleted,
		Data:  order,
	})
	return nil
}

// BroadcastMenuUpdate -> item menu ditambah atau diubah
func (h *Hub) BroadcastMenuUpdate(item models.Menu) {
	h.Broadcast(Message{
		Event: EventMenuUpdate,
		Data:  item,
	})
}

// BroadcastMenuDelete -> item menu dihapus
func (h *Hub) BroadcastMenuDelete(id string) {
	h.Broadcast(Message{
		Event: EventMenuDelete,
		Data:  map[string]string{"id": id},
	})
}

// BroadcastInfoUpdate -> info pemesanan diubah
func (h *Hub) BroadcastInfoUpdate(info string) {
	h.Broadcast(Message{
		Event: EventInfoUpdate,
		Data:  map[string]string{"info": info},
	})
}

// Broadcast mengirim pesan ke semua client. Client yang gagal menerima dilepas.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.logger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, role := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warnf("Error sending message to client with role %s: %v", role, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
