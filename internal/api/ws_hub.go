package api

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"torgplus/server/internal/models"
)

// MutationEvent - уведомление дашбордам об успешной мутации
// По нему фронтенд перезапрашивает списки и отчеты без поллинга
type MutationEvent struct {
	Entity       string              `json:"entity"` // "outgoing_transaction", "incoming_record"
	Action       models.AuditAction  `json:"action"`
	EntityID     string              `json:"entity_id"`
	BusinessUnit models.BusinessUnit `json:"business_unit"`
}

// Hub управляет WebSocket соединениями дашбордов
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	mutex     sync.RWMutex
}

// EventsHub - глобальный хаб событий мутаций
var EventsHub = &Hub{
	clients:   make(map[*websocket.Conn]bool),
	broadcast: make(chan []byte, 256), // Буферизованный канал, отправители не блокируются
}

// Run запускает рассылку сообщений подключенным клиентам
func (h *Hub) Run() {
	for {
		msg := <-h.broadcast
		h.mutex.RLock()
		for client := range h.clients {
			err := client.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				// Удаляем клиента при ошибке записи
				h.mutex.RUnlock()
				h.RemoveClient(client)
				h.mutex.RLock()
			}
		}
		h.mutex.RUnlock()
	}
}

// AddClient добавляет подключение дашборда
func (h *Hub) AddClient(conn *websocket.Conn) {
	h.mutex.Lock()
	h.clients[conn] = true
	h.mutex.Unlock()
}

// RemoveClient удаляет подключение
func (h *Hub) RemoveClient(conn *websocket.Conn) {
	h.mutex.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mutex.Unlock()
}

// NotifyMutation публикует событие мутации всем дашбордам
// Переполненный канал не блокирует бизнес-операцию - событие просто теряется
func (h *Hub) NotifyMutation(event MutationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ WS: сериализация события %s/%s: %v", event.Entity, event.EntityID, err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
	}
}

// GetClientsCount возвращает количество подключенных клиентов
func (h *Hub) GetClientsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
