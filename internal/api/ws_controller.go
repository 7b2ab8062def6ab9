package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Доступ к API закрыт вышестоящим шлюзом, origin здесь не проверяем
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ServeWS обрабатывает WebSocket подключения дашбордов
// Клиент получает поток MutationEvent, входящие сообщения игнорируются
func ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ Ошибка обновления WebSocket соединения: %v", err)
		return
	}

	EventsHub.AddClient(conn)
	log.Printf("📊 Дашборд подключен. Всего подключений: %d", EventsHub.GetClientsCount())

	defer func() {
		EventsHub.RemoveClient(conn)
		log.Printf("📊 Дашборд отключен. Осталось подключений: %d", EventsHub.GetClientsCount())
	}()

	// Читаем сообщения только ради ping/pong поддержания соединения
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ WebSocket ошибка: %v", err)
			}
			break
		}
	}
}
