package handler

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/safety-microservice/internal/broadcast"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Сообщения протокола подписчика
type clientMessage struct {
	Type string `json:"type"`
}

type pongMessage struct {
	Type string `json:"type"`
}

// WSHandler - long-lived подключения дашбордов к каналам алертов.
// Подписчик объявляет канал и идентичность, получает broadcast-сообщения
// и обязан слать периодические liveness-пинги, иначе будет отключен
// reaper-ом хаба.
type WSHandler struct {
	hub            *broadcast.Hub
	defaultChannel string
	logger         *zap.Logger
}

// NewWSHandler - создание нового WSHandler
func NewWSHandler(hub *broadcast.Hub, defaultChannel string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:            hub,
		defaultChannel: defaultChannel,
		logger:         logger,
	}
}

// Upgrade пропускает только websocket-запросы
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Subscribe обслуживает одно подключение подписчика до разрыва
func (h *WSHandler) Subscribe() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		channel := c.Query("channel", h.defaultChannel)
		identity := broadcast.Identity{
			UserID: c.Query("user_id"),
			Role:   c.Query("role", "authority"),
		}

		sub := h.hub.Subscribe(channel, identity)
		defer h.hub.Unsubscribe(sub)

		// Write pump: единственный писатель в сокет
		go func() {
			for {
				select {
				case msg := <-sub.Send():
					_ = c.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.WriteJSON(msg); err != nil {
						h.logger.Warn("Failed to write to subscriber, closing",
							zap.Uint64("connection_id", sub.ID()),
							zap.Error(err))
						h.hub.Unsubscribe(sub)
						return
					}
				case <-sub.Done():
					_ = c.WriteMessage(websocket.CloseMessage, []byte{})
					_ = c.Close()
					return
				}
			}
		}()

		// Read loop: любой входящий трафик продлевает жизнь подключения
		for {
			var msg clientMessage
			if err := c.ReadJSON(&msg); err != nil {
				return
			}

			sub.Touch()

			if msg.Type == "ping" {
				sub.Enqueue(pongMessage{Type: "pong"})
			}
		}
	})
}
