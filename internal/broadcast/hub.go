package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const sendBufferSize = 64

// Hub - реестр live-подключений, сгруппированных по каналам, с fan-out
// рассылкой. Доставка best-effort и fire-and-forget: сбой отправки одному
// подписчику закрывает только его подключение и не задерживает остальных.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]*channelGroup

	sendTimeout time.Duration
	idleTimeout time.Duration
	logger      *zap.Logger
	nextID      atomic.Uint64
}

// channelGroup - множество подключений одного канала под собственным локом,
// чтобы рассылки в разных каналах не сериализовались друг о друга
type channelGroup struct {
	mu    sync.Mutex
	conns map[uint64]*Connection
}

// NewHub создает новый Hub
func NewHub(sendTimeout, idleTimeout time.Duration, logger *zap.Logger) *Hub {
	return &Hub{
		channels:    make(map[string]*channelGroup),
		sendTimeout: sendTimeout,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Subscribe регистрирует нового подписчика в канале и возвращает его
// подключение. Подключение переходит в состояние Open.
func (h *Hub) Subscribe(channel string, identity Identity) *Connection {
	conn := newConnection(h.nextID.Add(1), channel, identity, sendBufferSize)

	h.mu.Lock()
	group, ok := h.channels[channel]
	if !ok {
		group = &channelGroup{conns: make(map[uint64]*Connection)}
		h.channels[channel] = group
	}
	h.mu.Unlock()

	group.mu.Lock()
	// Повторная регистрация того же подключения - no-op
	if _, exists := group.conns[conn.id]; !exists {
		group.conns[conn.id] = conn
	}
	group.mu.Unlock()

	conn.open()

	h.logger.Info("Subscriber connected",
		zap.String("channel", channel),
		zap.String("user_id", identity.UserID),
		zap.String("role", identity.Role),
		zap.Uint64("connection_id", conn.id))

	return conn
}

// Unsubscribe выводит подключение из реестра и закрывает его.
// Безопасно вызывать повторно и для уже удаленного подключения.
func (h *Hub) Unsubscribe(conn *Connection) {
	if conn == nil {
		return
	}

	h.mu.RLock()
	group, ok := h.channels[conn.channel]
	h.mu.RUnlock()

	removed := false
	if ok {
		group.mu.Lock()
		if _, exists := group.conns[conn.id]; exists {
			delete(group.conns, conn.id)
			removed = true
		}
		group.mu.Unlock()
	}

	conn.close()

	if removed {
		h.logger.Info("Subscriber disconnected",
			zap.String("channel", conn.channel),
			zap.Uint64("connection_id", conn.id))
	}
}

// Publish доставляет payload всем подключениям канала. Каждая отправка
// независима и выполняется в своей горутине с ограничением по времени:
// медленный подписчик не задерживает остальных, по таймауту он отключается.
// Публикация в канал без подписчиков - no-op.
func (h *Hub) Publish(channel string, payload interface{}) {
	h.mu.RLock()
	group, ok := h.channels[channel]
	h.mu.RUnlock()
	if !ok {
		return
	}

	group.mu.Lock()
	conns := make([]*Connection, 0, len(group.conns))
	for _, c := range group.conns {
		conns = append(conns, c)
	}
	group.mu.Unlock()

	for _, conn := range conns {
		go h.deliver(conn, payload)
	}
}

func (h *Hub) deliver(conn *Connection, payload interface{}) {
	// Если подписчик уже отключен, не ставим сообщение в его буфер:
	// select ниже выбирает готовые case псевдослучайно и мог бы
	// записать в send даже при закрытом done.
	select {
	case <-conn.done:
		return
	default:
	}

	timer := time.NewTimer(h.sendTimeout)
	defer timer.Stop()

	select {
	case conn.send <- payload:
		// Unsubscribe мог закрыть подключение между проверкой выше и
		// записью: снимаем сообщение обратно, буфер закрытого
		// подключения должен остаться пустым.
		select {
		case <-conn.done:
			select {
			case <-conn.send:
			default:
			}
		default:
		}
	case <-conn.done:
		// Подписчик уже отключен, сообщение не доставляется
	case <-timer.C:
		h.logger.Warn("Send timed out, closing subscriber connection",
			zap.String("channel", conn.channel),
			zap.Uint64("connection_id", conn.id))
		h.Unsubscribe(conn)
	}
}

// Count возвращает количество подключений в канале
func (h *Hub) Count(channel string) int {
	h.mu.RLock()
	group, ok := h.channels[channel]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	group.mu.Lock()
	defer group.mu.Unlock()
	return len(group.conns)
}

// Run запускает reaper простаивающих подключений; блокируется до отмены
// контекста. Клиенты обязаны слать периодические liveness-пинги: подключение
// без трафика дольше idle-таймаута выводится из реестра.
func (h *Hub) Run(ctx context.Context) {
	interval := h.idleTimeout / 3
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.reapIdle()
		}
	}
}

func (h *Hub) reapIdle() {
	cutoff := time.Now().Add(-h.idleTimeout)

	for _, conn := range h.snapshot() {
		if conn.IdleSince().Before(cutoff) {
			h.logger.Info("Reclaiming idle subscriber connection",
				zap.String("channel", conn.channel),
				zap.Uint64("connection_id", conn.id),
				zap.Time("last_active", conn.IdleSince()))
			h.Unsubscribe(conn)
		}
	}
}

func (h *Hub) closeAll() {
	for _, conn := range h.snapshot() {
		h.Unsubscribe(conn)
	}
}

func (h *Hub) snapshot() []*Connection {
	h.mu.RLock()
	groups := make([]*channelGroup, 0, len(h.channels))
	for _, g := range h.channels {
		groups = append(groups, g)
	}
	h.mu.RUnlock()

	var conns []*Connection
	for _, g := range groups {
		g.mu.Lock()
		for _, c := range g.conns {
			conns = append(conns, c)
		}
		g.mu.Unlock()
	}
	return conns
}
