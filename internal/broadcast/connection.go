package broadcast

import (
	"sync"
	"sync/atomic"
	"time"
)

// ConnState - состояние подключения подписчика.
// Переходы только вперед: Connecting -> Open -> Closed.
// Переподключившийся клиент получает новый Connection с новой записью в реестре.
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosed
)

// Identity - кто подписался на канал
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Connection - live-подключение подписчика. Принадлежит исключительно хабу:
// создается при subscribe, уничтожается при disconnect или ошибке отправки.
type Connection struct {
	id          uint64
	channel     string
	identity    Identity
	connectedAt time.Time

	state      atomic.Int32
	lastActive atomic.Int64 // unix nano

	send      chan interface{}
	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(id uint64, channel string, identity Identity, buffer int) *Connection {
	c := &Connection{
		id:          id,
		channel:     channel,
		identity:    identity,
		connectedAt: time.Now(),
		send:        make(chan interface{}, buffer),
		done:        make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	c.lastActive.Store(time.Now().UnixNano())
	return c
}

// ID возвращает идентификатор подключения в реестре
func (c *Connection) ID() uint64 {
	return c.id
}

// Channel возвращает канал, в котором зарегистрировано подключение
func (c *Connection) Channel() string {
	return c.channel
}

// Identity возвращает идентичность подписчика
func (c *Connection) Identity() Identity {
	return c.identity
}

// State возвращает текущее состояние подключения
func (c *Connection) State() ConnState {
	return ConnState(c.state.Load())
}

// Send - канал исходящих сообщений; его читает write pump транспортного слоя
func (c *Connection) Send() <-chan interface{} {
	return c.send
}

// Done закрывается, когда подключение выведено из реестра
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Touch отмечает активность подписчика (любой входящий трафик)
func (c *Connection) Touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

// IdleSince возвращает момент последней активности
func (c *Connection) IdleSince() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

// Enqueue - неблокирующая постановка сообщения в очередь (для pong-ответов).
// Возвращает false, если буфер полон или подключение закрыто.
func (c *Connection) Enqueue(v interface{}) bool {
	if c.State() == StateClosed {
		return false
	}
	select {
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (c *Connection) open() {
	c.state.Store(int32(StateOpen))
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.done)
		// Сообщения, поставленные в очередь до закрытия, никто уже не
		// прочитает: освобождаем буфер сразу.
		for {
			select {
			case <-c.send:
			default:
				return
			}
		}
	})
}
