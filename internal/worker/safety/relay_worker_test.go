package safety_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/broadcast"
	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/worker/safety"
)

// fakeBroker отдает заранее подготовленный канал сообщений
type fakeBroker struct {
	mu       sync.Mutex
	messages chan domain.BrokerMessage
	topic    string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{messages: make(chan domain.BrokerMessage, 16)}
}

func (b *fakeBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, topic string) (<-chan domain.BrokerMessage, error) {
	b.mu.Lock()
	b.topic = topic
	b.mu.Unlock()
	return b.messages, nil
}

func (b *fakeBroker) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	return nil
}

func (b *fakeBroker) subscribedTopic() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.topic
}

func (b *fakeBroker) push(t *testing.T, origin string, payload domain.AlertPayload) {
	t.Helper()
	data, err := json.Marshal(broadcast.Envelope{Origin: origin, Payload: payload})
	assert.NoError(t, err)
	b.messages <- domain.BrokerMessage{Channel: b.subscribedTopic(), Payload: data}
}

func TestRelayWorker_DeliversForeignMessages(t *testing.T) {
	logger := zap.NewNop()
	hub := broadcast.NewHub(time.Second, time.Minute, logger)
	broker := newFakeBroker()

	relay := safety.NewRelayWorker(broker, hub, "authority", "instance-a", logger)

	done := make(chan error, 1)
	go func() {
		done <- relay.Start(context.Background())
	}()

	conn := hub.Subscribe("authority", broadcast.Identity{UserID: "dispatcher-1"})
	defer hub.Unsubscribe(conn)

	// Чужая публикация доставляется локальным подписчикам
	foreign := domain.AlertPayload{
		Type:      domain.BroadcastMessageTypeSafetyAlert,
		TouristID: uuid.New(),
		Severity:  domain.SeverityHigh,
	}
	broker.push(t, "instance-b", foreign)

	select {
	case msg := <-conn.Send():
		payload, ok := msg.(domain.AlertPayload)
		assert.True(t, ok)
		assert.Equal(t, foreign.TouristID, payload.TouristID)
	case <-time.After(2 * time.Second):
		t.Fatal("foreign message was not relayed to the local hub")
	}

	close(broker.messages)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay worker did not stop after the subscription closed")
	}
}

func TestRelayWorker_SkipsOwnMessages(t *testing.T) {
	logger := zap.NewNop()
	hub := broadcast.NewHub(time.Second, time.Minute, logger)
	broker := newFakeBroker()

	relay := safety.NewRelayWorker(broker, hub, "authority", "instance-a", logger)

	done := make(chan error, 1)
	go func() {
		done <- relay.Start(context.Background())
	}()

	conn := hub.Subscribe("authority", broadcast.Identity{UserID: "dispatcher-1"})
	defer hub.Unsubscribe(conn)

	// Собственная публикация уже доставлена локально и не дублируется
	broker.push(t, "instance-a", domain.AlertPayload{TouristID: uuid.New()})

	select {
	case msg := <-conn.Send():
		t.Fatalf("own message must not be redelivered: %v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	close(broker.messages)
	assert.NoError(t, <-done)
}

func TestRelayWorker_SkipsMalformedEnvelopes(t *testing.T) {
	logger := zap.NewNop()
	hub := broadcast.NewHub(time.Second, time.Minute, logger)
	broker := newFakeBroker()

	relay := safety.NewRelayWorker(broker, hub, "authority", "instance-a", logger)

	done := make(chan error, 1)
	go func() {
		done <- relay.Start(context.Background())
	}()

	conn := hub.Subscribe("authority", broadcast.Identity{UserID: "dispatcher-1"})
	defer hub.Unsubscribe(conn)

	// Битый конверт пропускается, следующий валидный доставляется
	broker.messages <- domain.BrokerMessage{Channel: "safety:alerts:authority", Payload: []byte("not json")}
	valid := domain.AlertPayload{TouristID: uuid.New()}
	broker.push(t, "instance-b", valid)

	select {
	case msg := <-conn.Send():
		payload, ok := msg.(domain.AlertPayload)
		assert.True(t, ok)
		assert.Equal(t, valid.TouristID, payload.TouristID)
	case <-time.After(2 * time.Second):
		t.Fatal("valid message after a malformed one was not relayed")
	}

	close(broker.messages)
	assert.NoError(t, <-done)
}

func TestRelayWorker_SubscribesToChannelTopic(t *testing.T) {
	logger := zap.NewNop()
	hub := broadcast.NewHub(time.Second, time.Minute, logger)
	broker := newFakeBroker()

	relay := safety.NewRelayWorker(broker, hub, "authority", "instance-a", logger)

	done := make(chan error, 1)
	go func() {
		done <- relay.Start(context.Background())
	}()

	assert.Eventually(t, func() bool {
		return broker.subscribedTopic() == "safety:alerts:authority"
	}, time.Second, 10*time.Millisecond)

	close(broker.messages)
	assert.NoError(t, <-done)
}
