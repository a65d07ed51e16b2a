package broadcast_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/broadcast"
	"github.com/safety-microservice/internal/domain"
)

// MockBrokerRepository is a mock of BrokerRepository
type MockBrokerRepository struct {
	mock.Mock
}

func (m *MockBrokerRepository) Publish(ctx context.Context, topic string, payload []byte) error {
	args := m.Called(ctx, topic, payload)
	return args.Error(0)
}

func (m *MockBrokerRepository) Subscribe(ctx context.Context, topic string) (<-chan domain.BrokerMessage, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.BrokerMessage), args.Error(1)
}

func (m *MockBrokerRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

func testPayload() domain.AlertPayload {
	return domain.AlertPayload{
		Type:      domain.BroadcastMessageTypeSafetyAlert,
		TouristID: uuid.New(),
		Severity:  domain.SeverityCritical,
		Score:     29,
		RiskLevel: domain.RiskLevelCritical,
		Timestamp: time.Now(),
	}
}

func TestPublisher_LocalOnlyWithoutBroker(t *testing.T) {
	hub := newTestHub(time.Second, time.Minute)
	publisher := broadcast.NewPublisher(hub, nil, "instance-a", time.Second, zap.NewNop())

	conn := hub.Subscribe("authority", broadcast.Identity{UserID: "dispatcher-1"})
	defer hub.Unsubscribe(conn)

	publisher.Publish(context.Background(), "authority", testPayload())

	select {
	case msg := <-conn.Send():
		payload, ok := msg.(domain.AlertPayload)
		assert.True(t, ok)
		assert.Equal(t, domain.BroadcastMessageTypeSafetyAlert, payload.Type)
	case <-time.After(time.Second):
		t.Fatal("local subscriber did not receive the payload")
	}
}

func TestPublisher_PublishesEnvelopeToBrokerTopic(t *testing.T) {
	hub := newTestHub(time.Second, time.Minute)
	broker := &MockBrokerRepository{}
	broker.On("Publish", mock.Anything, "safety:alerts:authority", mock.Anything).Return(nil)

	publisher := broadcast.NewPublisher(hub, broker, "instance-a", time.Second, zap.NewNop())
	payload := testPayload()

	publisher.Publish(context.Background(), "authority", payload)

	broker.AssertCalled(t, "Publish", mock.Anything, "safety:alerts:authority", mock.Anything)

	raw := broker.Calls[0].Arguments.Get(2).([]byte)
	var envelope broadcast.Envelope
	assert.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, "instance-a", envelope.Origin)
	assert.Equal(t, payload.TouristID, envelope.Payload.TouristID)
}

func TestPublisher_BrokerFailureDegradesToLocalDelivery(t *testing.T) {
	hub := newTestHub(time.Second, time.Minute)
	broker := &MockBrokerRepository{}
	broker.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	publisher := broadcast.NewPublisher(hub, broker, "instance-a", time.Second, zap.NewNop())

	conn := hub.Subscribe("authority", broadcast.Identity{UserID: "dispatcher-1"})
	defer hub.Unsubscribe(conn)

	publisher.Publish(context.Background(), "authority", testPayload())

	select {
	case <-conn.Send():
	case <-time.After(time.Second):
		t.Fatal("local delivery must survive a broker failure")
	}
}

func TestBrokerTopic(t *testing.T) {
	assert.Equal(t, "safety:alerts:authority", broadcast.BrokerTopic("authority"))
	assert.Equal(t, "safety:alerts:tourists", broadcast.BrokerTopic("tourists"))
}
