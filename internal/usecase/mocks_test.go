package usecase_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/safety-microservice/internal/domain"
)

// MockAlertRepository is a mock of AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) Create(ctx context.Context, alert *domain.AlertEvent) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

func (m *MockAlertRepository) RecentAlerts(ctx context.Context, center domain.Coordinate, radiusKm float64, since time.Time) ([]domain.AlertEvent, error) {
	args := m.Called(ctx, center, radiusKm, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AlertEvent), args.Error(1)
}

// MockZoneRepository is a mock of ZoneRepository
type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) Create(ctx context.Context, zone *domain.Zone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

func (m *MockZoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Zone), args.Error(1)
}

func (m *MockZoneRepository) ActiveZones(ctx context.Context) ([]domain.Zone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Zone), args.Error(1)
}

func (m *MockZoneRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPingRepository is a mock of PingRepository
type MockPingRepository struct {
	mock.Mock
}

func (m *MockPingRepository) Create(ctx context.Context, ping *domain.Ping, score *domain.CompositeScore) error {
	args := m.Called(ctx, ping, score)
	return args.Error(0)
}

func (m *MockPingRepository) CountNearby(ctx context.Context, center domain.Coordinate, radiusKm float64, since time.Time, excludeTourist uuid.UUID) (int, error) {
	args := m.Called(ctx, center, radiusKm, since, excludeTourist)
	return args.Int(0), args.Error(1)
}

func (m *MockPingRepository) LatestScore(ctx context.Context, touristID uuid.UUID) (*domain.ScoreSnapshot, error) {
	args := m.Called(ctx, touristID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreSnapshot), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

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
