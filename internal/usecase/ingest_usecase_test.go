package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/broadcast"
	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/usecase"
)

const testAlertChannel = "authority"

type ingestFixture struct {
	alertRepo    *MockAlertRepository
	pingRepo     *MockPingRepository
	zoneRepo     *MockZoneRepository
	broker       *MockBrokerRepository
	hub          *broadcast.Hub
	speedHistory *usecase.SpeedHistory
	uc           *usecase.IngestUseCase
}

func newIngestFixture() *ingestFixture {
	logger := zap.NewNop()
	f := &ingestFixture{
		alertRepo: &MockAlertRepository{},
		pingRepo:  &MockPingRepository{},
		zoneRepo:  &MockZoneRepository{},
		broker:    &MockBrokerRepository{},
	}

	zoneIndex := usecase.NewZoneIndex(f.zoneRepo, nil, logger, time.Minute)
	f.speedHistory = usecase.NewSpeedHistory()
	engine := usecase.NewRiskEngine(f.alertRepo, f.pingRepo, zoneIndex, f.speedHistory, usecase.DefaultRiskParams(), logger)

	f.hub = broadcast.NewHub(time.Second, time.Minute, logger)
	publisher := broadcast.NewPublisher(f.hub, nil, "test-instance", time.Second, logger)

	f.uc = usecase.NewIngestUseCase(
		engine,
		usecase.NewAlertPolicy(),
		f.speedHistory,
		f.pingRepo,
		f.alertRepo,
		f.broker,
		publisher,
		testAlertChannel,
		logger,
	)
	return f
}

// expectQuietArea настраивает коллабораторов на нейтральную обстановку
func (f *ingestFixture) expectQuietArea() {
	f.alertRepo.On("RecentAlerts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.AlertEvent{}, nil)
	f.zoneRepo.On("ActiveZones", mock.Anything).Return([]domain.Zone{}, nil)
	f.pingRepo.On("CountNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, nil)
}

// expectDangerousArea: restricted-зона плюс свежие критические алерты,
// ночной пинг в такой точке гарантированно дает критический композит
func (f *ingestFixture) expectDangerousArea(coord domain.Coordinate, ts time.Time) {
	f.alertRepo.On("RecentAlerts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(criticalAlertsAt(coord, 6, ts, 10*time.Minute), nil)
	f.zoneRepo.On("ActiveZones", mock.Anything).Return([]domain.Zone{
		{Type: domain.ZoneTypeRestricted, Center: coord, RadiusMeters: 500, IsActive: true},
	}, nil)
	f.pingRepo.On("CountNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(0, nil)
}

func TestIngestUseCase_RejectsInvalidCoordinates(t *testing.T) {
	f := newIngestFixture()

	ping := &domain.Ping{
		TouristID: uuid.New(),
		Location:  domain.Coordinate{Lat: 91, Lon: 0},
		Timestamp: noon,
	}

	result, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	f.pingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestUseCase_QuietAreaNoAlert(t *testing.T) {
	f := newIngestFixture()
	f.expectQuietArea()
	f.pingRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ping := &domain.Ping{
		TouristID: uuid.New(),
		Location:  domain.Coordinate{Lat: 41.3851, Lon: 2.1734},
		Timestamp: noon,
	}

	result, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Nil(t, result.Alert)
	assert.InDelta(t, 82.75, result.Score.Score, 1e-9)
	assert.Equal(t, domain.RiskLevelLow, result.Score.RiskLevel)

	f.alertRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.broker.AssertNotCalled(t, "PublishToStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestUseCase_DefaultsIDAndTimestamp(t *testing.T) {
	f := newIngestFixture()
	f.expectQuietArea()
	f.pingRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ping := &domain.Ping{
		TouristID: uuid.New(),
		Location:  domain.Coordinate{Lat: 41.3851, Lon: 2.1734},
	}

	_, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, ping.ID)
	assert.False(t, ping.Timestamp.IsZero())
}

func TestIngestUseCase_SpeedRecordedAfterScoring(t *testing.T) {
	f := newIngestFixture()
	f.expectQuietArea()
	f.pingRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	touristID := uuid.New()
	speed := 60.0
	ping := &domain.Ping{
		TouristID: touristID,
		Location:  domain.Coordinate{Lat: 41.3851, Lon: 2.1734},
		Speed:     &speed,
		Timestamp: noon,
	}

	result, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.NoError(t, err)
	// Первый пинг туриста: истории еще не было, скорость не участвовала
	// в собственном z-score и фактор остался на нейтральном дефолте
	assert.InDelta(t, 85, result.Score.Factors[usecase.FactorSpeedAnomaly].Score, 1e-9)
	assert.Equal(t, 1, f.speedHistory.Len(touristID))
}

func TestIngestUseCase_PersistFailureStillScores(t *testing.T) {
	f := newIngestFixture()
	f.expectQuietArea()
	f.pingRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	ping := &domain.Ping{
		TouristID: uuid.New(),
		Location:  domain.Coordinate{Lat: 41.3851, Lon: 2.1734},
		Timestamp: noon,
	}

	result, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.ErrorIs(t, err, errors.ErrDatabaseError)
	assert.NotNil(t, result)
	assert.InDelta(t, 82.75, result.Score.Score, 1e-9)
}

func TestIngestUseCase_CriticalPingDispatchesAlert(t *testing.T) {
	f := newIngestFixture()

	coord := domain.Coordinate{Lat: 41.40, Lon: 2.17}
	threeAM := time.Date(2025, 6, 15, 3, 0, 0, 0, time.Local)
	f.expectDangerousArea(coord, threeAM)

	f.pingRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.broker.On("PublishToStream", mock.Anything, usecase.AlertStreamName, mock.Anything).Return(nil)

	// Живой подписчик authority-канала
	conn := f.hub.Subscribe(testAlertChannel, broadcast.Identity{UserID: "dispatcher-1", Role: "authority"})
	defer f.hub.Unsubscribe(conn)

	touristID := uuid.New()
	ping := &domain.Ping{
		TouristID: touristID,
		Location:  coord,
		Timestamp: threeAM,
	}

	result, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.NoError(t, err)
	assert.NotNil(t, result.Alert)
	assert.Equal(t, domain.SeverityCritical, result.Alert.Severity)
	assert.Equal(t, touristID, result.Alert.TouristID)
	assert.InDelta(t, 29.0, result.Alert.Score, 1e-9)

	f.alertRepo.AssertCalled(t, "Create", mock.Anything, result.Alert)
	f.broker.AssertCalled(t, "PublishToStream", mock.Anything, usecase.AlertStreamName, mock.Anything)

	select {
	case msg := <-conn.Send():
		payload, ok := msg.(domain.AlertPayload)
		assert.True(t, ok)
		assert.Equal(t, domain.BroadcastMessageTypeSafetyAlert, payload.Type)
		assert.Equal(t, touristID, payload.TouristID)
		assert.Equal(t, domain.SeverityCritical, payload.Severity)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the alert payload")
	}
}

func TestIngestUseCase_StreamFailureDoesNotBlockBroadcast(t *testing.T) {
	f := newIngestFixture()

	coord := domain.Coordinate{Lat: 41.40, Lon: 2.17}
	threeAM := time.Date(2025, 6, 15, 3, 0, 0, 0, time.Local)
	f.expectDangerousArea(coord, threeAM)

	f.pingRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.alertRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.broker.On("PublishToStream", mock.Anything, usecase.AlertStreamName, mock.Anything).Return(assert.AnError)

	conn := f.hub.Subscribe(testAlertChannel, broadcast.Identity{UserID: "dispatcher-1", Role: "authority"})
	defer f.hub.Unsubscribe(conn)

	ping := &domain.Ping{
		TouristID: uuid.New(),
		Location:  coord,
		Timestamp: threeAM,
	}

	result, err := f.uc.ScoreAndMaybeAlert(context.Background(), ping)

	assert.NoError(t, err)
	assert.NotNil(t, result.Alert)

	select {
	case <-conn.Send():
	case <-time.After(time.Second):
		t.Fatal("live broadcast must survive a stream publish failure")
	}
}

func TestIngestUseCase_LatestScore(t *testing.T) {
	t.Run("returns stored snapshot", func(t *testing.T) {
		f := newIngestFixture()
		touristID := uuid.New()
		snapshot := &domain.ScoreSnapshot{
			TouristID: touristID,
			Location:  domain.Coordinate{Lat: 41.40, Lon: 2.17},
			Score:     82.75,
			RiskLevel: domain.RiskLevelLow,
			Timestamp: noon,
		}
		f.pingRepo.On("LatestScore", mock.Anything, touristID).Return(snapshot, nil)

		got, err := f.uc.LatestScore(context.Background(), touristID)

		assert.NoError(t, err)
		assert.Equal(t, snapshot, got)
	})

	t.Run("not found passes through", func(t *testing.T) {
		f := newIngestFixture()
		touristID := uuid.New()
		f.pingRepo.On("LatestScore", mock.Anything, touristID).Return(nil, errors.ErrScoreNotFound)

		got, err := f.uc.LatestScore(context.Background(), touristID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, errors.ErrScoreNotFound)
	})

	t.Run("repository failure maps to database error", func(t *testing.T) {
		f := newIngestFixture()
		touristID := uuid.New()
		f.pingRepo.On("LatestScore", mock.Anything, touristID).Return(nil, assert.AnError)

		got, err := f.uc.LatestScore(context.Background(), touristID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})
}
