package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/safety-microservice/internal/broadcast"
	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/pkg/utils"
	"go.uber.org/zap"
)

// AlertStreamName - durable-стрим алертов для downstream потребителей
const AlertStreamName = "safety:alerts:stream"

// IngestResult - итог обработки одного пинга
type IngestResult struct {
	Score *domain.CompositeScore
	Alert *domain.AlertEvent
}

// IngestUseCase оркестрирует обработку входящего пинга:
// оценка -> обновление истории скоростей -> решение политики ->
// сохранение -> рассылка подписчикам.
type IngestUseCase struct {
	engine       *RiskEngine
	policy       *AlertPolicy
	speedHistory *SpeedHistory
	pingRepo     repository.PingRepository
	alertRepo    repository.AlertRepository
	broker       repository.BrokerRepository
	publisher    *broadcast.Publisher
	alertChannel string
	logger       *zap.Logger
}

// NewIngestUseCase создает новый IngestUseCase
func NewIngestUseCase(
	engine *RiskEngine,
	policy *AlertPolicy,
	speedHistory *SpeedHistory,
	pingRepo repository.PingRepository,
	alertRepo repository.AlertRepository,
	broker repository.BrokerRepository,
	publisher *broadcast.Publisher,
	alertChannel string,
	logger *zap.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		engine:       engine,
		policy:       policy,
		speedHistory: speedHistory,
		pingRepo:     pingRepo,
		alertRepo:    alertRepo,
		broker:       broker,
		publisher:    publisher,
		alertChannel: alertChannel,
		logger:       logger,
	}
}

// ScoreAndMaybeAlert обрабатывает один пинг. Пинг с невалидными координатами
// отклоняется на границе (координаты никогда не клампятся молча).
//
// Сбой персистентности не отменяет скоринг и рассылку: результат возвращается
// вместе с recoverable-ошибкой, повтор - ответственность вызывающего.
// Крах между сохранением алерта и публикацией может потерять одну рассылку,
// но не портит реестр подключений - шаги намеренно не транзакционны.
func (uc *IngestUseCase) ScoreAndMaybeAlert(ctx context.Context, ping *domain.Ping) (*IngestResult, error) {
	if !utils.ValidateCoordinates(ping.Location.Lat, ping.Location.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}

	if ping.ID == uuid.Nil {
		ping.ID = uuid.New()
	}
	if ping.Timestamp.IsZero() {
		ping.Timestamp = time.Now()
	}

	score := uc.engine.Compute(ctx, ping.Location, ping.TouristID, ping.Speed, ping.Timestamp)

	// История пополняется после оценки, чтобы текущая скорость
	// не участвовала в собственном z-score
	if ping.Speed != nil {
		uc.speedHistory.Record(ping.TouristID, *ping.Speed)
	}

	var persistErr error
	if err := uc.pingRepo.Create(ctx, ping, score); err != nil {
		uc.logger.Error("Failed to persist ping",
			zap.String("tourist_id", ping.TouristID.String()),
			zap.Error(err))
		persistErr = errors.ErrDatabaseError
	}

	result := &IngestResult{Score: score}

	severity, needAlert := uc.policy.Decide(score)
	if !needAlert {
		return result, persistErr
	}

	alert := &domain.AlertEvent{
		ID:        uuid.New(),
		TouristID: ping.TouristID,
		Location:  ping.Location,
		Severity:  severity,
		Score:     score.Score,
		CreatedAt: ping.Timestamp,
	}
	result.Alert = alert

	// Сохраненный алерт становится входом для nearby-alerts и
	// historical-risk факторов следующих пингов
	if err := uc.alertRepo.Create(ctx, alert); err != nil {
		uc.logger.Error("Failed to persist alert event",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err))
		persistErr = errors.ErrDatabaseError
	}

	payload := domain.NewAlertPayload(alert, score)

	// Durable-стрим для push/SMS коллабораторов, best-effort
	if uc.broker != nil {
		if err := uc.broker.PublishToStream(ctx, AlertStreamName, payload); err != nil {
			uc.logger.Warn("Failed to publish alert to stream", zap.Error(err))
		}
	}

	uc.publisher.Publish(ctx, uc.alertChannel, payload)

	uc.logger.Info("Safety alert dispatched",
		zap.String("alert_id", alert.ID.String()),
		zap.String("tourist_id", ping.TouristID.String()),
		zap.String("severity", string(severity)),
		zap.Float64("score", score.Score))

	return result, persistErr
}

// LatestScore возвращает последнюю сохраненную оценку туриста
func (uc *IngestUseCase) LatestScore(ctx context.Context, touristID uuid.UUID) (*domain.ScoreSnapshot, error) {
	snapshot, err := uc.pingRepo.LatestScore(ctx, touristID)
	if err != nil {
		if err == errors.ErrScoreNotFound {
			return nil, err
		}
		uc.logger.Error("Failed to read latest score",
			zap.String("tourist_id", touristID.String()),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return snapshot, nil
}
