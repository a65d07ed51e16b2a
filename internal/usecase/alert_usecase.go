package usecase

import (
	"context"
	"time"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/pkg/utils"
	"github.com/safety-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// AlertUseCase - read-поверхность по алертам для дашбордов
type AlertUseCase struct {
	alertRepo repository.AlertRepository
	logger    *zap.Logger
}

// NewAlertUseCase создает новый AlertUseCase
func NewAlertUseCase(alertRepo repository.AlertRepository, logger *zap.Logger) *AlertUseCase {
	return &AlertUseCase{
		alertRepo: alertRepo,
		logger:    logger,
	}
}

// Recent возвращает алерты вокруг точки за последние req.Hours часов
func (uc *AlertUseCase) Recent(ctx context.Context, req dto.RecentAlertsRequest) ([]domain.AlertEvent, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(req.RadiusKm) {
		return nil, errors.ErrInvalidRadius
	}

	since := time.Now().Add(-time.Duration(req.Hours) * time.Hour)
	center := domain.Coordinate{Lat: req.Lat, Lon: req.Lon}

	alerts, err := uc.alertRepo.RecentAlerts(ctx, center, req.RadiusKm, since)
	if err != nil {
		uc.logger.Error("Failed to read recent alerts", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	return alerts, nil
}
