package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/pkg/utils"
	"github.com/safety-microservice/internal/usecase/dto"
	"go.uber.org/zap"
)

// ZoneUseCase - authority-процесс управления зонами
type ZoneUseCase struct {
	zoneRepo  repository.ZoneRepository
	zoneIndex *ZoneIndex
	logger    *zap.Logger
}

// NewZoneUseCase создает новый ZoneUseCase
func NewZoneUseCase(zoneRepo repository.ZoneRepository, zoneIndex *ZoneIndex, logger *zap.Logger) *ZoneUseCase {
	return &ZoneUseCase{
		zoneRepo:  zoneRepo,
		zoneIndex: zoneIndex,
		logger:    logger,
	}
}

// Create создает новую зону и сбрасывает кеш индекса
func (uc *ZoneUseCase) Create(ctx context.Context, req dto.CreateZoneRequest) (*domain.Zone, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !domain.ValidZoneType(req.Type) {
		return nil, errors.ErrInvalidZoneType
	}
	if req.RadiusMeters <= 0 {
		return nil, errors.ErrInvalidRadius
	}

	zone := &domain.Zone{
		ID:           uuid.New(),
		Name:         req.Name,
		Type:         domain.ZoneType(req.Type),
		Center:       domain.Coordinate{Lat: req.Lat, Lon: req.Lon},
		RadiusMeters: req.RadiusMeters,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := uc.zoneRepo.Create(ctx, zone); err != nil {
		uc.logger.Error("Failed to create zone", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	uc.zoneIndex.Invalidate(ctx)

	uc.logger.Info("Zone created",
		zap.String("zone_id", zone.ID.String()),
		zap.String("name", zone.Name),
		zap.String("type", string(zone.Type)))

	return zone, nil
}

// List возвращает все активные зоны
func (uc *ZoneUseCase) List(ctx context.Context) ([]domain.Zone, error) {
	zones, err := uc.zoneIndex.ActiveZones(ctx)
	if err != nil {
		uc.logger.Error("Failed to list zones", zap.Error(err))
		return nil, errors.ErrDatabaseError
	}
	return zones, nil
}

// Deactivate мягко деактивирует зону и сбрасывает кеш индекса
func (uc *ZoneUseCase) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.zoneRepo.GetByID(ctx, id); err != nil {
		return errors.ErrZoneNotFound
	}

	if err := uc.zoneRepo.Deactivate(ctx, id); err != nil {
		uc.logger.Error("Failed to deactivate zone",
			zap.String("zone_id", id.String()),
			zap.Error(err))
		return errors.ErrDatabaseError
	}

	uc.zoneIndex.Invalidate(ctx)

	uc.logger.Info("Zone deactivated", zap.String("zone_id", id.String()))
	return nil
}
