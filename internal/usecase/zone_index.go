package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/utils"
	"go.uber.org/zap"
)

const zoneCacheKey = "safety:zones:active"

// ZoneIndex - запросный индекс активных геозон.
// Реализован линейным сканом по закешированному списку зон: при ожидаемых
// кардинальностях (единицы тысяч зон) пространственный индекс не нужен.
type ZoneIndex struct {
	zoneRepo  repository.ZoneRepository
	cacheRepo repository.CacheRepository
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewZoneIndex создает новый ZoneIndex
func NewZoneIndex(
	zoneRepo repository.ZoneRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *ZoneIndex {
	return &ZoneIndex{
		zoneRepo:  zoneRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// ActiveZones возвращает активные зоны (сначала из кеша, потом из БД)
func (idx *ZoneIndex) ActiveZones(ctx context.Context) ([]domain.Zone, error) {
	if idx.cacheRepo != nil {
		if cached, err := idx.cacheRepo.Get(ctx, zoneCacheKey); err == nil && cached != nil {
			var zones []domain.Zone
			if err := json.Unmarshal(cached, &zones); err == nil {
				return zones, nil
			}
			idx.logger.Warn("Failed to unmarshal cached zones, falling back to database")
		}
	}

	zones, err := idx.zoneRepo.ActiveZones(ctx)
	if err != nil {
		return nil, err
	}

	if idx.cacheRepo != nil {
		if data, err := json.Marshal(zones); err == nil {
			if err := idx.cacheRepo.Set(ctx, zoneCacheKey, data, idx.cacheTTL); err != nil {
				idx.logger.Warn("Failed to cache active zones", zap.Error(err))
			}
		}
	}

	return zones, nil
}

// Containing возвращает зоны, содержащие точку.
// Граница включается: точка ровно в radius_meters от центра считается внутри.
func (idx *ZoneIndex) Containing(ctx context.Context, coord domain.Coordinate) ([]domain.Zone, error) {
	zones, err := idx.ActiveZones(ctx)
	if err != nil {
		return nil, err
	}

	var matches []domain.Zone
	for _, zone := range zones {
		dist := utils.HaversineDistanceMeters(coord.Lat, coord.Lon, zone.Center.Lat, zone.Center.Lon)
		if dist <= zone.RadiusMeters {
			matches = append(matches, zone)
		}
	}

	return matches, nil
}

// Within возвращает зоны, чья граница находится не дальше radiusMeters от точки
func (idx *ZoneIndex) Within(ctx context.Context, coord domain.Coordinate, radiusMeters float64) ([]domain.Zone, error) {
	zones, err := idx.ActiveZones(ctx)
	if err != nil {
		return nil, err
	}

	var matches []domain.Zone
	for _, zone := range zones {
		dist := utils.HaversineDistanceMeters(coord.Lat, coord.Lon, zone.Center.Lat, zone.Center.Lon)
		if dist <= zone.RadiusMeters+radiusMeters {
			matches = append(matches, zone)
		}
	}

	return matches, nil
}

// Invalidate сбрасывает кеш зон (вызывается после изменений authority-процессом)
func (idx *ZoneIndex) Invalidate(ctx context.Context) {
	if idx.cacheRepo == nil {
		return
	}
	if err := idx.cacheRepo.Delete(ctx, zoneCacheKey); err != nil {
		idx.logger.Warn("Failed to invalidate zone cache", zap.Error(err))
	}
}

// Refresh принудительно перечитывает зоны из БД и обновляет кеш
func (idx *ZoneIndex) Refresh(ctx context.Context) error {
	zones, err := idx.zoneRepo.ActiveZones(ctx)
	if err != nil {
		return err
	}

	if idx.cacheRepo != nil {
		data, err := json.Marshal(zones)
		if err != nil {
			return err
		}
		if err := idx.cacheRepo.Set(ctx, zoneCacheKey, data, idx.cacheTTL); err != nil {
			return err
		}
	}

	return nil
}
