package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/pkg/errors"
	"github.com/safety-microservice/internal/usecase"
	"github.com/safety-microservice/internal/usecase/dto"
)

func newZoneUseCase(zoneRepo *MockZoneRepository, cacheRepo *MockCacheRepository) *usecase.ZoneUseCase {
	logger := zap.NewNop()
	index := usecase.NewZoneIndex(zoneRepo, cacheRepo, logger, time.Minute)
	return usecase.NewZoneUseCase(zoneRepo, index, logger)
}

func TestZoneUseCase_Create(t *testing.T) {
	t.Run("valid zone is created and cache invalidated", func(t *testing.T) {
		zoneRepo := &MockZoneRepository{}
		cacheRepo := &MockCacheRepository{}
		zoneRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		cacheRepo.On("Delete", mock.Anything, "safety:zones:active").Return(nil)

		uc := newZoneUseCase(zoneRepo, cacheRepo)
		zone, err := uc.Create(context.Background(), dto.CreateZoneRequest{
			Name:         "train station",
			Type:         "risky",
			Lat:          41.3793,
			Lon:          2.1400,
			RadiusMeters: 300,
		})

		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, zone.ID)
		assert.Equal(t, domain.ZoneTypeRisky, zone.Type)
		assert.True(t, zone.IsActive)
		cacheRepo.AssertCalled(t, "Delete", mock.Anything, "safety:zones:active")
	})

	t.Run("invalid coordinates are rejected", func(t *testing.T) {
		uc := newZoneUseCase(&MockZoneRepository{}, &MockCacheRepository{})
		_, err := uc.Create(context.Background(), dto.CreateZoneRequest{
			Name: "bad", Type: "safe", Lat: 91, Lon: 0, RadiusMeters: 300,
		})
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})

	t.Run("unknown zone type is rejected", func(t *testing.T) {
		uc := newZoneUseCase(&MockZoneRepository{}, &MockCacheRepository{})
		_, err := uc.Create(context.Background(), dto.CreateZoneRequest{
			Name: "bad", Type: "forbidden", Lat: 41, Lon: 2, RadiusMeters: 300,
		})
		assert.ErrorIs(t, err, errors.ErrInvalidZoneType)
	})

	t.Run("non-positive radius is rejected", func(t *testing.T) {
		uc := newZoneUseCase(&MockZoneRepository{}, &MockCacheRepository{})
		_, err := uc.Create(context.Background(), dto.CreateZoneRequest{
			Name: "bad", Type: "safe", Lat: 41, Lon: 2, RadiusMeters: 0,
		})
		assert.ErrorIs(t, err, errors.ErrInvalidRadius)
	})

	t.Run("repository failure maps to database error", func(t *testing.T) {
		zoneRepo := &MockZoneRepository{}
		zoneRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)

		uc := newZoneUseCase(zoneRepo, &MockCacheRepository{})
		_, err := uc.Create(context.Background(), dto.CreateZoneRequest{
			Name: "train station", Type: "risky", Lat: 41, Lon: 2, RadiusMeters: 300,
		})
		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})
}

func TestZoneUseCase_Deactivate(t *testing.T) {
	id := uuid.New()

	t.Run("existing zone is deactivated and cache invalidated", func(t *testing.T) {
		zoneRepo := &MockZoneRepository{}
		cacheRepo := &MockCacheRepository{}
		zoneRepo.On("GetByID", mock.Anything, id).Return(&domain.Zone{ID: id}, nil)
		zoneRepo.On("Deactivate", mock.Anything, id).Return(nil)
		cacheRepo.On("Delete", mock.Anything, "safety:zones:active").Return(nil)

		uc := newZoneUseCase(zoneRepo, cacheRepo)
		err := uc.Deactivate(context.Background(), id)

		assert.NoError(t, err)
		cacheRepo.AssertCalled(t, "Delete", mock.Anything, "safety:zones:active")
	})

	t.Run("missing zone returns not found", func(t *testing.T) {
		zoneRepo := &MockZoneRepository{}
		zoneRepo.On("GetByID", mock.Anything, id).Return(nil, errors.ErrZoneNotFound)

		uc := newZoneUseCase(zoneRepo, &MockCacheRepository{})
		err := uc.Deactivate(context.Background(), id)

		assert.ErrorIs(t, err, errors.ErrZoneNotFound)
		zoneRepo.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
	})
}
