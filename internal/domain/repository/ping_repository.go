package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/safety-microservice/internal/domain"
)

// PingRepository - интерфейс для работы с GPS-пингами
type PingRepository interface {
	// Create сохраняет пинг вместе с вычисленной оценкой
	Create(ctx context.Context, ping *domain.Ping, score *domain.CompositeScore) error

	// CountNearby считает пинги других туристов в радиусе radiusKm от center,
	// полученные не раньше since. Пинги туриста excludeTourist не учитываются.
	CountNearby(ctx context.Context, center domain.Coordinate, radiusKm float64, since time.Time, excludeTourist uuid.UUID) (int, error)

	// LatestScore возвращает последнюю сохраненную оценку туриста
	LatestScore(ctx context.Context, touristID uuid.UUID) (*domain.ScoreSnapshot, error)
}
