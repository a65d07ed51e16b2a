package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/safety-microservice/internal/domain"
)

// ZoneRepository - интерфейс для работы с геозонами
type ZoneRepository interface {
	// Create сохраняет новую зону
	Create(ctx context.Context, zone *domain.Zone) error

	// GetByID возвращает зону по ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Zone, error)

	// ActiveZones возвращает все активные зоны
	ActiveZones(ctx context.Context) ([]domain.Zone, error)

	// Deactivate мягко деактивирует зону (зоны никогда не удаляются физически)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
