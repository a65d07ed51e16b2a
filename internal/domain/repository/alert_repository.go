package repository

import (
	"context"
	"time"

	"github.com/safety-microservice/internal/domain"
)

// AlertRepository - интерфейс для работы с алертами.
// RecentAlerts - тот самый read path, через который движок риска читает
// события, созданные этим же пайплайном (обратная связь по спецификации).
type AlertRepository interface {
	// Create сохраняет новый алерт
	Create(ctx context.Context, alert *domain.AlertEvent) error

	// RecentAlerts возвращает алерты в радиусе radiusKm от center,
	// созданные не раньше since
	RecentAlerts(ctx context.Context, center domain.Coordinate, radiusKm float64, since time.Time) ([]domain.AlertEvent, error)
}
