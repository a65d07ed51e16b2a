package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
)

type alertRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAlertRepository создает новый экземпляр AlertRepository
func NewAlertRepository(db *DB) repository.AlertRepository {
	return &alertRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Create сохраняет новый алерт
func (r *alertRepository) Create(ctx context.Context, alert *domain.AlertEvent) error {
	query := `
		INSERT INTO alert_events (id, tourist_id, lat, lon, severity, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.TouristID,
		alert.Location.Lat, alert.Location.Lon,
		alert.Severity, alert.Score, alert.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert alert event",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to insert alert event: %w", err)
	}

	return nil
}

// RecentAlerts возвращает алерты в радиусе radiusKm от center с момента since.
// Точный отбор по haversine делается в SQL; грубый bounding box по широте
// отсекает заведомо дальние строки до вычисления формулы.
func (r *alertRepository) RecentAlerts(ctx context.Context, center domain.Coordinate, radiusKm float64, since time.Time) ([]domain.AlertEvent, error) {
	query := `
		SELECT id, tourist_id, lat, lon, severity, score, created_at
		FROM alert_events
		WHERE created_at >= $3
		  AND lat BETWEEN $1 - $4 AND $1 + $4
		  AND (
		    6371 * 2 * asin(sqrt(
		      power(sin(radians((lat - $1) / 2)), 2) +
		      cos(radians($1)) * cos(radians(lat)) *
		      power(sin(radians((lon - $2) / 2)), 2)
		    ))
		  ) <= $5
		ORDER BY created_at DESC
	`

	// 1 градус широты ~ 111 км
	latDelta := radiusKm / 111.0

	rows, err := r.db.QueryContext(ctx, query, center.Lat, center.Lon, since, latDelta, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.AlertEvent
	for rows.Next() {
		var alert domain.AlertEvent
		if err := rows.Scan(
			&alert.ID, &alert.TouristID,
			&alert.Location.Lat, &alert.Location.Lon,
			&alert.Severity, &alert.Score, &alert.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert events: %w", err)
	}

	return alerts, nil
}
