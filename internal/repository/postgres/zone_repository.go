package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/errors"
)

type zoneRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewZoneRepository создает новый экземпляр ZoneRepository
func NewZoneRepository(db *DB) repository.ZoneRepository {
	return &zoneRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Create сохраняет новую зону
func (r *zoneRepository) Create(ctx context.Context, zone *domain.Zone) error {
	query := `
		INSERT INTO zones (id, name, type, lat, lon, radius_meters, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		zone.ID, zone.Name, zone.Type,
		zone.Center.Lat, zone.Center.Lon,
		zone.RadiusMeters, zone.IsActive, zone.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert zone",
			zap.String("zone_id", zone.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to insert zone: %w", err)
	}

	return nil
}

// GetByID возвращает зону по ID
func (r *zoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Zone, error) {
	query := `
		SELECT id, name, type, lat, lon, radius_meters, is_active, created_at
		FROM zones
		WHERE id = $1
	`

	var zone domain.Zone
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&zone.ID, &zone.Name, &zone.Type,
		&zone.Center.Lat, &zone.Center.Lon,
		&zone.RadiusMeters, &zone.IsActive, &zone.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to query zone: %w", err)
	}

	return &zone, nil
}

// ActiveZones возвращает все активные зоны
func (r *zoneRepository) ActiveZones(ctx context.Context) ([]domain.Zone, error) {
	query := `
		SELECT id, name, type, lat, lon, radius_meters, is_active, created_at
		FROM zones
		WHERE is_active = true
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active zones: %w", err)
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		var zone domain.Zone
		if err := rows.Scan(
			&zone.ID, &zone.Name, &zone.Type,
			&zone.Center.Lat, &zone.Center.Lon,
			&zone.RadiusMeters, &zone.IsActive, &zone.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, zone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate zones: %w", err)
	}

	return zones, nil
}

// Deactivate мягко деактивирует зону
func (r *zoneRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE zones SET is_active = false WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate zone: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return errors.ErrZoneNotFound
	}

	return nil
}
