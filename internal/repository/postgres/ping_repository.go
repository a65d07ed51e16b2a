package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/pkg/errors"
)

type pingRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPingRepository создает новый экземпляр PingRepository
func NewPingRepository(db *DB) repository.PingRepository {
	return &pingRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

// Create сохраняет пинг вместе с оценкой и ее breakdown
func (r *pingRepository) Create(ctx context.Context, ping *domain.Ping, score *domain.CompositeScore) error {
	factors, err := json.Marshal(score.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}

	query := `
		INSERT INTO pings (id, tourist_id, lat, lon, speed, accuracy, timestamp, score, risk_level, factors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		ping.ID, ping.TouristID,
		ping.Location.Lat, ping.Location.Lon,
		ping.Speed, ping.Accuracy, ping.Timestamp,
		score.Score, score.RiskLevel, factors,
	)
	if err != nil {
		r.logger.Error("Failed to insert ping",
			zap.String("ping_id", ping.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to insert ping: %w", err)
	}

	return nil
}

// CountNearby считает пинги других туристов в радиусе radiusKm от center
// с момента since
func (r *pingRepository) CountNearby(ctx context.Context, center domain.Coordinate, radiusKm float64, since time.Time, excludeTourist uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM pings
		WHERE timestamp >= $3
		  AND tourist_id <> $6
		  AND lat BETWEEN $1 - $4 AND $1 + $4
		  AND (
		    6371 * 2 * asin(sqrt(
		      power(sin(radians((lat - $1) / 2)), 2) +
		      cos(radians($1)) * cos(radians(lat)) *
		      power(sin(radians((lon - $2) / 2)), 2)
		    ))
		  ) <= $5
	`

	latDelta := radiusKm / 111.0

	var count int
	err := r.db.QueryRowContext(ctx, query,
		center.Lat, center.Lon, since, latDelta, radiusKm, excludeTourist,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count nearby pings: %w", err)
	}

	return count, nil
}

// LatestScore возвращает последнюю сохраненную оценку туриста
func (r *pingRepository) LatestScore(ctx context.Context, touristID uuid.UUID) (*domain.ScoreSnapshot, error) {
	query := `
		SELECT tourist_id, lat, lon, score, risk_level, factors, timestamp
		FROM pings
		WHERE tourist_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var snapshot domain.ScoreSnapshot
	var factors []byte
	err := r.db.QueryRowContext(ctx, query, touristID).Scan(
		&snapshot.TouristID,
		&snapshot.Location.Lat, &snapshot.Location.Lon,
		&snapshot.Score, &snapshot.RiskLevel,
		&factors, &snapshot.Timestamp,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to query latest score: %w", err)
	}

	if err := json.Unmarshal(factors, &snapshot.Factors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
	}

	return &snapshot, nil
}
