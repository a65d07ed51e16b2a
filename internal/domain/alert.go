package domain

import (
	"time"

	"github.com/google/uuid"
)

// Severity - серьезность алерта
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertEvent представляет сработавший алерт по безопасности.
// Создается alert policy, когда композитная оценка пересекает порог.
// Важно: движок риска читает свои же прошлые AlertEvent в факторах
// nearby-alerts и historical-risk - это намеренная обратная связь.
type AlertEvent struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TouristID uuid.UUID  `json:"tourist_id" db:"tourist_id"`
	Location  Coordinate `json:"location"`
	Severity  Severity   `json:"severity" db:"severity"`
	Score     float64    `json:"score" db:"score"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
