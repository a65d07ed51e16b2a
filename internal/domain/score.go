package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel - уровень риска, детерминированно выводится из оценки
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// RiskLevelFromScore возвращает уровень риска по фиксированной таблице порогов.
// Уровень никогда не задается независимо от оценки.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLevelLow
	case score >= 60:
		return RiskLevelMedium
	case score >= 40:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// FactorScore - вклад одного фактора в композитную оценку
type FactorScore struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoreSnapshot - последняя сохраненная оценка туриста, читается из
// журнала пингов для read-поверхности
type ScoreSnapshot struct {
	TouristID uuid.UUID              `json:"tourist_id"`
	Location  Coordinate             `json:"location"`
	Score     float64                `json:"score"`
	RiskLevel RiskLevel              `json:"risk_level"`
	Factors   map[string]FactorScore `json:"factors"`
	Timestamp time.Time              `json:"timestamp"`
}

// CompositeScore - результат работы движка риска для одного пинга.
// Эфемерный объект: вычисляется на каждый пинг, сохраняется коллаборатором,
// после создания не мутируется. Score всегда в диапазоне [0,100].
type CompositeScore struct {
	Score           float64                `json:"score"`
	RiskLevel       RiskLevel              `json:"risk_level"`
	Factors         map[string]FactorScore `json:"factors"`
	Recommendations []string               `json:"recommendations"`
	ComputedAt      time.Time              `json:"computed_at"`
}
