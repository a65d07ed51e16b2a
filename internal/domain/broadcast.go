package domain

import (
	"time"

	"github.com/google/uuid"
)

// BroadcastMessageTypeSafetyAlert - тип сообщения для алертов безопасности
const BroadcastMessageTypeSafetyAlert = "safety_alert"

// AlertPayload - структура сообщения, рассылаемого подписчикам канала.
// Набор полей стабилен; потребители должны терпимо относиться
// к появлению новых полей.
type AlertPayload struct {
	Type            string                 `json:"type"`
	TouristID       uuid.UUID              `json:"tourist_id"`
	Severity        Severity               `json:"severity"`
	Score           float64                `json:"score"`
	RiskLevel       RiskLevel              `json:"risk_level"`
	Coordinate      Coordinate             `json:"coordinate"`
	Factors         map[string]FactorScore `json:"factors"`
	Recommendations []string               `json:"recommendations"`
	Timestamp       time.Time              `json:"timestamp"`
}

// NewAlertPayload собирает broadcast-сообщение из алерта и его оценки
func NewAlertPayload(alert *AlertEvent, score *CompositeScore) AlertPayload {
	return AlertPayload{
		Type:            BroadcastMessageTypeSafetyAlert,
		TouristID:       alert.TouristID,
		Severity:        alert.Severity,
		Score:           score.Score,
		RiskLevel:       score.RiskLevel,
		Coordinate:      alert.Location,
		Factors:         score.Factors,
		Recommendations: score.Recommendations,
		Timestamp:       alert.CreatedAt,
	}
}
