package dto

import "time"

// PingRequest - входящее GPS-обновление от мобильного клиента.
// Координаты вне диапазона отклоняются валидатором, а не клампятся.
type PingRequest struct {
	TouristID string    `json:"tourist_id" validate:"required,uuid4"`
	Lat       float64   `json:"lat" validate:"min=-90,max=90"`
	Lon       float64   `json:"lon" validate:"min=-180,max=180"`
	Speed     *float64  `json:"speed,omitempty" validate:"omitempty,min=0"`
	Accuracy  *float64  `json:"accuracy,omitempty" validate:"omitempty,min=0"`
	Timestamp time.Time `json:"timestamp"`
}

// FactorDTO - вклад одного фактора
type FactorDTO struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoreResponse - результат скоринга пинга
type ScoreResponse struct {
	Score           float64              `json:"score"`
	RiskLevel       string               `json:"risk_level"`
	Factors         map[string]FactorDTO `json:"factors"`
	Recommendations []string             `json:"recommendations"`
	Alert           *AlertResponse       `json:"alert,omitempty"`
}

// TouristScoreResponse - последняя сохраненная оценка туриста
type TouristScoreResponse struct {
	TouristID string               `json:"tourist_id"`
	Lat       float64              `json:"lat"`
	Lon       float64              `json:"lon"`
	Score     float64              `json:"score"`
	RiskLevel string               `json:"risk_level"`
	Factors   map[string]FactorDTO `json:"factors"`
	Timestamp time.Time            `json:"timestamp"`
}
