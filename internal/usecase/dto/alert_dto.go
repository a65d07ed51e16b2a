package dto

import "time"

// RecentAlertsRequest - запрос алертов вокруг точки
type RecentAlertsRequest struct {
	Lat      float64 `json:"lat" query:"lat" validate:"min=-90,max=90"`
	Lon      float64 `json:"lon" query:"lon" validate:"min=-180,max=180"`
	RadiusKm float64 `json:"radius_km" query:"radius_km" validate:"required,gt=0"`
	Hours    int     `json:"hours" query:"hours" validate:"required,gt=0,lte=720"`
}

// AlertResponse - алерт в ответах API
type AlertResponse struct {
	ID        string    `json:"id"`
	TouristID string    `json:"tourist_id"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Severity  string    `json:"severity"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
