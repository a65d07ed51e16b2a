package dto

// CreateZoneRequest - запрос authority-процесса на создание зоны
type CreateZoneRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=255"`
	Type         string  `json:"type" validate:"required,oneof=safe risky restricted"`
	Lat          float64 `json:"lat" validate:"min=-90,max=90"`
	Lon          float64 `json:"lon" validate:"min=-180,max=180"`
	RadiusMeters float64 `json:"radius_meters" validate:"required,gt=0"`
}
