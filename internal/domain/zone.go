package domain

import (
	"time"

	"github.com/google/uuid"
)

// ZoneType - классификация зоны
type ZoneType string

const (
	ZoneTypeSafe       ZoneType = "safe"
	ZoneTypeRisky      ZoneType = "risky"
	ZoneTypeRestricted ZoneType = "restricted"
)

// ValidZoneType проверяет, что тип зоны один из поддерживаемых
func ValidZoneType(t string) bool {
	switch ZoneType(t) {
	case ZoneTypeSafe, ZoneTypeRisky, ZoneTypeRestricted:
		return true
	}
	return false
}

// Zone представляет круглую геозону с объявленной классификацией риска.
// Зоны создаются внешним authority-процессом и деактивируются мягко,
// чтобы исторические ссылки оставались валидными.
type Zone struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Type         ZoneType   `json:"type" db:"type"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters" db:"radius_meters"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
