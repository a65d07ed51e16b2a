package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ping представляет одно GPS-обновление от мобильного клиента.
// После скоринга пинг не изменяется: один пинг дает ровно одну запись оценки.
type Ping struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TouristID uuid.UUID  `json:"tourist_id" db:"tourist_id"`
	Location  Coordinate `json:"location"`
	Speed     *float64   `json:"speed,omitempty" db:"speed"`
	Accuracy  *float64   `json:"accuracy,omitempty" db:"accuracy"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}
