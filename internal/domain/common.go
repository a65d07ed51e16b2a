package domain

// Coordinate представляет географическую точку в градусах
type Coordinate struct {
	Lat float64 `json:"lat" db:"lat"`
	Lon float64 `json:"lon" db:"lon"`
}

// BrokerMessage представляет сообщение, полученное из pub/sub брокера
type BrokerMessage struct {
	Channel string
	Payload []byte
}
