package usecase

import (
	"math"
	"sync"

	"github.com/google/uuid"
)

const speedHistorySize = 50

// SpeedHistory хранит скользящее окно последних скоростей каждого туриста.
// Состояние советующее, а не критичное для безопасности: гонка между
// пингами одного туриста разрешается как last-write-wins.
type SpeedHistory struct {
	mu      sync.Mutex
	byTours map[uuid.UUID][]float64
}

// NewSpeedHistory создает новый трекер скоростей
func NewSpeedHistory() *SpeedHistory {
	return &SpeedHistory{
		byTours: make(map[uuid.UUID][]float64),
	}
}

// Record добавляет скорость в историю туриста, вытесняя самую старую запись
func (h *SpeedHistory) Record(touristID uuid.UUID, speed float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	history := append(h.byTours[touristID], speed)
	if len(history) > speedHistorySize {
		history = history[len(history)-speedHistorySize:]
	}
	h.byTours[touristID] = history
}

// Stats возвращает среднее и стандартное отклонение (population stddev)
// по истории туриста. ok=false, если истории нет.
// Отклонение ограничено снизу 1.0, чтобы исключить деление на ноль.
func (h *SpeedHistory) Stats(touristID uuid.UUID) (mean, stddev float64, ok bool) {
	h.mu.Lock()
	history := h.byTours[touristID]
	speeds := make([]float64, len(history))
	copy(speeds, history)
	h.mu.Unlock()

	if len(speeds) == 0 {
		return 0, 0, false
	}

	var sum float64
	for _, s := range speeds {
		sum += s
	}
	mean = sum / float64(len(speeds))

	var variance float64
	for _, s := range speeds {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(speeds))

	stddev = math.Sqrt(variance)
	if stddev < 1.0 {
		stddev = 1.0
	}

	return mean, stddev, true
}

// Len возвращает количество записей в истории туриста
func (h *SpeedHistory) Len(touristID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byTours[touristID])
}
