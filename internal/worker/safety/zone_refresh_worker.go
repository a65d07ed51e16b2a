package safety

import (
	"context"
	"time"

	"github.com/safety-microservice/internal/usecase"
	"github.com/safety-microservice/internal/worker"
	"go.uber.org/zap"
)

// ZoneRefreshWorker периодически перечитывает активные зоны в кеш,
// чтобы скоринг не ждал холодного кеша после истечения TTL
type ZoneRefreshWorker struct {
	*worker.BaseWorker
	zoneIndex *usecase.ZoneIndex
	interval  time.Duration
}

// NewZoneRefreshWorker создает новый ZoneRefreshWorker
func NewZoneRefreshWorker(zoneIndex *usecase.ZoneIndex, interval time.Duration, logger *zap.Logger) *ZoneRefreshWorker {
	return &ZoneRefreshWorker{
		BaseWorker: worker.NewBaseWorker("zone-cache-refresh", logger),
		zoneIndex:  zoneIndex,
		interval:   interval,
	}
}

// Start запускает периодическое обновление; блокируется до остановки
func (w *ZoneRefreshWorker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.StopChan():
			return nil
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := w.zoneIndex.Refresh(refreshCtx); err != nil {
				w.Logger().Warn("Failed to refresh zone cache", zap.Error(err))
			}
			cancel()
		}
	}
}
