package safety

import (
	"context"
	"encoding/json"

	"github.com/safety-microservice/internal/broadcast"
	"github.com/safety-microservice/internal/domain/repository"
	"github.com/safety-microservice/internal/worker"
	"go.uber.org/zap"
)

// RelayWorker слушает общий pub/sub топик канала и доставляет сообщения
// других экземпляров сервиса в локальный хаб. Вместе с broker-режимом
// Publisher это позволяет N stateless-экземплярам разделять один
// логический канал подписчиков.
type RelayWorker struct {
	*worker.BaseWorker
	broker     repository.BrokerRepository
	hub        *broadcast.Hub
	channel    string
	instanceID string
}

// NewRelayWorker создает новый RelayWorker
func NewRelayWorker(
	broker repository.BrokerRepository,
	hub *broadcast.Hub,
	channel string,
	instanceID string,
	logger *zap.Logger,
) *RelayWorker {
	return &RelayWorker{
		BaseWorker: worker.NewBaseWorker("broadcast-relay", logger),
		broker:     broker,
		hub:        hub,
		channel:    channel,
		instanceID: instanceID,
	}
}

// Start запускает цикл доставки; блокируется до остановки
func (w *RelayWorker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Остановка через Stop() транслируется в отмену контекста подписки
	go func() {
		select {
		case <-w.StopChan():
			cancel()
		case <-ctx.Done():
		}
	}()

	topic := broadcast.BrokerTopic(w.channel)
	messages, err := w.broker.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	w.Logger().Info("Relay worker subscribed",
		zap.String("topic", topic),
		zap.String("instance_id", w.instanceID))

	for msg := range messages {
		var envelope broadcast.Envelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			w.Logger().Warn("Failed to unmarshal broker envelope",
				zap.String("topic", msg.Channel),
				zap.Error(err))
			continue
		}

		// Собственные публикации уже доставлены локально
		if envelope.Origin == w.instanceID {
			continue
		}

		w.hub.Publish(w.channel, envelope.Payload)
	}

	w.Logger().Info("Relay worker stopped")
	return nil
}
