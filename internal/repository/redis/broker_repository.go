package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"go.uber.org/zap"
)

type brokerRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewBrokerRepository создает новый экземпляр BrokerRepository поверх
// Redis Pub/Sub (fan-out между экземплярами) и Redis Streams (durable-фид)
func NewBrokerRepository(client *redis.Client, logger *zap.Logger) repository.BrokerRepository {
	return &brokerRepository{
		client: client,
		logger: logger,
	}
}

// Publish публикует сообщение в pub/sub топик
func (r *brokerRepository) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := r.client.Publish(ctx, topic, payload).Err(); err != nil {
		r.logger.Warn("Failed to publish to broker topic",
			zap.String("topic", topic),
			zap.Error(err))
		return fmt.Errorf("failed to publish to topic: %w", err)
	}

	r.logger.Debug("Message published to broker topic",
		zap.String("topic", topic))
	return nil
}

// Subscribe подписывается на pub/sub топик. Возвращаемый канал закрывается
// при отмене контекста.
func (r *brokerRepository) Subscribe(ctx context.Context, topic string) (<-chan domain.BrokerMessage, error) {
	pubsub := r.client.Subscribe(ctx, topic)

	// Дожидаемся подтверждения подписки, чтобы не терять ранние сообщения
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	msgChan := make(chan domain.BrokerMessage, 16)

	go func() {
		defer close(msgChan)
		defer func() {
			if err := pubsub.Close(); err != nil {
				r.logger.Warn("Failed to close pubsub", zap.Error(err))
			}
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				r.logger.Info("Broker subscription stopped",
					zap.String("topic", topic))
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case msgChan <- domain.BrokerMessage{
					Channel: msg.Channel,
					Payload: []byte(msg.Payload),
				}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return msgChan, nil
}

// PublishToStream публикует событие в durable-стрим
func (r *brokerRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	// Сериализуем данные в JSON
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error("Failed to marshal data",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Публикуем в стрим
	result, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(jsonData),
		},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", result))
	return nil
}
