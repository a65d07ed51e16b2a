package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/safety-microservice/internal/domain"
	"github.com/safety-microservice/internal/domain/repository"
	"go.uber.org/zap"
)

const brokerTopicPrefix = "safety:alerts:"

// BrokerTopic возвращает имя pub/sub топика для канала подписчиков
func BrokerTopic(channel string) string {
	return brokerTopicPrefix + channel
}

// Envelope - обертка сообщения в брокере. Origin нужен, чтобы экземпляр,
// уже доставивший сообщение локально, не доставил его второй раз,
// получив собственную публикацию из топика.
type Envelope struct {
	Origin  string              `json:"origin"`
	Payload domain.AlertPayload `json:"payload"`
}

// Publisher рассылает алерты подписчикам. Всегда доставляет в локальный хаб;
// в broker-режиме дополнительно публикует в общий топик, чтобы остальные
// экземпляры сервиса доставили сообщение своим подключениям.
// Недоступный брокер деградирует публикацию до локальной доставки без ошибки.
type Publisher struct {
	hub           *Hub
	broker        repository.BrokerRepository
	instanceID    string
	brokerTimeout time.Duration
	logger        *zap.Logger
}

// NewPublisher создает Publisher. broker может быть nil - тогда только
// локальная доставка.
func NewPublisher(
	hub *Hub,
	broker repository.BrokerRepository,
	instanceID string,
	brokerTimeout time.Duration,
	logger *zap.Logger,
) *Publisher {
	return &Publisher{
		hub:           hub,
		broker:        broker,
		instanceID:    instanceID,
		brokerTimeout: brokerTimeout,
		logger:        logger,
	}
}

// InstanceID возвращает идентификатор этого экземпляра сервиса
func (p *Publisher) InstanceID() string {
	return p.instanceID
}

// Publish доставляет payload в канал
func (p *Publisher) Publish(ctx context.Context, channel string, payload domain.AlertPayload) {
	p.hub.Publish(channel, payload)

	if p.broker == nil {
		return
	}

	data, err := json.Marshal(Envelope{
		Origin:  p.instanceID,
		Payload: payload,
	})
	if err != nil {
		p.logger.Error("Failed to marshal broker envelope", zap.Error(err))
		return
	}

	brokerCtx, cancel := context.WithTimeout(ctx, p.brokerTimeout)
	defer cancel()

	if err := p.broker.Publish(brokerCtx, BrokerTopic(channel), data); err != nil {
		// Деградация до локальной доставки, не ошибка
		p.logger.Warn("Broker unreachable, delivered locally only",
			zap.String("channel", channel),
			zap.Error(err))
	}
}
