package repository

import (
	"context"

	"github.com/safety-microservice/internal/domain"
)

// BrokerRepository - интерфейс внешнего pub/sub брокера.
// Используется в broker-режиме broadcast-слоя, чтобы N экземпляров
// сервиса разделяли один логический канал подписчиков.
type BrokerRepository interface {
	// Publish публикует сообщение в topic. Ошибка брокера не фатальна:
	// вызывающий деградирует до локальной доставки.
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe подписывается на topic и возвращает канал входящих сообщений.
	// Канал закрывается при отмене контекста.
	Subscribe(ctx context.Context, topic string) (<-chan domain.BrokerMessage, error)

	// PublishToStream публикует событие в durable-стрим для downstream
	// потребителей (push/SMS коллабораторы)
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
