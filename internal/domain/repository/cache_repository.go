package repository

import (
	"context"
	"time"
)

// CacheRepository - интерфейс для кеширования
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
