package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/pkg/clients"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// DescriptionCacheRepo кэширует сгенерированные описания продуктов в Redis.
// Кэш терпим к сбоям: ошибки чтения и записи логируются и не прерывают запрос.
type DescriptionCacheRepo struct {
	client *clients.RedisClient
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewDescriptionCacheRepo(client *clients.RedisClient, cfg *cfg.RedisCfg, logger logger.Logger) *DescriptionCacheRepo {
	return &DescriptionCacheRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// GetDescription возвращает закэшированное описание или пустую строку при промахе.
func (d *DescriptionCacheRepo) GetDescription(ctx context.Context, productID string) (string, error) {
	value, err := d.client.Client.Get(ctx, d.descriptionKey(productID)).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return "", nil // cache miss
		}
		d.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return value, nil
}

// SetDescription кэширует описание с TTL из конфигурации.
func (d *DescriptionCacheRepo) SetDescription(ctx context.Context, productID string, text string) error {
	if err := d.client.Client.Set(ctx, d.descriptionKey(productID), text, d.cfg.DescriptionTTL).Err(); err != nil {
		d.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// descriptionKey возвращает Redis-ключ описания продукта
func (d *DescriptionCacheRepo) descriptionKey(productID string) string {
	return fmt.Sprintf("description:%s", productID)
}
