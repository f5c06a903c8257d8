package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbook/config"
	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps cancellation dialogs in Redis so any instance can serve
// the next step of a wizard.
type RedisCache struct {
	client    *redis.Client
	dialogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, dialogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		dialogTTL: dialogTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) SaveDialog(ctx context.Context, dialog domain.Dialog) error {
	payload, err := json.Marshal(dialog)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dialogKey(dialog.ID), payload, c.dialogTTL).Err()
}

func (c *RedisCache) LoadDialog(ctx context.Context, dialogID string) (*domain.Dialog, error) {
	data, err := c.client.Get(ctx, dialogKey(dialogID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var dialog domain.Dialog
	if err := json.Unmarshal(data, &dialog); err != nil {
		return nil, err
	}
	return &dialog, nil
}

func (c *RedisCache) AcquireDialogLock(ctx context.Context, dialogID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, dialogLockKey(dialogID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseDialogLock(ctx context.Context, dialogID string) error {
	return c.client.Del(ctx, dialogLockKey(dialogID)).Err()
}

func dialogKey(dialogID string) string {
	return fmt.Sprintf("cancellation:dialog:%s", dialogID)
}

func dialogLockKey(dialogID string) string {
	return fmt.Sprintf("lock:cancellation:dialog:%s", dialogID)
}
