package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storepay/gateway/internal/entity"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache stores invoice records for ttl, which should match the
// invoice lifetime: an expired invoice is useless to the checkout page.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCache) Invoice(ctx context.Context, orderID int64) (entity.InvoiceRecord, error) {
	data, err := r.client.Get(ctx, invoiceKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entity.InvoiceRecord{}, ErrCacheMiss
	}

	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("redis get: %w", err)
	}

	var rec entity.InvoiceRecord

	err = json.Unmarshal(data, &rec)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("unmarshal invoice record: %w", err)
	}

	return rec, nil
}

func (r *RedisCache) SaveInvoice(ctx context.Context, orderID int64, rec entity.InvoiceRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal invoice record: %w", err)
	}

	err = r.client.Set(ctx, invoiceKey(orderID), data, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

func (r *RedisCache) DeleteInvoice(ctx context.Context, orderID int64) error {
	err := r.client.Del(ctx, invoiceKey(orderID)).Err()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

func invoiceKey(orderID int64) string {
	return fmt.Sprintf("invoice:%d", orderID)
}
