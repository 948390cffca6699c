package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"wellbook/models"
	"wellbook/utils"

	"github.com/go-redis/redis/v8"
)

// SlotCache holds a professional's booked slots for one date. Entries are
// versioned: Get reports the version it read under and Set only lands if that
// version is still current, so a fill racing an Invalidate is never served.
type SlotCache interface {
	Get(ctx context.Context, professionalID, date string) (slots []models.AppointmentSlot, version int64, ok bool, err error)
	Set(ctx context.Context, professionalID, date string, version int64, slots []models.AppointmentSlot) error
	Invalidate(ctx context.Context, professionalID, date string) error
}

const versionTTL = 48 * time.Hour

// RedisSlotCache stores slot lists as JSON under
// "slots:<professional>:<date>:<version>". The current version lives under
// "slots:v:<professional>:<date>" and Invalidate bumps it.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{client: client, ttl: ttl}
}

func slotVersionKey(professionalID, date string) string {
	return utils.SlotCachePrefix + "v:" + professionalID + ":" + date
}

func slotCacheKey(professionalID, date string, version int64) string {
	return utils.SlotCachePrefix + professionalID + ":" + date + ":" + strconv.FormatInt(version, 10)
}

func (c *RedisSlotCache) version(ctx context.Context, professionalID, date string) (int64, error) {
	v, err := c.client.Get(ctx, slotVersionKey(professionalID, date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read slot cache version: %w", err)
	}
	return v, nil
}

func (c *RedisSlotCache) Get(ctx context.Context, professionalID, date string) ([]models.AppointmentSlot, int64, bool, error) {
	version, err := c.version(ctx, professionalID, date)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, slotCacheKey(professionalID, date, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false, nil
	}
	if err != nil {
		return nil, version, false, fmt.Errorf("failed to read slot cache: %w", err)
	}

	var slots []models.AppointmentSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, version, false, fmt.Errorf("failed to decode cached slots: %w", err)
	}
	return slots, version, true, nil
}

// Set writes under the given version. A version superseded by Invalidate
// leaves an orphan key nobody reads, which expires with the TTL.
func (c *RedisSlotCache) Set(ctx context.Context, professionalID, date string, version int64, slots []models.AppointmentSlot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to encode slots: %w", err)
	}
	if err := c.client.Set(ctx, slotCacheKey(professionalID, date, version), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write slot cache: %w", err)
	}
	return nil
}

func (c *RedisSlotCache) Invalidate(ctx context.Context, professionalID, date string) error {
	key := slotVersionKey(professionalID, date)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	// Outlive every data key written under an older version.
	pipe.Expire(ctx, key, versionTTL+c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate slot cache: %w", err)
	}
	return nil
}
