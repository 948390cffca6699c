package booking

import (
	"context"
	"fmt"
	"time"

	"wellbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// BookingLocker serialises bookings for one professional and date.
type BookingLocker interface {
	Acquire(ctx context.Context, professionalID, date string) (release func(context.Context) error, err error)
}

// releaseScript deletes the lock only while it still holds our token, so an
// expired lock taken over by another request is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisBookingLocker is a single-instance Redis lock (SET NX PX).
type RedisBookingLocker struct {
	client     *redis.Client
	ttl        time.Duration
	attempts   int
	retryDelay time.Duration
}

func NewRedisBookingLocker(client *redis.Client, ttl time.Duration) *RedisBookingLocker {
	return &RedisBookingLocker{
		client:     client,
		ttl:        ttl,
		attempts:   5,
		retryDelay: 100 * time.Millisecond,
	}
}

func (l *RedisBookingLocker) Acquire(ctx context.Context, professionalID, date string) (func(context.Context) error, error) {
	key := utils.BookingLockPrefix + professionalID + ":" + date
	token := uuid.New().String()

	for attempt := 1; attempt <= l.attempts; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire booking lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * l.retryDelay):
		}
	}
	return nil, ErrBookingInProgress
}
