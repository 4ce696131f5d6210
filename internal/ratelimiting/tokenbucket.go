package ratelimiting

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// KeyedLimiter paces operations per key, e.g. per destination URL
type KeyedLimiter interface {
	// Wait blocks until an operation for key is allowed, or ctx is done
	Wait(ctx context.Context, key string) error
}

type tokenBucketLimiter struct {
	limiterByKey    *ttlcache.Cache[string, *rate.Limiter]
	refillPerSecond float64
	burstSize       int
}

func (l *tokenBucketLimiter) Wait(ctx context.Context, key string) error {
	item, _ := l.limiterByKey.GetOrSet(key, rate.NewLimiter(rate.Limit(l.refillPerSecond), l.burstSize))
	return item.Value().Wait(ctx)
}

type RefillPerSecond float64
type BurstSize int

// NewTokenBucketLimiter returns a limiter with one token bucket per key. Call the returned func to stop it.
func NewTokenBucketLimiter(refillPerSecond RefillPerSecond, burstSize BurstSize) (KeyedLimiter, func()) {
	limiterTTLCache := ttlcache.New[string, *rate.Limiter](
		ttlcache.WithTTL[string, *rate.Limiter](30 * time.Minute),
	)
	go limiterTTLCache.Start()

	return &tokenBucketLimiter{
		limiterByKey:    limiterTTLCache,
		refillPerSecond: float64(refillPerSecond),
		burstSize:       int(burstSize),
	}, limiterTTLCache.Stop
}

type unlimited struct{}

func (unlimited) Wait(ctx context.Context, key string) error {
	return ctx.Err()
}

// NewUnlimited never waits
func NewUnlimited() KeyedLimiter {
	return unlimited{}
}
