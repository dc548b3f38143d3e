package cache

import (
	"context"
	"time"
)

// LayeredCache puts a short-lived in-process L1 in front of a shared L2.
type LayeredCache struct {
	l1    *MemoryCache
	l2    Service
	l1TTL time.Duration
}

type LayeredOption func(*LayeredCache)

// WithL1 sets the L1 size and the longest time it keeps an entry.
func WithL1(size int, ttl time.Duration) LayeredOption {
	return func(lc *LayeredCache) {
		lc.l1 = NewMemoryCache(WithMemoryMaxSize(size))
		lc.l1TTL = ttl
	}
}

func NewLayeredCache(l2 Service, opts ...LayeredOption) *LayeredCache {
	lc := &LayeredCache{l2: l2, l1TTL: time.Minute}
	for _, opt := range opts {
		opt(lc)
	}
	if lc.l1 == nil {
		lc.l1 = NewMemoryCache(WithMemoryMaxSize(1000))
	}
	return lc
}

// Set writes through: L2 first, then L1.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := lc.l2.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, value, lc.l1Expiry(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.l1.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.l2.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.l1.Set(ctx, key, dest, lc.l1TTL)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.l1.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	if ok, _ := lc.l1.Exists(ctx, keys...); ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, keys...)
}

func (lc *LayeredCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	_, _ = lc.l1.Expire(ctx, key, lc.l1Expiry(expiration))
	return lc.l2.Expire(ctx, key, expiration)
}

// l1Expiry keeps L1 from outliving the L2 entry.
func (lc *LayeredCache) l1Expiry(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.l1TTL {
		return expiration
	}
	return lc.l1TTL
}

// Close stops L1. L2 belongs to its creator.
func (lc *LayeredCache) Close() error {
	return lc.l1.Close()
}
