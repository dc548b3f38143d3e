package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service is the injected get/set/expire capability used by request handlers.
// Values are JSON encoded so every backend round-trips into a typed dest.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
}

// Noop never stores anything. Every Get is a miss.
type Noop struct{}

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Get(context.Context, string, interface{}) error { return ErrCacheMiss }
func (Noop) Delete(context.Context, ...string) error { return nil }
func (Noop) Exists(context.Context, ...string) (bool, error) { return false, nil }
func (Noop) Expire(context.Context, string, time.Duration) (bool, error) { return false, nil }

var (
	_ Service = Noop{}
	_ Service = (*MemoryCache)(nil)
	_ Service = (*RedisCache)(nil)
	_ Service = (*LayeredCache)(nil)
)
