// Package storage provides PreferenceStore implementations for the currency
// engine: process memory, a local JSON file, Redis and SQL databases.
package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory keeps preferences in process memory. Values do not survive a
// restart; it suits tests and short lived servers.
type Memory struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewMemory creates a memory store. A zero ttl keeps values until deleted.
func NewMemory(ttl time.Duration) *Memory {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 2 * ttl
	}
	return &Memory{
		cache: cache.New(expiration, cleanup),
		ttl:   expiration,
	}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	text, ok := value.(string)
	if !ok {
		return "", false, nil
	}
	return text, true, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Set(key, value, m.ttl)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Delete(key)
	return nil
}
