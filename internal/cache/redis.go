// Package cache keeps a short-lived copy of a customer's address collection so that
// page loads do not hit the account service every time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tiwac100/hydrogen/internal/domain"
)

const keyPrefix = "account:addresses:"

// AddressCache stores address collections in Redis, keyed by a digest of the
// customer's access token so the token itself never lands in Redis.
type AddressCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewAddressCache creates a Redis-backed address cache.
func NewAddressCache(client redis.Cmdable, ttl time.Duration) *AddressCache {
	return &AddressCache{
		client: client,
		ttl:    ttl,
	}
}

// Key returns the Redis key for a customer token.
func Key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached collection, or (nil, nil) on a miss.
func (c *AddressCache) Get(ctx context.Context, token string) (*domain.AddressCollection, error) {
	data, err := c.client.Get(ctx, Key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get addresses: %w", err)
	}

	var coll domain.AddressCollection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("unmarshal addresses: %w", err)
	}
	return &coll, nil
}

// Set stores the collection with the configured TTL.
func (c *AddressCache) Set(ctx context.Context, token string, coll *domain.AddressCollection) error {
	data, err := json.Marshal(coll)
	if err != nil {
		return fmt.Errorf("marshal addresses: %w", err)
	}

	if err := c.client.Set(ctx, Key(token), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set addresses: %w", err)
	}
	return nil
}

// Invalidate drops the cached collection for the token.
func (c *AddressCache) Invalidate(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, Key(token)).Err(); err != nil {
		return fmt.Errorf("redis del addresses: %w", err)
	}
	return nil
}
