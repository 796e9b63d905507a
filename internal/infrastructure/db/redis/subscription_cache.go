package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/possuite/backoffice/internal/core/domain"
)

const (
	subscriptionKeyPrefix = "subscription:active:"
	defaultCacheTTL       = 5 * time.Minute
	nullMarkerTTL         = 30 * time.Second
	nullMarker            = "none"
)

// SubscriptionCache caches an owner's active subscription as JSON. An owner
// without one is cached as a short-lived null marker so repeated checks do
// not hit MongoDB.
// Key format: subscription:active:<owner_id>
type SubscriptionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubscriptionCache wraps client. ttl <= 0 selects the default.
func NewSubscriptionCache(client *redis.Client, ttl time.Duration) *SubscriptionCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &SubscriptionCache{client: client, ttl: ttl}
}

// Get returns hit=false on a miss. A hit with a nil subscription is the null
// marker.
func (c *SubscriptionCache) Get(ctx context.Context, ownerID string) (*domain.UserSubscription, bool, error) {
	raw, err := c.client.Get(ctx, c.key(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("subscription cache get: %w", err)
	}
	sub, err := decodeSubscription(raw)
	if err != nil {
		// Treat corrupt entries as a miss; the next Set overwrites them.
		return nil, false, err
	}
	return sub, true, nil
}

// Set stores sub, or the null marker when sub is nil. Entries expire no later
// than the subscription end date.
func (c *SubscriptionCache) Set(ctx context.Context, ownerID string, sub *domain.UserSubscription) error {
	raw, err := encodeSubscription(sub)
	if err != nil {
		return err
	}
	ttl := c.entryTTL(sub, time.Now())
	if ttl <= 0 {
		return nil
	}
	if err := c.client.Set(ctx, c.key(ownerID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("subscription cache set: %w", err)
	}
	return nil
}

// Fill is Set for readers: it never replaces an existing entry.
func (c *SubscriptionCache) Fill(ctx context.Context, ownerID string, sub *domain.UserSubscription) error {
	raw, err := encodeSubscription(sub)
	if err != nil {
		return err
	}
	ttl := c.entryTTL(sub, time.Now())
	if ttl <= 0 {
		return nil
	}
	if err := c.client.SetNX(ctx, c.key(ownerID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("subscription cache fill: %w", err)
	}
	return nil
}

func (c *SubscriptionCache) Invalidate(ctx context.Context, ownerID string) error {
	if err := c.client.Del(ctx, c.key(ownerID)).Err(); err != nil {
		return fmt.Errorf("subscription cache invalidate: %w", err)
	}
	return nil
}

func (c *SubscriptionCache) key(ownerID string) string {
	return subscriptionKeyPrefix + ownerID
}

// entryTTL adds up to 20% jitter so entries written together do not expire
// together, and caps the result at the subscription end date.
func (c *SubscriptionCache) entryTTL(sub *domain.UserSubscription, now time.Time) time.Duration {
	if sub == nil {
		return nullMarkerTTL
	}
	ttl := c.ttl + time.Duration(rand.Int64N(int64(c.ttl)/5+1))
	if remaining := sub.EndDate.Sub(now); remaining < ttl {
		ttl = remaining
	}
	return ttl
}

func encodeSubscription(sub *domain.UserSubscription) ([]byte, error) {
	if sub == nil {
		return []byte(nullMarker), nil
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode subscription: %w", err)
	}
	return raw, nil
}

func decodeSubscription(raw []byte) (*domain.UserSubscription, error) {
	if string(raw) == nullMarker {
		return nil, nil
	}
	var sub domain.UserSubscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &sub, nil
}
