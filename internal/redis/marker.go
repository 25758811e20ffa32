package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marker records one-shot events with a TTL, backed by SETNX. The reminder
// sweeper uses it to avoid re-mailing the same payment request on every
// sweep.
type Marker struct {
	client *redis.Client
	prefix string
}

// NewMarker creates a Marker namespaced under prefix.
func NewMarker(client *redis.Client, prefix string) *Marker {
	return &Marker{client: client, prefix: prefix}
}

// MarkOnce returns true the first time key is marked within ttl, false on
// subsequent calls while the mark is still live.
func (m *Marker) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	set, err := m.client.SetNX(ctx, m.prefix+":"+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark %s: %w", key, err)
	}
	return set, nil
}
