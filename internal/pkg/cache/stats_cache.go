// internal/pkg/cache/stats_cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"storefront-crm/internal/crmview"

	"github.com/redis/go-redis/v9"
)

const (
	dashboardKeyPrefix = "crm:dashboard:"
	generationPrefix   = "crm:dashboard:gen:"
)

// StatsCache holds one computed dashboard per store. Entries are keyed by the
// store's generation, which every CRM write bumps, so a dashboard computed
// before a write can never be served after it. The TTL only reclaims entries
// of old generations.
type StatsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewStatsCache(client redis.UniversalClient, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func (c *StatsCache) key(storeID string, gen int64) string {
	return dashboardKeyPrefix + storeID + ":" + strconv.FormatInt(gen, 10)
}

// Generation returns the store's current generation, 0 if it never changed.
func (c *StatsCache) Generation(ctx context.Context, storeID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationPrefix+storeID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read dashboard generation: %w", err)
	}
	return gen, nil
}

// Get returns the dashboard cached for the current generation along with that
// generation. Callers that recompute on a miss must Set under the returned gen.
func (c *StatsCache) Get(ctx context.Context, storeID string) (*crmview.Dashboard, int64, bool, error) {
	gen, err := c.Generation(ctx, storeID)
	if err != nil {
		return nil, 0, false, err
	}
	var d crmview.Dashboard
	hit, err := getJSON(ctx, c.client, c.key(storeID, gen), &d)
	if err != nil || !hit {
		return nil, gen, false, err
	}
	return &d, gen, true, nil
}

func (c *StatsCache) Set(ctx context.Context, storeID string, gen int64, d *crmview.Dashboard) error {
	return setJSON(ctx, c.client, c.key(storeID, gen), d, c.ttl)
}

// Invalidate moves the store to a new generation, orphaning every dashboard
// computed before the call.
func (c *StatsCache) Invalidate(ctx context.Context, storeID string) error {
	return c.client.Incr(ctx, generationPrefix+storeID).Err()
}
