// internal/pkg/cache/membership_cache.go
package cache

import (
	"context"
	"fmt"
	"time"

	"storefront-crm/internal/domain/tenant"

	"github.com/redis/go-redis/v9"
)

const memberKeyPrefix = "tenant:member:"

// MembershipCache remembers accepted store memberships so the per-request
// store guard does not hit Postgres. Only accepted members are stored.
type MembershipCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewMembershipCache(client redis.UniversalClient, ttl time.Duration) *MembershipCache {
	return &MembershipCache{client: client, ttl: ttl}
}

func (c *MembershipCache) key(storeID, merchantID string) string {
	return fmt.Sprintf("%s%s:%s", memberKeyPrefix, storeID, merchantID)
}

func (c *MembershipCache) Get(ctx context.Context, storeID, merchantID string) (*tenant.TeamMember, bool, error) {
	var m tenant.TeamMember
	hit, err := getJSON(ctx, c.client, c.key(storeID, merchantID), &m)
	if err != nil || !hit {
		return nil, false, err
	}
	return &m, true, nil
}

func (c *MembershipCache) Set(ctx context.Context, m *tenant.TeamMember) error {
	if m.Status != tenant.MemberAccepted {
		return nil
	}
	return setJSON(ctx, c.client, c.key(m.StoreID, m.MerchantID), m, c.ttl)
}

func (c *MembershipCache) Invalidate(ctx context.Context, storeID, merchantID string) error {
	return c.client.Del(ctx, c.key(storeID, merchantID)).Err()
}

// InvalidateStore drops every cached membership of a store, e.g. after it
// is deleted.
func (c *MembershipCache) InvalidateStore(ctx context.Context, storeID string) error {
	_, err := deleteMatching(ctx, c.client, c.key(storeID, "*"))
	return err
}
