// internal/service/tenant/ports.go
package tenant

import (
	"context"
	"time"

	"storefront-crm/internal/domain/tenant"

	"github.com/jackc/pgx/v5"
)

// The interfaces below are the slices of the Postgres repositories this
// service uses; *postgres.XRepository satisfies each of them.

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type MerchantStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, m *tenant.Merchant) error
	FindByID(ctx context.Context, id string) (*tenant.Merchant, error)
	FindByEmail(ctx context.Context, email string) (*tenant.Merchant, error)
}

type SubscriptionStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, s *tenant.Subscription) error
	FindByMerchant(ctx context.Context, merchantID string) (*tenant.Subscription, error)
	Update(ctx context.Context, s *tenant.Subscription) error
}

type StoreStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, s *tenant.Store) error
	FindByID(ctx context.Context, id string) (*tenant.Store, error)
	ListForMerchant(ctx context.Context, merchantID string) ([]tenant.Store, error)
	Update(ctx context.Context, s *tenant.Store) error
	SoftDelete(ctx context.Context, id string) error
}

type MemberStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, m *tenant.TeamMember) error
	FindByStoreAndMerchant(ctx context.Context, storeID, merchantID string) (*tenant.TeamMember, error)
	FindByInviteToken(ctx context.Context, token string) (*tenant.TeamMember, error)
	Accept(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, storeID, id string) error
	ListByStore(ctx context.Context, storeID string) ([]tenant.TeamMember, error)
}

type UserStore interface {
	Create(ctx context.Context, u *tenant.User) error
	FindByID(ctx context.Context, storeID, id string) (*tenant.User, error)
	ListByStore(ctx context.Context, storeID string) ([]tenant.User, error)
}

// MembershipCache is satisfied by *cache.MembershipCache.
type MembershipCache interface {
	Get(ctx context.Context, storeID, merchantID string) (*tenant.TeamMember, bool, error)
	Set(ctx context.Context, m *tenant.TeamMember) error
	Invalidate(ctx context.Context, storeID, merchantID string) error
	InvalidateStore(ctx context.Context, storeID string) error
}

// Disconnector drops live websocket sessions once access is gone.
// *websocket.Hub satisfies it.
type Disconnector interface {
	DisconnectMerchant(storeID, merchantID, reason string)
	DisconnectStore(storeID, reason string)
}

// InviteMailer is satisfied by *email.EmailSender.
type InviteMailer interface {
	SendInvite(to, storeName, inviteToken string, role tenant.Role) error
}
