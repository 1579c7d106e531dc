// internal/service/crm/ports.go
package crm

import (
	"context"
	"time"

	"storefront-crm/internal/crmview"
	"storefront-crm/internal/domain/crm"
	wstypes "storefront-crm/internal/domain/websocket"

	"github.com/jackc/pgx/v5"
)

type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type ContactStore interface {
	Create(ctx context.Context, c *crm.Contact) error
	FindByID(ctx context.Context, storeID, id string) (*crm.Contact, error)
	ListByStore(ctx context.Context, storeID string) ([]crm.Contact, error)
	Update(ctx context.Context, c *crm.Contact) error
	SoftDeleteWithTx(ctx context.Context, tx pgx.Tx, storeID, id string) error
}

type LeadStore interface {
	Create(ctx context.Context, l *crm.Lead) error
	FindByID(ctx context.Context, storeID, id string) (*crm.Lead, error)
	ListByStore(ctx context.Context, storeID string) ([]crm.Lead, error)
	ListByContact(ctx context.Context, storeID, contactID string) ([]crm.Lead, error)
	UpdateStatus(ctx context.Context, storeID, id string, status crm.LeadStatus) error
	UpdateScore(ctx context.Context, storeID, id string, score int) error
	MarkContactedWithTx(ctx context.Context, tx pgx.Tx, storeID, id string, at time.Time) error
	MarkConvertedWithTx(ctx context.Context, tx pgx.Tx, storeID, id, dealID string, at time.Time) error
	SoftDeleteByContactWithTx(ctx context.Context, tx pgx.Tx, storeID, contactID string) error
}

type DealStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, d *crm.Deal) error
	FindByID(ctx context.Context, storeID, id string) (*crm.Deal, error)
	ListByStore(ctx context.Context, storeID string) ([]crm.Deal, error)
	ListByContact(ctx context.Context, storeID, contactID string) ([]crm.Deal, error)
	UpdateStageWithTx(ctx context.Context, tx pgx.Tx, d *crm.Deal) error
	SoftDeleteByContactWithTx(ctx context.Context, tx pgx.Tx, storeID, contactID string) error
}

type ActivityStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, a *crm.Activity) error
	ListByStore(ctx context.Context, storeID string) ([]crm.Activity, error)
	ListByContact(ctx context.Context, storeID, contactID string) ([]crm.Activity, error)
}

// StatsCache is satisfied by *cache.StatsCache. Get reports the generation
// the lookup was made under; Set stores under that generation so a refill
// racing an Invalidate lands on a key nobody reads again.
type StatsCache interface {
	Get(ctx context.Context, storeID string) (*crmview.Dashboard, int64, bool, error)
	Set(ctx context.Context, storeID string, gen int64, d *crmview.Dashboard) error
	Invalidate(ctx context.Context, storeID string) error
}

// EventPublisher pushes live events to a store's websocket clients.
// *websocket.Hub satisfies it.
type EventPublisher interface {
	Publish(storeID string, channel wstypes.ChannelType, event wstypes.EventType, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, wstypes.ChannelType, wstypes.EventType, interface{}) {}
