// internal/repository/postgres/merchant_repo.go
package postgres

import (
	"context"
	"time"

	"storefront-crm/internal/domain/tenant"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MerchantRepository struct {
	db *pgxpool.Pool
}

func NewMerchantRepository(db *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// CreateWithTx inserts a merchant. A nil tx runs on the pool.
func (r *MerchantRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, m *tenant.Merchant) error {
	query := `
		INSERT INTO merchants (id, email, phone, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if m.ID == "" {
		m.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query, m.ID, m.Email, m.Phone, m.Name).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	return mapError("create merchant", err)
}

func (r *MerchantRepository) FindByID(ctx context.Context, id string) (*tenant.Merchant, error) {
	return r.findOne(ctx, "find merchant", `WHERE id = $1`, id)
}

func (r *MerchantRepository) FindByEmail(ctx context.Context, email string) (*tenant.Merchant, error) {
	return r.findOne(ctx, "find merchant by email", `WHERE lower(email) = lower($1)`, email)
}

func (r *MerchantRepository) findOne(ctx context.Context, op, where string, args ...any) (*tenant.Merchant, error) {
	query := `SELECT id, email, phone, name, created_at, updated_at FROM merchants ` + where

	var m tenant.Merchant
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.Email, &m.Phone, &m.Name, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(op, err)
	}
	return &m, nil
}

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, merchant_id, plan, status, current_period_start, current_period_end,
	cancel_at_period_end, trial_ends_at, canceled_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (*tenant.Subscription, error) {
	var s tenant.Subscription
	err := row.Scan(
		&s.ID, &s.MerchantID, &s.Plan, &s.Status, &s.CurrentPeriodStart, &s.CurrentPeriodEnd,
		&s.CancelAtPeriodEnd, &s.TrialEndsAt, &s.CanceledAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateWithTx inserts a subscription. The unique merchant_id constraint
// keeps it one-to-one with the merchant.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *tenant.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, merchant_id, plan, status, current_period_start, current_period_end,
			cancel_at_period_end, trial_ends_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if s.ID == "" {
		s.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query,
		s.ID, s.MerchantID, s.Plan, s.Status, s.CurrentPeriodStart, s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd, s.TrialEndsAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError("create subscription", err)
}

func (r *SubscriptionRepository) FindByMerchant(ctx context.Context, merchantID string) (*tenant.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE merchant_id = $1`
	s, err := scanSubscription(r.db.QueryRow(ctx, query, merchantID))
	if err != nil {
		return nil, mapError("find subscription", err)
	}
	return s, nil
}

// Update persists plan, status, period and cancellation fields.
func (r *SubscriptionRepository) Update(ctx context.Context, s *tenant.Subscription) error {
	query := `
		UPDATE subscriptions
		SET plan = $1, status = $2, current_period_start = $3, current_period_end = $4,
		    cancel_at_period_end = $5, trial_ends_at = $6, canceled_at = $7, updated_at = $8
		WHERE id = $9
	`
	s.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query,
		s.Plan, s.Status, s.CurrentPeriodStart, s.CurrentPeriodEnd,
		s.CancelAtPeriodEnd, s.TrialEndsAt, s.CanceledAt, s.UpdatedAt, s.ID,
	)
	return mustAffect("update subscription", tag, err)
}
