// internal/repository/postgres/counter_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"storefront-crm/internal/domain/commerce"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CounterRepository hands out per-store sequence numbers from store_counters.
type CounterRepository struct {
	db *pgxpool.Pool
}

func NewCounterRepository(db *pgxpool.Pool) *CounterRepository {
	return &CounterRepository{db: db}
}

// NextWithTx increments and returns the named counter for a store. The upsert
// takes a row lock that is held until tx ends, so two writers in one store
// queue behind each other while other stores proceed.
func (r *CounterRepository) NextWithTx(ctx context.Context, tx pgx.Tx, storeID, name string) (int64, error) {
	if tx == nil {
		return 0, errors.New("counter increment requires a transaction")
	}
	query := `
		INSERT INTO store_counters (store_id, name, value) VALUES ($1, $2, 1)
		ON CONFLICT (store_id, name) DO UPDATE SET value = store_counters.value + 1
		RETURNING value
	`
	var n int64
	if err := tx.QueryRow(ctx, query, storeID, name).Scan(&n); err != nil {
		return 0, mapError(fmt.Sprintf("next %s number", name), err)
	}
	return n, nil
}

// Backfill raises each counter of a store to the highest number already
// used, which repairs stores whose rows were imported without counters.
func (r *CounterRepository) Backfill(ctx context.Context, storeID string) (*commerce.BackfillResult, error) {
	query := `
		INSERT INTO store_counters (store_id, name, value)
		VALUES
			($1, 'orders',   (SELECT COALESCE(MAX(number), 0) FROM orders   WHERE store_id = $1)),
			($1, 'payments', (SELECT COALESCE(MAX(number), 0) FROM payments WHERE store_id = $1))
		ON CONFLICT (store_id, name) DO UPDATE
			SET value = GREATEST(store_counters.value, EXCLUDED.value)
		RETURNING name, value
	`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, mapError("backfill counters", err)
	}
	defer rows.Close()

	res := &commerce.BackfillResult{StoreID: storeID}
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, mapError("scan counter", err)
		}
		switch name {
		case commerce.CounterOrders:
			res.Orders = value
		case commerce.CounterPayments:
			res.Payments = value
		}
	}
	return res, mapError("backfill counters", rows.Err())
}
