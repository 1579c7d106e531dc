// internal/repository/postgres/order_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"storefront-crm/internal/domain/commerce"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, store_id, user_id, number, status, total, currency, items, created_at, updated_at`

func scanOrder(row pgx.Row) (*commerce.Order, error) {
	var o commerce.Order
	if err := row.Scan(&o.ID, &o.StoreID, &o.UserID, &o.Number, &o.Status, &o.Total,
		&o.Currency, &o.Items, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateWithTx inserts an order whose Number was drawn from the store counter
// in the same transaction.
func (r *OrderRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, o *commerce.Order) error {
	query := `
		INSERT INTO orders (id, store_id, user_id, number, status, total, currency, items)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if o.ID == "" {
		o.ID = NewID()
	}
	if o.Items == nil {
		o.Items = []commerce.OrderItem{}
	}
	err := orPool(r.db, tx).QueryRow(ctx, query,
		o.ID, o.StoreID, o.UserID, o.Number, o.Status, o.Total, o.Currency, o.Items,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return mapError("create order", err)
}

func (r *OrderRepository) FindByID(ctx context.Context, storeID, id string) (*commerce.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE store_id = $1 AND id = $2`
	o, err := scanOrder(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, mapError("find order", err)
	}
	return o, nil
}

// FindForUpdateWithTx locks the order row until tx ends.
func (r *OrderRepository) FindForUpdateWithTx(ctx context.Context, tx pgx.Tx, storeID, id string) (*commerce.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE store_id = $1 AND id = $2 FOR UPDATE`
	o, err := scanOrder(tx.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, mapError("lock order", err)
	}
	return o, nil
}

func (r *OrderRepository) List(ctx context.Context, storeID string, f commerce.OrderListFilters) ([]commerce.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE store_id = $1`
	args := []any{storeID}
	if f.Status != "" {
		query += ` AND status = $2`
		args = append(args, f.Status)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(` ORDER BY number DESC LIMIT %d`, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list orders", err)
	}
	defer rows.Close()

	var orders []commerce.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, mapError("scan order", err)
		}
		orders = append(orders, *o)
	}
	return orders, mapError("list orders", rows.Err())
}

func (r *OrderRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, storeID, id string, status commerce.OrderStatus) error {
	tag, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE store_id = $3 AND id = $4`,
		status, time.Now(), storeID, id)
	return mustAffect("update order status", tag, err)
}

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, store_id, order_id, number, amount, method, status, reference, created_at`

func (r *PaymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *commerce.Payment) error {
	query := `
		INSERT INTO payments (id, store_id, order_id, number, amount, method, status, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	if p.ID == "" {
		p.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query,
		p.ID, p.StoreID, p.OrderID, p.Number, p.Amount, p.Method, p.Status, p.Reference,
	).Scan(&p.CreatedAt)
	return mapError("create payment", err)
}

// SumSucceededWithTx totals the successful payments recorded against an order.
func (r *PaymentRepository) SumSucceededWithTx(ctx context.Context, tx pgx.Tx, orderID string) (float64, error) {
	var total float64
	err := orPool(r.db, tx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)::float8 FROM payments WHERE order_id = $1 AND status = 'succeeded'`,
		orderID,
	).Scan(&total)
	return total, mapError("sum payments", err)
}

func (r *PaymentRepository) List(ctx context.Context, storeID, orderID string) ([]commerce.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE store_id = $1`
	args := []any{storeID}
	if orderID != "" {
		query += ` AND order_id = $2`
		args = append(args, orderID)
	}
	query += ` ORDER BY number DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list payments", err)
	}
	payments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[commerce.Payment])
	return payments, mapError("list payments", err)
}
