// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"

	"storefront-crm/internal/domain/tenant"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository stores shoppers. Emails are unique per store, so the same
// address can shop at many stores.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *tenant.User) error {
	query := `
		INSERT INTO users (id, store_id, email, name, phone)
		VALUES ($1, $2, lower($3), $4, $5)
		RETURNING email, created_at, updated_at
	`
	if u.ID == "" {
		u.ID = NewID()
	}
	err := r.db.QueryRow(ctx, query, u.ID, u.StoreID, u.Email, u.Name, u.Phone).
		Scan(&u.Email, &u.CreatedAt, &u.UpdatedAt)
	return mapError("create user", err)
}

func (r *UserRepository) FindByID(ctx context.Context, storeID, id string) (*tenant.User, error) {
	query := `
		SELECT id, store_id, email, name, phone, created_at, updated_at
		FROM users WHERE store_id = $1 AND id = $2
	`
	var u tenant.User
	err := r.db.QueryRow(ctx, query, storeID, id).Scan(
		&u.ID, &u.StoreID, &u.Email, &u.Name, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, mapError("find user", err)
	}
	return &u, nil
}

func (r *UserRepository) ListByStore(ctx context.Context, storeID string) ([]tenant.User, error) {
	query := `
		SELECT id, store_id, email, name, phone, created_at, updated_at
		FROM users WHERE store_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, mapError("list users", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tenant.User, error) {
		var u tenant.User
		err := row.Scan(&u.ID, &u.StoreID, &u.Email, &u.Name, &u.Phone, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	})
	return users, mapError("list users", err)
}
