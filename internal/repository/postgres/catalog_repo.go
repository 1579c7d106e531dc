// internal/repository/postgres/catalog_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"storefront-crm/internal/domain/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `
	p.id, p.store_id, p.name, p.sku, p.description, p.price, p.currency, p.status,
	COALESCE(ARRAY(SELECT pc.category_id FROM product_categories pc WHERE pc.product_id = p.id ORDER BY pc.category_id), '{}'),
	p.created_at, p.updated_at, p.deleted_at`

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	if err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.SKU, &p.Description, &p.Price, &p.Currency,
		&p.Status, &p.CategoryIDs, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (id, store_id, name, sku, description, price, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if p.ID == "" {
		p.ID = NewID()
	}
	err := r.db.QueryRow(ctx, query,
		p.ID, p.StoreID, p.Name, p.SKU, p.Description, p.Price, p.Currency, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return mapError("create product", err)
}

func (r *ProductRepository) FindByID(ctx context.Context, storeID, id string) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p
		WHERE p.store_id = $1 AND p.id = $2 AND p.deleted_at IS NULL`
	p, err := scanProduct(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, mapError("find product", err)
	}
	return p, nil
}

// List returns live products with optional status, category and name/SKU search filters.
func (r *ProductRepository) List(ctx context.Context, storeID string, f catalog.ProductListFilters) ([]catalog.Product, error) {
	where := []string{"p.store_id = $1", "p.deleted_at IS NULL"}
	args := []any{storeID}
	argPos := 2

	if f.Status != "" {
		where = append(where, fmt.Sprintf("p.status = $%d", argPos))
		args = append(args, f.Status)
		argPos++
	}
	if f.CategoryID != "" {
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = $%d)", argPos))
		args = append(args, f.CategoryID)
		argPos++
	}
	if f.Search != "" {
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+f.Search+"%")
	}

	query := `SELECT ` + productColumns + ` FROM products p WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list products", err)
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		products = append(products, *p)
	}
	return products, mapError("list products", rows.Err())
}

// SoftDelete hides the product and frees its SKU for reuse.
func (r *ProductRepository) SoftDelete(ctx context.Context, storeID, id string) error {
	query := `
		UPDATE products SET deleted_at = now(), updated_at = now(), sku = sku || '--' || id
		WHERE store_id = $1 AND id = $2 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, storeID, id)
	return mustAffect("delete product", tag, err)
}

func (r *ProductRepository) AssignCategory(ctx context.Context, productID, categoryID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`,
		productID, categoryID)
	return mapError("assign category", err)
}

type CategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	query := `
		INSERT INTO categories (id, store_id, name, slug) VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if c.ID == "" {
		c.ID = NewID()
	}
	err := r.db.QueryRow(ctx, query, c.ID, c.StoreID, c.Name, c.Slug).Scan(&c.CreatedAt)
	return mapError("create category", err)
}

func (r *CategoryRepository) FindByID(ctx context.Context, storeID, id string) (*catalog.Category, error) {
	var c catalog.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, store_id, name, slug, created_at FROM categories WHERE store_id = $1 AND id = $2`,
		storeID, id,
	).Scan(&c.ID, &c.StoreID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		return nil, mapError("find category", err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context, storeID string) ([]catalog.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, store_id, name, slug, created_at FROM categories WHERE store_id = $1 ORDER BY name`,
		storeID)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	cats, err := pgx.CollectRows(rows, pgx.RowToStructByPos[catalog.Category])
	return cats, mapError("list categories", err)
}
