// internal/repository/postgres/contact_repo.go
package postgres

import (
	"context"
	"time"

	"storefront-crm/internal/domain/crm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type ContactRepository struct {
	db *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{db: db}
}

const contactColumns = `
	id, store_id, name, email, phone, company, job_title, type, tags,
	created_at, updated_at, deleted_at`

func scanContact(row pgx.Row) (*crm.Contact, error) {
	var c crm.Contact
	var tags []string
	if err := row.Scan(&c.ID, &c.StoreID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.JobTitle,
		&c.Type, &tags, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	c.Tags = pq.StringArray(tags)
	return &c, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *crm.Contact) error {
	query := `
		INSERT INTO contacts (id, store_id, name, email, phone, company, job_title, type, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	if c.ID == "" {
		c.ID = NewID()
	}
	err := r.db.QueryRow(ctx, query,
		c.ID, c.StoreID, c.Name, c.Email, c.Phone, c.Company, c.JobTitle, c.Type, tagsArg(c.Tags),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError("create contact", err)
}

func (r *ContactRepository) FindByID(ctx context.Context, storeID, id string) (*crm.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		WHERE store_id = $1 AND id = $2 AND deleted_at IS NULL`
	c, err := scanContact(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, mapError("find contact", err)
	}
	return c, nil
}

func (r *ContactRepository) ListByStore(ctx context.Context, storeID string) ([]crm.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts
		WHERE store_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, mapError("list contacts", err)
	}
	defer rows.Close()

	var contacts []crm.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, mapError("scan contact", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, mapError("list contacts", rows.Err())
}

func (r *ContactRepository) Update(ctx context.Context, c *crm.Contact) error {
	query := `
		UPDATE contacts
		SET name = $1, email = $2, phone = $3, company = $4, job_title = $5, type = $6,
		    tags = $7, updated_at = $8
		WHERE store_id = $9 AND id = $10 AND deleted_at IS NULL
	`
	c.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query,
		c.Name, c.Email, c.Phone, c.Company, c.JobTitle, c.Type, tagsArg(c.Tags), c.UpdatedAt,
		c.StoreID, c.ID,
	)
	return mustAffect("update contact", tag, err)
}

// SoftDeleteWithTx hides the contact. Leads and deals are hidden by the
// caller in the same transaction.
func (r *ContactRepository) SoftDeleteWithTx(ctx context.Context, tx pgx.Tx, storeID, id string) error {
	tag, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE contacts SET deleted_at = now(), updated_at = now()
		 WHERE store_id = $1 AND id = $2 AND deleted_at IS NULL`,
		storeID, id)
	return mustAffect("delete contact", tag, err)
}

// tagsArg sends an empty array rather than NULL for the NOT NULL column.
func tagsArg(tags pq.StringArray) []string {
	if tags == nil {
		return []string{}
	}
	return []string(tags)
}
