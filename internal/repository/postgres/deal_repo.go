// internal/repository/postgres/deal_repo.go
package postgres

import (
	"context"
	"time"

	"storefront-crm/internal/domain/crm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type DealRepository struct {
	db *pgxpool.Pool
}

func NewDealRepository(db *pgxpool.Pool) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = `
	d.id, d.store_id, d.contact_id, d.lead_id, d.name, d.value, d.stage, d.probability,
	d.expected_close_date, d.assigned_to, d.notes, d.tags, d.closed_at, d.lost_reason,
	d.created_at, d.updated_at, d.deleted_at`

const liveDeals = `
	FROM deals d
	JOIN contacts c ON c.id = d.contact_id AND c.deleted_at IS NULL
	WHERE d.deleted_at IS NULL`

func scanDeal(row pgx.Row) (*crm.Deal, error) {
	var d crm.Deal
	var tags []string
	if err := row.Scan(&d.ID, &d.StoreID, &d.ContactID, &d.LeadID, &d.Name, &d.Value, &d.Stage,
		&d.Probability, &d.ExpectedCloseDate, &d.AssignedTo, &d.Notes, &tags, &d.ClosedAt,
		&d.LostReason, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt); err != nil {
		return nil, err
	}
	d.Tags = pq.StringArray(tags)
	return &d, nil
}

// CreateWithTx inserts a deal. A nil tx runs on the pool.
func (r *DealRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, d *crm.Deal) error {
	query := `
		INSERT INTO deals (
			id, store_id, contact_id, lead_id, name, value, stage, probability,
			expected_close_date, assigned_to, notes, tags
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`
	if d.ID == "" {
		d.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query,
		d.ID, d.StoreID, d.ContactID, d.LeadID, d.Name, d.Value, d.Stage, d.Probability,
		d.ExpectedCloseDate, d.AssignedTo, d.Notes, tagsArg(d.Tags),
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	return mapError("create deal", err)
}

func (r *DealRepository) FindByID(ctx context.Context, storeID, id string) (*crm.Deal, error) {
	query := `SELECT ` + dealColumns + liveDeals + ` AND d.store_id = $1 AND d.id = $2`
	d, err := scanDeal(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, mapError("find deal", err)
	}
	return d, nil
}

func (r *DealRepository) ListByStore(ctx context.Context, storeID string) ([]crm.Deal, error) {
	return r.list(ctx, "list deals",
		`SELECT `+dealColumns+liveDeals+` AND d.store_id = $1 ORDER BY d.created_at DESC, d.id DESC`, storeID)
}

func (r *DealRepository) ListByContact(ctx context.Context, storeID, contactID string) ([]crm.Deal, error) {
	return r.list(ctx, "list contact deals",
		`SELECT `+dealColumns+liveDeals+` AND d.store_id = $1 AND d.contact_id = $2 ORDER BY d.created_at`,
		storeID, contactID)
}

func (r *DealRepository) list(ctx context.Context, op, query string, args ...any) ([]crm.Deal, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var deals []crm.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		deals = append(deals, *d)
	}
	return deals, mapError(op, rows.Err())
}

// UpdateStageWithTx persists a stage move together with its probability and
// closing fields. The WHERE clause refuses to touch closed deals.
func (r *DealRepository) UpdateStageWithTx(ctx context.Context, tx pgx.Tx, d *crm.Deal) error {
	d.UpdatedAt = time.Now()
	tag, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE deals
		 SET stage = $1, probability = $2, closed_at = $3, lost_reason = $4, updated_at = $5
		 WHERE store_id = $6 AND id = $7 AND deleted_at IS NULL AND stage NOT IN ('won', 'lost')`,
		d.Stage, d.Probability, d.ClosedAt, d.LostReason, d.UpdatedAt, d.StoreID, d.ID)
	return mustAffect("move deal stage", tag, err)
}

func (r *DealRepository) SoftDeleteByContactWithTx(ctx context.Context, tx pgx.Tx, storeID, contactID string) error {
	_, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE deals SET deleted_at = now(), updated_at = now()
		 WHERE store_id = $1 AND contact_id = $2 AND deleted_at IS NULL`,
		storeID, contactID)
	return mapError("delete contact deals", err)
}
