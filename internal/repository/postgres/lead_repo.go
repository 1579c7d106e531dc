// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"time"

	"storefront-crm/internal/domain/crm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `
	l.id, l.store_id, l.contact_id, l.source, l.status, l.priority, l.score, l.assigned_to,
	l.estimated_value, l.notes, l.last_contacted_at, l.converted_to_deal_id, l.converted_at,
	l.created_at, l.updated_at, l.deleted_at`

// Leads of deleted contacts stay hidden even if their own row is live.
const liveLeads = `
	FROM leads l
	JOIN contacts c ON c.id = l.contact_id AND c.deleted_at IS NULL
	WHERE l.deleted_at IS NULL`

func scanLead(row pgx.Row) (*crm.Lead, error) {
	var l crm.Lead
	if err := row.Scan(&l.ID, &l.StoreID, &l.ContactID, &l.Source, &l.Status, &l.Priority,
		&l.Score, &l.AssignedTo, &l.EstimatedValue, &l.Notes, &l.LastContactedAt,
		&l.ConvertedToDealID, &l.ConvertedAt, &l.CreatedAt, &l.UpdatedAt, &l.DeletedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, l *crm.Lead) error {
	query := `
		INSERT INTO leads (
			id, store_id, contact_id, source, status, priority, score, assigned_to,
			estimated_value, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	if l.ID == "" {
		l.ID = NewID()
	}
	err := r.db.QueryRow(ctx, query,
		l.ID, l.StoreID, l.ContactID, l.Source, l.Status, l.Priority, l.Score, l.AssignedTo,
		l.EstimatedValue, l.Notes,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	return mapError("create lead", err)
}

func (r *LeadRepository) FindByID(ctx context.Context, storeID, id string) (*crm.Lead, error) {
	query := `SELECT ` + leadColumns + liveLeads + ` AND l.store_id = $1 AND l.id = $2`
	l, err := scanLead(r.db.QueryRow(ctx, query, storeID, id))
	if err != nil {
		return nil, mapError("find lead", err)
	}
	return l, nil
}

func (r *LeadRepository) ListByStore(ctx context.Context, storeID string) ([]crm.Lead, error) {
	return r.list(ctx, "list leads",
		`SELECT `+leadColumns+liveLeads+` AND l.store_id = $1 ORDER BY l.created_at DESC, l.id DESC`, storeID)
}

func (r *LeadRepository) ListByContact(ctx context.Context, storeID, contactID string) ([]crm.Lead, error) {
	return r.list(ctx, "list contact leads",
		`SELECT `+leadColumns+liveLeads+` AND l.store_id = $1 AND l.contact_id = $2 ORDER BY l.created_at`,
		storeID, contactID)
}

func (r *LeadRepository) list(ctx context.Context, op, query string, args ...any) ([]crm.Lead, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var leads []crm.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		leads = append(leads, *l)
	}
	return leads, mapError(op, rows.Err())
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, storeID, id string, status crm.LeadStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2
		 WHERE store_id = $3 AND id = $4 AND deleted_at IS NULL`,
		status, time.Now(), storeID, id)
	return mustAffect("update lead status", tag, err)
}

func (r *LeadRepository) UpdateScore(ctx context.Context, storeID, id string, score int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE leads SET score = $1, updated_at = $2
		 WHERE store_id = $3 AND id = $4 AND deleted_at IS NULL`,
		score, time.Now(), storeID, id)
	return mustAffect("update lead score", tag, err)
}

// MarkContactedWithTx stamps last_contacted_at and moves a new lead to contacted.
func (r *LeadRepository) MarkContactedWithTx(ctx context.Context, tx pgx.Tx, storeID, id string, at time.Time) error {
	tag, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE leads
		 SET last_contacted_at = $1, updated_at = $1,
		     status = CASE WHEN status = 'new' THEN 'contacted' ELSE status END
		 WHERE store_id = $2 AND id = $3 AND deleted_at IS NULL`,
		at, storeID, id)
	return mustAffect("mark lead contacted", tag, err)
}

// MarkConvertedWithTx links the lead to its deal. Only qualified leads convert.
func (r *LeadRepository) MarkConvertedWithTx(ctx context.Context, tx pgx.Tx, storeID, id, dealID string, at time.Time) error {
	tag, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE leads
		 SET status = 'converted', converted_to_deal_id = $1, converted_at = $2, updated_at = $2
		 WHERE store_id = $3 AND id = $4 AND status = 'qualified' AND deleted_at IS NULL`,
		dealID, at, storeID, id)
	return mustAffect("convert lead", tag, err)
}

func (r *LeadRepository) SoftDeleteByContactWithTx(ctx context.Context, tx pgx.Tx, storeID, contactID string) error {
	_, err := orPool(r.db, tx).Exec(ctx,
		`UPDATE leads SET deleted_at = now(), updated_at = now()
		 WHERE store_id = $1 AND contact_id = $2 AND deleted_at IS NULL`,
		storeID, contactID)
	return mapError("delete contact leads", err)
}
