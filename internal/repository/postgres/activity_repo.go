// internal/repository/postgres/activity_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-crm/internal/domain/crm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository is insert-only; a trigger rejects updates.
type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = `
	a.id, a.store_id, a.contact_id, a.lead_id, a.deal_id, a.type, a.title, a.description,
	a.created_at, a.created_by, a.metadata`

const liveActivities = `
	FROM activities a
	JOIN contacts c ON c.id = a.contact_id AND c.deleted_at IS NULL
	WHERE a.store_id = $1`

func scanActivity(row pgx.Row) (*crm.Activity, error) {
	var a crm.Activity
	var metadataJSON []byte
	if err := row.Scan(&a.ID, &a.StoreID, &a.ContactID, &a.LeadID, &a.DealID, &a.Type, &a.Title,
		&a.Description, &a.CreatedAt, &a.CreatedBy, &metadataJSON); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &a.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &a, nil
}

// CreateWithTx appends an activity. A nil tx runs on the pool.
func (r *ActivityRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, a *crm.Activity) error {
	query := `
		INSERT INTO activities (
			id, store_id, contact_id, lead_id, deal_id, type, title, description, created_by, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`
	var metadataJSON []byte
	if a.Metadata != nil {
		var err error
		if metadataJSON, err = json.Marshal(a.Metadata); err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}
	if a.ID == "" {
		a.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query,
		a.ID, a.StoreID, a.ContactID, a.LeadID, a.DealID, a.Type, a.Title, a.Description,
		a.CreatedBy, metadataJSON,
	).Scan(&a.CreatedAt)
	return mapError("create activity", err)
}

func (r *ActivityRepository) ListByStore(ctx context.Context, storeID string) ([]crm.Activity, error) {
	return r.list(ctx, "list activities",
		`SELECT `+activityColumns+liveActivities+` ORDER BY a.created_at DESC, a.id DESC`, storeID)
}

func (r *ActivityRepository) ListByContact(ctx context.Context, storeID, contactID string) ([]crm.Activity, error) {
	return r.list(ctx, "list contact activities",
		`SELECT `+activityColumns+liveActivities+` AND a.contact_id = $2 ORDER BY a.created_at DESC, a.id DESC`,
		storeID, contactID)
}

func (r *ActivityRepository) list(ctx context.Context, op, query string, args ...any) ([]crm.Activity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	var acts []crm.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		acts = append(acts, *a)
	}
	return acts, mapError(op, rows.Err())
}
