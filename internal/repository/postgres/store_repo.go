// internal/repository/postgres/store_repo.go
package postgres

import (
	"context"
	"time"

	"storefront-crm/internal/domain/tenant"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreRepository struct {
	db *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{db: db}
}

const storeColumns = `id, merchant_id, name, subdomain, custom_domain, created_at, updated_at, deleted_at`

func scanStore(row pgx.Row) (*tenant.Store, error) {
	var s tenant.Store
	if err := row.Scan(&s.ID, &s.MerchantID, &s.Name, &s.Subdomain, &s.CustomDomain,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *tenant.Store) error {
	query := `
		INSERT INTO stores (id, merchant_id, name, subdomain, custom_domain)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	if s.ID == "" {
		s.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query, s.ID, s.MerchantID, s.Name, s.Subdomain, s.CustomDomain).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError("create store", err)
}

// FindByID returns a live store.
func (r *StoreRepository) FindByID(ctx context.Context, id string) (*tenant.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1 AND deleted_at IS NULL`
	s, err := scanStore(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("find store", err)
	}
	return s, nil
}

// ListForMerchant returns live stores where the merchant holds an accepted membership.
func (r *StoreRepository) ListForMerchant(ctx context.Context, merchantID string) ([]tenant.Store, error) {
	query := `
		SELECT s.id, s.merchant_id, s.name, s.subdomain, s.custom_domain, s.created_at, s.updated_at, s.deleted_at
		FROM stores s
		JOIN team_members tm ON tm.store_id = s.id
		WHERE tm.merchant_id = $1 AND tm.status = 'accepted' AND s.deleted_at IS NULL
		ORDER BY s.created_at
	`
	rows, err := r.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, mapError("list stores", err)
	}
	defer rows.Close()

	var stores []tenant.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, mapError("scan store", err)
		}
		stores = append(stores, *s)
	}
	return stores, mapError("list stores", rows.Err())
}

// ListAllIDs returns every live store id, for operator backfills.
func (r *StoreRepository) ListAllIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM stores WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, mapError("list store ids", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, mapError("list store ids", err)
}

func (r *StoreRepository) Update(ctx context.Context, s *tenant.Store) error {
	query := `
		UPDATE stores SET name = $1, subdomain = $2, custom_domain = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	s.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query, s.Name, s.Subdomain, s.CustomDomain, s.UpdatedAt, s.ID)
	return mustAffect("update store", tag, err)
}

// SoftDelete hides the store. The subdomain is released by suffixing it with
// the store id so a new store can claim it.
func (r *StoreRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE stores
		SET deleted_at = now(), updated_at = now(),
		    subdomain = subdomain || '--' || id, custom_domain = NULL
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id)
	return mustAffect("delete store", tag, err)
}

type TeamMemberRepository struct {
	db *pgxpool.Pool
}

func NewTeamMemberRepository(db *pgxpool.Pool) *TeamMemberRepository {
	return &TeamMemberRepository{db: db}
}

const memberColumns = `id, store_id, merchant_id, role, status, invite_token, invited_at, accepted_at`

func scanMember(row pgx.Row) (*tenant.TeamMember, error) {
	var m tenant.TeamMember
	if err := row.Scan(&m.ID, &m.StoreID, &m.MerchantID, &m.Role, &m.Status,
		&m.InviteToken, &m.InvitedAt, &m.AcceptedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *TeamMemberRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, m *tenant.TeamMember) error {
	query := `
		INSERT INTO team_members (id, store_id, merchant_id, role, status, invite_token, accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING invited_at
	`
	if m.ID == "" {
		m.ID = NewID()
	}
	err := orPool(r.db, tx).QueryRow(ctx, query,
		m.ID, m.StoreID, m.MerchantID, m.Role, m.Status, m.InviteToken, m.AcceptedAt,
	).Scan(&m.InvitedAt)
	return mapError("create team member", err)
}

func (r *TeamMemberRepository) FindByStoreAndMerchant(ctx context.Context, storeID, merchantID string) (*tenant.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE store_id = $1 AND merchant_id = $2`
	m, err := scanMember(r.db.QueryRow(ctx, query, storeID, merchantID))
	if err != nil {
		return nil, mapError("find team member", err)
	}
	return m, nil
}

func (r *TeamMemberRepository) FindByInviteToken(ctx context.Context, token string) (*tenant.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE invite_token = $1`
	m, err := scanMember(r.db.QueryRow(ctx, query, token))
	if err != nil {
		return nil, mapError("find invite", err)
	}
	return m, nil
}

// Accept marks a pending invite accepted and burns its token.
func (r *TeamMemberRepository) Accept(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE team_members SET status = 'accepted', accepted_at = $1, invite_token = NULL
		WHERE id = $2 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, at, id)
	return mustAffect("accept invite", tag, err)
}

func (r *TeamMemberRepository) Delete(ctx context.Context, storeID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE store_id = $1 AND id = $2`, storeID, id)
	return mustAffect("remove team member", tag, err)
}

func (r *TeamMemberRepository) ListByStore(ctx context.Context, storeID string) ([]tenant.TeamMember, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE store_id = $1 ORDER BY invited_at`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, mapError("list team members", err)
	}
	defer rows.Close()

	var members []tenant.TeamMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, mapError("scan team member", err)
		}
		members = append(members, *m)
	}
	return members, mapError("list team members", rows.Err())
}
