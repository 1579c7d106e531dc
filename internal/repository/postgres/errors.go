// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	xerrors "storefront-crm/internal/pkg/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// conflicts translates unique constraint names into user-facing conflicts.
var conflicts = map[string]xerrors.ConflictError{
	"merchants_email_key":             {Resource: "merchant", Field: "email", Message: "an account with this email already exists"},
	"merchants_phone_key":             {Resource: "merchant", Field: "phone", Message: "an account with this phone number already exists"},
	"subscriptions_merchant_id_key":   {Resource: "subscription", Field: "merchant_id", Message: "merchant already has a subscription"},
	"stores_subdomain_key":            {Resource: "store", Field: "subdomain", Message: "subdomain is already taken"},
	"stores_custom_domain_key":        {Resource: "store", Field: "custom_domain", Message: "custom domain is already in use"},
	"team_members_store_merchant_key": {Resource: "team_member", Field: "merchant_id", Message: "merchant is already a member of this store"},
	"team_members_invite_token_key":   {Resource: "team_member", Field: "invite_token", Message: "invite token collision, please retry"},
	"users_store_email_key":           {Resource: "user", Field: "email", Message: "a customer with this email already exists in this store"},
	"products_store_sku_key":          {Resource: "product", Field: "sku", Message: "a product with this SKU already exists in this store"},
	"categories_store_slug_key":       {Resource: "category", Field: "slug", Message: "a category with this name already exists in this store"},
	"product_categories_pkey":         {Resource: "product", Field: "category_id", Message: "product is already in this category"},
	"orders_store_number_key":         {Resource: "order", Field: "number", Message: "order number already used in this store"},
	"payments_store_number_key":       {Resource: "payment", Field: "number", Message: "payment number already used in this store"},
	"contacts_store_email_live_key":   {Resource: "contact", Field: "email", Message: "a contact with this email already exists in this store"},
	"leads_store_contact_live_key":    {Resource: "lead", Field: "contact_id", Message: "this contact already has an open lead"},
}

// mapError normalises driver errors into the application's sentinels and
// prefixes op for context. nil stays nil.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.Wrap(xerrors.ErrNotFound, op)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return xerrors.Wrap(err, op)
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		if c, ok := conflicts[pgErr.ConstraintName]; ok {
			return xerrors.Wrap(&c, op)
		}
		c := xerrors.NewConflict(pgErr.TableName, pgErr.ConstraintName)
		c.Message = "record already exists"
		return xerrors.Wrap(c, op)
	case pgForeignKeyViolation:
		return xerrors.Wrap(xerrors.Wrap(xerrors.ErrInvalidReference, pgErr.ConstraintName), op)
	case pgCheckViolation:
		return xerrors.Wrap(xerrors.Wrap(xerrors.ErrInvalidInput, pgErr.ConstraintName), op)
	}
	return xerrors.Wrap(err, op)
}

// mustAffect turns a zero-row update into ErrNotFound.
func mustAffect(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapError(op, err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.Wrap(xerrors.ErrNotFound, op)
	}
	return nil
}
