package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "storefront-crm/internal/pkg/errors"
)

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError("noop", nil))
}

func TestMapError_NoRows(t *testing.T) {
	err := mapError("find store", pgx.ErrNoRows)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "find store")
}

func TestMapError_KnownUniqueConstraint(t *testing.T) {
	err := mapError("create store", &pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "stores_subdomain_key",
		TableName:      "stores",
	})

	assert.ErrorIs(t, err, xerrors.ErrConflict)
	var conflict *xerrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "store", conflict.Resource)
	assert.Equal(t, "subdomain", conflict.Field)
	assert.Equal(t, "subdomain is already taken", conflict.Message)
}

func TestMapError_UnknownUniqueConstraint(t *testing.T) {
	err := mapError("insert", &pgconn.PgError{
		Code:           pgUniqueViolation,
		ConstraintName: "widgets_name_key",
		TableName:      "widgets",
	})
	var conflict *xerrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "widgets", conflict.Resource)
	assert.Equal(t, "widgets_name_key", conflict.Field)
	assert.Equal(t, "insert: record already exists", err.Error())
}

func TestMapError_ConflictMapIsNotShared(t *testing.T) {
	first := mapError("a", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "merchants_email_key"})
	var c *xerrors.ConflictError
	require.ErrorAs(t, first, &c)
	c.Message = "mutated"

	again := mapError("b", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "merchants_email_key"})
	require.ErrorAs(t, again, &c)
	assert.Equal(t, "an account with this email already exists", c.Message)
}

func TestMapError_ForeignKeyAndCheck(t *testing.T) {
	fk := mapError("create lead", &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "leads_contact_id_fkey"})
	assert.ErrorIs(t, fk, xerrors.ErrInvalidReference)

	check := mapError("update lead", &pgconn.PgError{Code: pgCheckViolation, ConstraintName: "leads_converted_has_deal"})
	assert.ErrorIs(t, check, xerrors.ErrInvalidInput)
	assert.Contains(t, check.Error(), "leads_converted_has_deal")
}

func TestMapError_PassesThroughOtherErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := mapError("ping", cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, xerrors.ErrNotFound))
}

func TestMustAffect(t *testing.T) {
	assert.NoError(t, mustAffect("update", pgconn.NewCommandTag("UPDATE 1"), nil))
	assert.ErrorIs(t, mustAffect("update", pgconn.NewCommandTag("UPDATE 0"), nil), xerrors.ErrNotFound)

	err := mustAffect("update", pgconn.CommandTag{}, fmt.Errorf("wrapped: %w", pgx.ErrNoRows))
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestTagsArg(t *testing.T) {
	assert.Equal(t, []string{}, tagsArg(nil))
	assert.Equal(t, []string{"vip"}, tagsArg([]string{"vip"}))
}
