package pg

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

func TestWhereBuildsPositionalPlaceholders(t *testing.T) {
	w := tenantWhere("t1")
	w.eq("status", "open")
	w.eq("owner_id", "")
	w.search("50%_off", "title", "description")

	require.Equal(t, " WHERE tenant_id = $1 AND status = $2 AND (title ILIKE $3 OR description ILIKE $3)", w.sql())
	require.Equal(t, []any{"t1", "open", `%50\%\_off%`}, w.args)
}

func TestMapErr(t *testing.T) {
	require.ErrorIs(t, mapErr(pgx.ErrNoRows), repository.ErrNotFound)
	require.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505", ConstraintName: "users_tenant_email_uq"}), repository.ErrConflict)
	require.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23503"}), repository.ErrInvalidInput)

	other := errors.New("boom")
	require.Equal(t, other, mapErr(other))
	require.NoError(t, mapErr(nil))
}

func TestValidID(t *testing.T) {
	require.True(t, validID("0b6f3f9e-2c1e-4d8e-9a57-3c2a5b1d7e10"))
	require.False(t, validID("0b6f3f9e-2c1e-4d8e-9a57-3c2a5b1d7e10", "nope"))
}

func TestSpecsSortOnCreatedAt(t *testing.T) {
	for _, s := range []listSpec{userSpec, auditSpec, customerSpec, dealSpec, opportunitySpec, contractSpec, ticketSpec, jobWorkSpec} {
		require.Contains(t, s.sortCols, "created_at", s.table)
	}
}
