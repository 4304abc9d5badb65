package jobworks

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

func TestTotalsAndValidation(t *testing.T) {
	conn, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{Audit: audit.NewRecorder(conn.Audit())})
	ctx := context.Background()
	cust := storetest.Customer(t, tda, "Stark")

	j, err := svc.Create(ctx, tda, Input{CustomerID: cust.ID, Reference: "JW-1", Quantity: 3, UnitPriceCents: 25_50})
	require.NoError(t, err)
	require.Equal(t, int64(76_50), j.TotalCents)
	require.Equal(t, repository.JobPending, j.Status)

	j, err = svc.Update(ctx, tda, j.ID, Update{Quantity: common.Ptr[int64](10)})
	require.NoError(t, err)
	require.Equal(t, int64(255_00), j.TotalCents)

	_, err = svc.Update(ctx, tda, j.ID, Update{Quantity: common.Ptr[int64](0)})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, Input{CustomerID: cust.ID, Reference: "JW-2", Quantity: -1})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, Input{CustomerID: cust.ID, Reference: "JW-3", Quantity: 2, UnitPriceCents: math.MaxInt64})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, Input{CustomerID: cust.ID, Quantity: 1})
	require.True(t, repository.IsInvalidInput(err))
}

func TestTransitions(t *testing.T) {
	_, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{})
	ctx := context.Background()
	cust := storetest.Customer(t, tda, "Stark")

	j, err := svc.Create(ctx, tda, Input{CustomerID: cust.ID, Reference: "JW-1", Quantity: 1, UnitPriceCents: 100})
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, tda, j.ID, repository.JobCompleted)
	require.True(t, repository.IsInvalidTransition(err))

	j, err = svc.SetStatus(ctx, tda, j.ID, repository.JobInProgress)
	require.NoError(t, err)
	j, err = svc.SetStatus(ctx, tda, j.ID, repository.JobCompleted)
	require.NoError(t, err)
	require.NotNil(t, j.CompletedAt)

	_, err = svc.SetStatus(ctx, tda, j.ID, repository.JobCancelled)
	require.True(t, repository.IsInvalidTransition(err))
	_, err = svc.Update(ctx, tda, j.ID, Update{Reference: common.Ptr("JW-9")})
	require.True(t, repository.IsInvalidTransition(err))

	k, err := svc.Create(ctx, tda, Input{CustomerID: cust.ID, Reference: "JW-2", Quantity: 1})
	require.NoError(t, err)
	k, err = svc.SetStatus(ctx, tda, k.ID, repository.JobCancelled)
	require.NoError(t, err)
	require.Nil(t, k.CompletedAt)
}
