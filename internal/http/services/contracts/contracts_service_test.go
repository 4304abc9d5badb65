package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

var jan1 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc     Service
	tda     *store.TenantDataAccess
	cust    repository.Customer
	agent   context.Context
	manager context.Context
	mgrID   string
}

func setup(t *testing.T, now time.Time) fixture {
	t.Helper()
	conn, tda := storetest.NewTenant(t, "acme")
	rb := rbac.NewService(rbac.Deps{Catalog: conn.RBAC()})
	require.NoError(t, rb.SeedTenant(context.Background(), tda))

	agent := storetest.User(t, tda, "agent@acme.io", true, rbac.RoleAgent)
	mgr := storetest.User(t, tda, "boss@acme.io", true, rbac.RoleManager)
	return fixture{
		svc: NewService(Deps{
			Permissions: rb,
			Audit:       audit.NewRecorder(conn.Audit()),
			Clock:       func() time.Time { return now },
		}),
		tda:     tda,
		cust:    storetest.Customer(t, tda, "Hooli"),
		agent:   claims.WithPrincipal(context.Background(), claims.Principal{UserID: agent.ID, TenantID: tda.ID()}),
		manager: claims.WithPrincipal(context.Background(), claims.Principal{UserID: mgr.ID, TenantID: tda.ID()}),
		mgrID:   mgr.ID,
	}
}

func (f fixture) draft(t *testing.T, start, end time.Time, renew bool) *repository.Contract {
	t.Helper()
	c, err := f.svc.Create(f.manager, f.tda, Input{
		CustomerID: f.cust.ID, Title: "Support", ValueCents: 12_000_00,
		StartsAt: start, EndsAt: end, AutoRenew: renew,
	})
	require.NoError(t, err)
	return c
}

func (f fixture) activate(t *testing.T, id string) {
	t.Helper()
	_, err := f.svc.Submit(f.manager, f.tda, id)
	require.NoError(t, err)
	_, err = f.svc.Approve(f.manager, f.tda, id)
	require.NoError(t, err)
}

func TestCreateValidatesDates(t *testing.T) {
	f := setup(t, jan1)
	_, err := f.svc.Create(f.manager, f.tda, Input{CustomerID: f.cust.ID, Title: "x", StartsAt: jan1, EndsAt: jan1})
	require.True(t, repository.IsInvalidInput(err))
	_, err = f.svc.Create(f.manager, f.tda, Input{CustomerID: f.cust.ID, Title: "x", StartsAt: jan1})
	require.True(t, repository.IsInvalidInput(err))
	_, err = f.svc.Create(f.manager, f.tda, Input{CustomerID: f.cust.ID, Title: "x", StartsAt: jan1, EndsAt: jan1.Add(time.Hour), DealID: "ghost"})
	require.True(t, repository.IsInvalidInput(err))
}

func TestApprovalFlow(t *testing.T) {
	f := setup(t, jan1)
	c := f.draft(t, jan1, jan1.AddDate(1, 0, 0), false)
	require.Equal(t, repository.ContractDraft, c.Status)

	_, err := f.svc.Approve(f.manager, f.tda, c.ID)
	require.True(t, repository.IsInvalidTransition(err), "draft cannot be approved")

	_, err = f.svc.Submit(f.agent, f.tda, c.ID)
	require.NoError(t, err)
	_, err = f.svc.Update(f.manager, f.tda, c.ID, Update{Title: common.Ptr("edit")})
	require.True(t, repository.IsInvalidTransition(err), "only drafts are editable")

	_, err = f.svc.Approve(f.agent, f.tda, c.ID)
	require.True(t, repository.IsForbidden(err))

	back, err := f.svc.Reject(f.manager, f.tda, c.ID)
	require.NoError(t, err)
	require.Equal(t, repository.ContractDraft, back.Status)

	f.activate(t, c.ID)
	got, err := f.svc.Get(f.manager, f.tda, c.ID)
	require.NoError(t, err)
	require.Equal(t, repository.ContractActive, got.Status)
	require.Equal(t, f.mgrID, got.ApprovedBy)

	require.True(t, repository.IsInvalidTransition(f.svc.Delete(f.manager, f.tda, c.ID)))

	term, err := f.svc.Terminate(f.manager, f.tda, c.ID)
	require.NoError(t, err)
	require.Equal(t, repository.ContractTerminated, term.Status)
	_, err = f.svc.Terminate(f.manager, f.tda, c.ID)
	require.True(t, repository.IsInvalidTransition(err))
}

func TestExpireDueRenews(t *testing.T) {
	f := setup(t, jan1)
	ctx := f.manager

	plain := f.draft(t, jan1, jan1.AddDate(0, 1, 0), false)
	auto := f.draft(t, jan1, jan1.AddDate(0, 0, 10), true)
	later := f.draft(t, jan1, jan1.AddDate(1, 0, 0), false)
	for _, c := range []*repository.Contract{plain, auto, later} {
		f.activate(t, c.ID)
	}

	now := jan1.AddDate(0, 2, 0)
	res, err := f.svc.ExpireDue(ctx, f.tda, now)
	require.NoError(t, err)
	require.Equal(t, ExpireResult{Expired: 2, Renewed: 1}, res)

	got, err := f.svc.Get(ctx, f.tda, plain.ID)
	require.NoError(t, err)
	require.Equal(t, repository.ContractExpired, got.Status)

	active, err := f.tda.Contracts().ListByStatus(ctx, f.tda.ID(), repository.ContractActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	var renewal repository.Contract
	for _, c := range active {
		if c.RenewedFromID == auto.ID {
			renewal = c
		}
	}
	require.NotEmpty(t, renewal.ID)
	require.True(t, renewal.StartsAt.Equal(auto.EndsAt))
	require.Equal(t, 10*24*time.Hour, renewal.EndsAt.Sub(renewal.StartsAt))

	again, err := f.svc.ExpireDue(ctx, f.tda, now)
	require.NoError(t, err)
	require.Equal(t, 1, again.Expired, "the renewal itself ended before now")
}

func TestExpiringWithin(t *testing.T) {
	f := setup(t, jan1)
	soon := f.draft(t, jan1.AddDate(0, 0, -30), jan1.AddDate(0, 0, 5), false)
	far := f.draft(t, jan1, jan1.AddDate(0, 3, 0), false)
	f.activate(t, soon.ID)
	f.activate(t, far.ID)

	list, err := f.svc.ExpiringWithin(f.manager, f.tda, 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, soon.ID, list[0].ID)

	_, err = f.svc.ExpiringWithin(f.manager, f.tda, 0)
	require.True(t, repository.IsInvalidInput(err))
}
