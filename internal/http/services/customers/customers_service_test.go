package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

func TestCreateValidates(t *testing.T) {
	conn, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{Audit: audit.NewRecorder(conn.Audit())})
	ctx := context.Background()

	_, err := svc.Create(ctx, tda, Input{Name: "Ada", Email: "not-an-email"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, Input{Name: " ", Email: "ada@example.com"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, Input{Name: "Ada", Email: "ada@example.com", Status: "vip"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, Input{Name: "Ada", Email: "ada@example.com", OwnerID: "ghost"})
	require.True(t, repository.IsInvalidInput(err))

	c, err := svc.Create(ctx, tda, Input{Name: " Ada ", Email: "ADA@Example.com"})
	require.NoError(t, err)
	require.Equal(t, "Ada", c.Name)
	require.Equal(t, "ada@example.com", c.Email)
	require.Equal(t, repository.CustomerActive, c.Status)
	require.Equal(t, tda.ID(), c.TenantID)
}

func TestUpdateRecordsChanges(t *testing.T) {
	conn, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{Audit: audit.NewRecorder(conn.Audit())})
	ctx := context.Background()

	c, err := svc.Create(ctx, tda, Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	u, err := svc.Update(ctx, tda, c.ID, Update{Company: common.Ptr("Analytical Engines"), Status: common.Ptr(repository.CustomerProspect)})
	require.NoError(t, err)
	require.Equal(t, "Analytical Engines", u.Company)
	require.Equal(t, "Ada", u.Name)

	page, err := tda.Audit().List(ctx, tda.ID(), repository.AuditFilter{ResourceID: c.ID})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	var upd *repository.AuditEntry
	for i := range page.Items {
		if page.Items[i].Action == audit.ActionUpdate {
			upd = &page.Items[i]
		}
	}
	require.NotNil(t, upd)
	require.Equal(t, "Analytical Engines", upd.Changes["company"])
	require.NotContains(t, upd.Changes, "name")
}

func TestTenantIsolation(t *testing.T) {
	conn, acme := storetest.NewTenant(t, "acme")
	globex := storetest.Tenant(t, conn, "globex")
	svc := NewService(Deps{})
	ctx := context.Background()

	c, err := svc.Create(ctx, acme, Input{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, globex, c.ID)
	require.True(t, repository.IsNotFound(err))
	require.True(t, repository.IsNotFound(svc.Delete(ctx, globex, c.ID)))
	page, err := svc.List(ctx, globex, repository.ListFilter{})
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestDeleteRefusedWithDependents(t *testing.T) {
	_, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{})
	ctx := context.Background()
	now := time.Now().UTC()

	c := storetest.Customer(t, tda, "Ada Lovelace")
	tk := repository.Ticket{
		ID: "t1", TenantID: tda.ID(), CustomerID: c.ID, Title: "broken",
		Priority: repository.PriorityLow, Status: repository.TicketOpen, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, tda.Tickets().Create(ctx, &tk))
	require.True(t, repository.IsConflict(svc.Delete(ctx, tda, c.ID)))

	tk.Status = repository.TicketClosed
	require.NoError(t, tda.Tickets().Update(ctx, &tk))
	require.NoError(t, svc.Delete(ctx, tda, c.ID))

	d := storetest.Customer(t, tda, "Grace Hopper")
	deal := repository.Deal{
		ID: "d1", TenantID: tda.ID(), CustomerID: d.ID, Title: "compiler",
		Stage: repository.StageLead, Currency: "USD", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, tda.Deals().Create(ctx, &deal))
	require.True(t, repository.IsConflict(svc.Delete(ctx, tda, d.ID)))
}
