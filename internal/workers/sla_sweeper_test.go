package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/contracts"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/rbac"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/tickets"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/sla"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

type fakeEscalator struct {
	mu      sync.Mutex
	seen    map[string]bool
	failFor string
}

func (f *fakeEscalator) EscalateOpen(ctx context.Context, tda *store.TenantDataAccess, _ time.Time) (int, error) {
	p, ok := claims.From(ctx)
	if !ok || !p.SuperAdmin || p.TenantID != tda.ID() {
		return 0, errors.New("expected system principal")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	f.seen[tda.Slug()] = true
	if tda.Slug() == f.failFor {
		return 0, errors.New("boom")
	}
	return 2, nil
}

type fakeExpirer struct{}

func (fakeExpirer) ExpireDue(context.Context, *store.TenantDataAccess, time.Time) (contracts.ExpireResult, error) {
	return contracts.ExpireResult{Expired: 1, Renewed: 1}, nil
}

func suspendedTenant(t *testing.T, conn store.AdapterConnection, slug string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, conn.Tenants().Create(context.Background(), &repository.Tenant{
		ID: uuid.NewString(), Slug: slug, Name: slug, Plan: "free",
		Status: repository.TenantSuspended, CreatedAt: now, UpdatedAt: now,
	}))
}

func TestRunOnceFansOutOverActiveTenants(t *testing.T) {
	conn := memory.New()
	for _, slug := range []string{"acme", "globex", "initech", "umbrella", "hooli"} {
		storetest.Tenant(t, conn, slug)
	}
	suspendedTenant(t, conn, "frozen")

	esc := &fakeEscalator{}
	sw := NewSLASweeper(SLASweeperConfig{
		Tenants:     store.NewManagerWithConnection(conn, time.Minute),
		Tickets:     esc,
		Contracts:   fakeExpirer{},
		Concurrency: 2,
	})

	res, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, SweepResult{Tenants: 5, Escalated: 10, Expired: 5, Renewed: 5}, res)
	require.Len(t, esc.seen, 5)
	require.False(t, esc.seen["frozen"])
}

func TestRunOnceIsolatesTenantFailures(t *testing.T) {
	conn := memory.New()
	storetest.Tenant(t, conn, "acme")
	storetest.Tenant(t, conn, "globex")

	sw := NewSLASweeper(SLASweeperConfig{
		Tenants:   store.NewManagerWithConnection(conn, time.Minute),
		Tickets:   &fakeEscalator{failFor: "globex"},
		Contracts: fakeExpirer{},
	})

	res, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Tenants)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 2, res.Escalated)
}

func TestRunOnceEscalatesOverdueTickets(t *testing.T) {
	conn, tda := storetest.NewTenant(t, "acme")
	ctx := context.Background()
	rec := audit.NewRecorder(conn.Audit())
	rb := rbac.NewService(rbac.Deps{Catalog: conn.RBAC(), Audit: rec})

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	created := now.Add(-10 * time.Hour)
	respDue, resDue := sla.DefaultPolicy.Deadlines(repository.PriorityHigh, created)
	overdue := repository.Ticket{
		ID: uuid.NewString(), TenantID: tda.ID(), Title: "printer on fire",
		Priority: repository.PriorityHigh, Status: repository.TicketOpen,
		ResponseDueAt: respDue, ResolutionDueAt: resDue,
		CreatedAt: created, UpdatedAt: created,
	}
	require.NoError(t, tda.Tickets().Create(ctx, &overdue))

	fresh := overdue
	fresh.ID = uuid.NewString()
	fresh.CreatedAt, fresh.UpdatedAt = now, now
	fresh.ResponseDueAt, fresh.ResolutionDueAt = sla.DefaultPolicy.Deadlines(repository.PriorityHigh, now)
	require.NoError(t, tda.Tickets().Create(ctx, &fresh))

	sw := NewSLASweeper(SLASweeperConfig{
		Tenants:   store.NewManagerWithConnection(conn, time.Minute),
		Tickets:   tickets.NewService(tickets.Deps{Directory: rb, Audit: rec}),
		Contracts: contracts.NewService(contracts.Deps{Permissions: rb, Audit: rec}),
		Now:       func() time.Time { return now },
	})

	res, err := sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.Escalated)

	got, err := tda.Tickets().Get(ctx, tda.ID(), overdue.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.EscalationLevel)
	require.Equal(t, repository.PriorityUrgent, got.Priority)
	require.NotNil(t, got.EscalatedAt)

	// segunda pasada: el nivel guardado ya cubre el incumplimiento
	res, err = sw.RunOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, res.Escalated)
}

func TestRunStopsOnCancel(t *testing.T) {
	conn := memory.New()
	sw := NewSLASweeper(SLASweeperConfig{
		Tenants:   store.NewManagerWithConnection(conn, time.Minute),
		Tickets:   &fakeEscalator{},
		Contracts: fakeExpirer{},
		Interval:  time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
