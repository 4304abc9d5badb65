package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

func newTicket(priority string, created time.Time) repository.Ticket {
	resp, res := DefaultPolicy.Deadlines(priority, created)
	return repository.Ticket{
		Priority: priority, Status: repository.TicketOpen,
		CreatedAt: created, ResponseDueAt: resp, ResolutionDueAt: res,
	}
}

func TestDeadlines(t *testing.T) {
	c := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	resp, res := DefaultPolicy.Deadlines(repository.PriorityHigh, c)
	require.Equal(t, c.Add(4*time.Hour), resp)
	require.Equal(t, c.Add(24*time.Hour), res)

	resp, _ = DefaultPolicy.Deadlines("bogus", c)
	require.Equal(t, c.Add(8*time.Hour), resp)
}

func TestEvaluate(t *testing.T) {
	c := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("within sla", func(t *testing.T) {
		d := DefaultPolicy.Evaluate(newTicket(repository.PriorityUrgent, c), c.Add(30*time.Minute))
		require.False(t, d.Escalate)
		require.Equal(t, repository.PriorityUrgent, d.Priority)
	})

	t.Run("first response breached", func(t *testing.T) {
		d := DefaultPolicy.Evaluate(newTicket(repository.PriorityMedium, c), c.Add(9*time.Hour))
		require.True(t, d.Escalate)
		require.Equal(t, 1, d.Level)
		require.Equal(t, repository.PriorityHigh, d.Priority)
		require.Equal(t, []string{BreachFirstResponse}, d.Breached)
	})

	t.Run("responded is not breached", func(t *testing.T) {
		tk := newTicket(repository.PriorityMedium, c)
		at := c.Add(time.Hour)
		tk.FirstResponseAt = &at
		tk.Status = repository.TicketInProgress
		d := DefaultPolicy.Evaluate(tk, c.Add(9*time.Hour))
		require.False(t, d.Escalate)
	})

	t.Run("resolution windows", func(t *testing.T) {
		tk := newTicket(repository.PriorityUrgent, c) // resolución 4h
		require.Equal(t, 1, DefaultPolicy.Evaluate(tk, c.Add(5*time.Hour)).Level)
		require.Equal(t, 2, DefaultPolicy.Evaluate(tk, c.Add(8*time.Hour+time.Minute)).Level)
		require.Equal(t, 3, DefaultPolicy.Evaluate(tk, c.Add(100*time.Hour)).Level)
	})

	t.Run("only above stored level", func(t *testing.T) {
		tk := newTicket(repository.PriorityUrgent, c)
		tk.EscalationLevel = 2
		d := DefaultPolicy.Evaluate(tk, c.Add(5*time.Hour))
		require.False(t, d.Escalate)
		require.Equal(t, 2, d.Level)
	})

	t.Run("closed tickets never escalate", func(t *testing.T) {
		tk := newTicket(repository.PriorityLow, c)
		tk.Status = repository.TicketResolved
		require.False(t, DefaultPolicy.Evaluate(tk, c.Add(1000*time.Hour)).Escalate)
	})
}

func TestBump(t *testing.T) {
	require.Equal(t, repository.PriorityMedium, Bump(repository.PriorityLow))
	require.Equal(t, repository.PriorityHigh, Bump(repository.PriorityMedium))
	require.Equal(t, repository.PriorityUrgent, Bump(repository.PriorityHigh))
	require.Equal(t, repository.PriorityUrgent, Bump(repository.PriorityUrgent))
}
