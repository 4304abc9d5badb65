package repository

import (
	"context"
	"time"
)

const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// PriorityRank ordena prioridades (low=0 ... urgent=3); -1 si no existe.
func PriorityRank(p string) int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

type Ticket struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	CustomerID      string     `json:"customer_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	Priority        string     `json:"priority"`
	Status          string     `json:"status"`
	AssigneeID      string     `json:"assignee_id,omitempty"`
	ResponseDueAt   time.Time  `json:"response_due_at"`
	ResolutionDueAt time.Time  `json:"resolution_due_at"`
	FirstResponseAt *time.Time `json:"first_response_at,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	EscalationLevel int        `json:"escalation_level"`
	EscalatedAt     *time.Time `json:"escalated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsOpen indica si el ticket cuenta como carga de trabajo (open | in_progress).
func (t Ticket) IsOpen() bool { return t.Status == TicketOpen || t.Status == TicketInProgress }

var TicketSortable = []string{"priority", "created_at", "resolution_due_at"}

// TicketRepository: OwnerID del filtro se aplica sobre AssigneeID.
type TicketRepository interface {
	CRUD[Ticket]

	// ListOpen retorna tickets open | in_progress ordenados por created_at.
	ListOpen(ctx context.Context, tenantID string) ([]Ticket, error)

	// CountOpenByAssignee cuenta tickets open | in_progress por asignado.
	CountOpenByAssignee(ctx context.Context, tenantID string) (map[string]int, error)
}
