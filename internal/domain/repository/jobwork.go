package repository

import "time"

const (
	JobPending    = "pending"
	JobInProgress = "in_progress"
	JobCompleted  = "completed"
	JobCancelled  = "cancelled"
)

// JobWork es una orden de trabajo facturable para un customer.
type JobWork struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	CustomerID     string     `json:"customer_id"`
	Reference      string     `json:"reference"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	Quantity       int64      `json:"quantity"`
	UnitPriceCents int64      `json:"unit_price_cents"`
	TotalCents     int64      `json:"total_cents"`
	AssigneeID     string     `json:"assignee_id,omitempty"`
	DueAt          *time.Time `json:"due_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

var JobWorkSortable = []string{"due_at", "total", "created_at"}

// JobWorkRepository busca por referencia y descripción; OwnerID filtra por asignado.
type JobWorkRepository interface {
	CRUD[JobWork]
}
