package repository

import "time"

const (
	OpportunityOpen      = "open"
	OpportunityConverted = "converted"
	OpportunityLost      = "lost"
)

type Opportunity struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	CustomerID     string    `json:"customer_id"`
	Title          string    `json:"title"`
	EstimatedCents int64     `json:"estimated_cents"`
	Currency       string    `json:"currency"`
	Source         string    `json:"source,omitempty"`
	Status         string    `json:"status"`
	Score          int       `json:"score"`
	OwnerID        string    `json:"owner_id,omitempty"`
	DealID         string    `json:"deal_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var OpportunitySortable = []string{"score", "created_at", "estimated"}

type OpportunityRepository interface {
	CRUD[Opportunity]
}
