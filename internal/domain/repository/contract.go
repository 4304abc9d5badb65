package repository

import (
	"context"
	"time"
)

const (
	ContractDraft           = "draft"
	ContractPendingApproval = "pending_approval"
	ContractActive          = "active"
	ContractExpired         = "expired"
	ContractTerminated      = "terminated"
)

type Contract struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	CustomerID    string    `json:"customer_id"`
	DealID        string    `json:"deal_id,omitempty"`
	Title         string    `json:"title"`
	ValueCents    int64     `json:"value_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	AutoRenew     bool      `json:"auto_renew"`
	ApprovedBy    string    `json:"approved_by,omitempty"`
	RenewedFromID string    `json:"renewed_from_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var ContractSortable = []string{"value", "ends_at", "created_at"}

type ContractRepository interface {
	CRUD[Contract]

	// ListByStatus retorna todos los contratos con ese status, ordenados por ends_at.
	ListByStatus(ctx context.Context, tenantID, status string) ([]Contract, error)
}
