package repository

import (
	"context"
	"time"
)

const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageClosedWon   = "closed_won"
	StageClosedLost  = "closed_lost"
)

// OpenStages en orden de avance del pipeline.
var OpenStages = []string{StageLead, StageQualified, StageProposal, StageNegotiation}

// IsClosedStage indica si el stage es terminal.
func IsClosedStage(s string) bool { return s == StageClosedWon || s == StageClosedLost }

// IsValidStage indica si el stage existe.
func IsValidStage(s string) bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

type Deal struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	CustomerID      string     `json:"customer_id"`
	Title           string     `json:"title"`
	ValueCents      int64      `json:"value_cents"`
	Currency        string     `json:"currency"`
	Stage           string     `json:"stage"`
	Probability     int        `json:"probability"`
	Source          string     `json:"source,omitempty"`
	OwnerID         string     `json:"owner_id,omitempty"`
	Score           int        `json:"score"`
	ExpectedCloseAt *time.Time `json:"expected_close_at,omitempty"`
	LastActivityAt  *time.Time `json:"last_activity_at,omitempty"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// DealSortable son las columnas ordenables de deals ("value" = value_cents).
var DealSortable = []string{"value", "score", "created_at", "expected_close_at"}

// StageAggregate resume un stage del pipeline.
type StageAggregate struct {
	Stage         string `json:"stage"`
	Count         int    `json:"count"`
	ValueCents    int64  `json:"value_cents"`
	WeightedCents int64  `json:"weighted_cents"`
}

// DealRepository filtra Status contra Stage y busca por título.
type DealRepository interface {
	CRUD[Deal]

	// CountOpenByOwner cuenta deals en stages abiertos por owner.
	CountOpenByOwner(ctx context.Context, tenantID string) (map[string]int, error)

	// SumByStage agrega cantidad, valor y valor ponderado
	// (value_cents * probability / 100) por stage. Stages sin deals se omiten.
	SumByStage(ctx context.Context, tenantID string) ([]StageAggregate, error)
}
