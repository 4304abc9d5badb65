// Package jobworks gestiona órdenes de trabajo facturables.
package jobworks

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const resource = "jobworks"

var transitions = map[string][]string{
	repository.JobPending:    {repository.JobInProgress, repository.JobCancelled},
	repository.JobInProgress: {repository.JobCompleted, repository.JobCancelled},
}

func canTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func terminal(status string) bool {
	return status == repository.JobCompleted || status == repository.JobCancelled
}

type Input struct {
	CustomerID     string
	Reference      string
	Description    string
	Quantity       int64
	UnitPriceCents int64
	AssigneeID     string
	DueAt          *time.Time
}

type Update struct {
	Reference      *string
	Description    *string
	Quantity       *int64
	UnitPriceCents *int64
	AssigneeID     *string
	DueAt          *time.Time
}

type Service interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.JobWork], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.JobWork, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.JobWork, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.JobWork, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error
	SetStatus(ctx context.Context, tda *store.TenantDataAccess, id, status string) (*repository.JobWork, error)
}

type Deps struct {
	Audit *audit.Recorder
	Clock common.Clock
}

type jobworksService struct {
	audit *audit.Recorder
	clock common.Clock
}

func NewService(d Deps) Service {
	return &jobworksService{audit: d.Audit, clock: d.Clock}
}

func (s *jobworksService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.JobWork], error) {
	return tda.JobWorks().List(ctx, tda.ID(), f)
}

func (s *jobworksService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.JobWork, error) {
	return tda.JobWorks().Get(ctx, tda.ID(), id)
}

// validate normaliza y recalcula TotalCents.
func (s *jobworksService) validate(ctx context.Context, tda *store.TenantDataAccess, j *repository.JobWork) error {
	var err error
	if j.Reference, err = common.Required("reference", j.Reference); err != nil {
		return err
	}
	j.Description = strings.TrimSpace(j.Description)
	if j.Quantity <= 0 {
		return common.Invalid("quantity must be > 0")
	}
	if j.UnitPriceCents < 0 {
		return common.Invalid("unit_price_cents must be >= 0")
	}
	if j.UnitPriceCents > 0 && j.Quantity > math.MaxInt64/j.UnitPriceCents {
		return common.Invalid("total overflows")
	}
	j.TotalCents = j.Quantity * j.UnitPriceCents
	if err := common.CustomerInTenant(ctx, tda, j.CustomerID); err != nil {
		return err
	}
	if j.AssigneeID != "" {
		return common.UserInTenant(ctx, tda, j.AssigneeID)
	}
	return nil
}

func (s *jobworksService) Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.JobWork, error) {
	now := s.clock.Now()
	j := repository.JobWork{
		ID: uuid.NewString(), TenantID: tda.ID(), CustomerID: in.CustomerID,
		Reference: in.Reference, Description: in.Description, Status: repository.JobPending,
		Quantity: in.Quantity, UnitPriceCents: in.UnitPriceCents,
		AssigneeID: strings.TrimSpace(in.AssigneeID), DueAt: in.DueAt,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.validate(ctx, tda, &j); err != nil {
		return nil, err
	}
	if err := tda.JobWorks().Create(ctx, &j); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: j.ID, Changes: audit.Snapshot(j)})
	return &j, nil
}

func (s *jobworksService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.JobWork, error) {
	cur, err := tda.JobWorks().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if terminal(cur.Status) {
		return nil, common.Transition(cur.Status, "update")
	}
	before := *cur
	j := *cur
	if in.Reference != nil {
		j.Reference = *in.Reference
	}
	if in.Description != nil {
		j.Description = *in.Description
	}
	if in.Quantity != nil {
		j.Quantity = *in.Quantity
	}
	if in.UnitPriceCents != nil {
		j.UnitPriceCents = *in.UnitPriceCents
	}
	if in.AssigneeID != nil {
		j.AssigneeID = strings.TrimSpace(*in.AssigneeID)
	}
	if in.DueAt != nil {
		j.DueAt = in.DueAt
	}
	if err := s.validate(ctx, tda, &j); err != nil {
		return nil, err
	}
	return s.save(ctx, tda, before, j, audit.ActionUpdate)
}

func (s *jobworksService) save(ctx context.Context, tda *store.TenantDataAccess, before, j repository.JobWork, action string) (*repository.JobWork, error) {
	j.UpdatedAt = s.clock.Now()
	if err := tda.JobWorks().Update(ctx, &j); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: action, Resource: resource, ResourceID: j.ID, Changes: audit.Changes(before, j)})
	return &j, nil
}

func (s *jobworksService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	if err := tda.JobWorks().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: id})
	return nil
}

func (s *jobworksService) SetStatus(ctx context.Context, tda *store.TenantDataAccess, id, status string) (*repository.JobWork, error) {
	cur, err := tda.JobWorks().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if !canTransition(cur.Status, status) {
		return nil, common.Transition(cur.Status, status)
	}
	before := *cur
	j := *cur
	j.Status = status
	if status == repository.JobCompleted {
		j.CompletedAt = common.Ptr(s.clock.Now())
	}
	return s.save(ctx, tda, before, j, audit.ActionStatus)
}
