// Package contracts gestiona el ciclo de vida de contratos: borrador,
// aprobación, vigencia, vencimiento y renovación automática.
package contracts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const (
	resource = "contracts"

	PermApprove = "contracts:approve"
)

type Input struct {
	CustomerID string
	DealID     string
	Title      string
	ValueCents int64
	Currency   string
	StartsAt   time.Time
	EndsAt     time.Time
	AutoRenew  bool
}

type Update struct {
	Title      *string
	ValueCents *int64
	Currency   *string
	StartsAt   *time.Time
	EndsAt     *time.Time
	AutoRenew  *bool
}

// ExpireResult resume una pasada de vencimientos.
type ExpireResult struct {
	Expired int `json:"expired"`
	Renewed int `json:"renewed"`
}

type Service interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Contract], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Contract, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Contract, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error

	Submit(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error)
	Approve(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error)
	Reject(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error)
	Terminate(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error)

	ExpireDue(ctx context.Context, tda *store.TenantDataAccess, now time.Time) (ExpireResult, error)
	ExpiringWithin(ctx context.Context, tda *store.TenantDataAccess, days int) ([]repository.Contract, error)
}

type Deps struct {
	Permissions common.PermissionChecker
	Audit       *audit.Recorder
	Clock       common.Clock
}

type contractsService struct {
	perms common.PermissionChecker
	audit *audit.Recorder
	clock common.Clock
}

func NewService(d Deps) Service {
	return &contractsService{perms: d.Permissions, audit: d.Audit, clock: d.Clock}
}

func (s *contractsService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Contract], error) {
	return tda.Contracts().List(ctx, tda.ID(), f)
}

func (s *contractsService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error) {
	return tda.Contracts().Get(ctx, tda.ID(), id)
}

func (s *contractsService) validate(ctx context.Context, tda *store.TenantDataAccess, c *repository.Contract) error {
	var err error
	if c.Title, err = common.Required("title", c.Title); err != nil {
		return err
	}
	if c.ValueCents < 0 {
		return common.Invalid("value_cents must be >= 0")
	}
	if c.Currency, err = common.Currency(c.Currency); err != nil {
		return err
	}
	if c.StartsAt.IsZero() || c.EndsAt.IsZero() {
		return common.Invalid("starts_at and ends_at are required")
	}
	if !c.EndsAt.After(c.StartsAt) {
		return common.Invalid("ends_at must be after starts_at")
	}
	if err := common.CustomerInTenant(ctx, tda, c.CustomerID); err != nil {
		return err
	}
	if c.DealID != "" {
		d, err := tda.Deals().Get(ctx, tda.ID(), c.DealID)
		if repository.IsNotFound(err) {
			return common.Invalid("deal %q not found", c.DealID)
		}
		if err != nil {
			return err
		}
		if d.CustomerID != c.CustomerID {
			return common.Invalid("deal %q belongs to another customer", c.DealID)
		}
	}
	return nil
}

func (s *contractsService) Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Contract, error) {
	now := s.clock.Now()
	c := repository.Contract{
		ID: uuid.NewString(), TenantID: tda.ID(), CustomerID: in.CustomerID,
		DealID: strings.TrimSpace(in.DealID), Title: in.Title, ValueCents: in.ValueCents,
		Currency: in.Currency, Status: repository.ContractDraft,
		StartsAt: in.StartsAt.UTC(), EndsAt: in.EndsAt.UTC(), AutoRenew: in.AutoRenew,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.validate(ctx, tda, &c); err != nil {
		return nil, err
	}
	if err := tda.Contracts().Create(ctx, &c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: c.ID, Changes: audit.Snapshot(c)})
	return &c, nil
}

// Update sólo aplica sobre borradores.
func (s *contractsService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Contract, error) {
	cur, err := tda.Contracts().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status != repository.ContractDraft {
		return nil, common.Transition(cur.Status, "update")
	}
	before := *cur
	c := *cur
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.ValueCents != nil {
		c.ValueCents = *in.ValueCents
	}
	if in.Currency != nil {
		c.Currency = *in.Currency
	}
	if in.StartsAt != nil {
		c.StartsAt = in.StartsAt.UTC()
	}
	if in.EndsAt != nil {
		c.EndsAt = in.EndsAt.UTC()
	}
	if in.AutoRenew != nil {
		c.AutoRenew = *in.AutoRenew
	}
	if err := s.validate(ctx, tda, &c); err != nil {
		return nil, err
	}
	return s.save(ctx, tda, before, c, audit.ActionUpdate)
}

func (s *contractsService) save(ctx context.Context, tda *store.TenantDataAccess, before, c repository.Contract, action string) (*repository.Contract, error) {
	c.UpdatedAt = s.clock.Now()
	if err := tda.Contracts().Update(ctx, &c); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: action, Resource: resource, ResourceID: c.ID, Changes: audit.Changes(before, c)})
	return &c, nil
}

// Delete sólo borra borradores; un contrato emitido queda como historial.
func (s *contractsService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	cur, err := tda.Contracts().Get(ctx, tda.ID(), id)
	if err != nil {
		return err
	}
	if cur.Status != repository.ContractDraft {
		return common.Transition(cur.Status, "delete")
	}
	if err := tda.Contracts().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: id})
	return nil
}

func (s *contractsService) transition(ctx context.Context, tda *store.TenantDataAccess, id, from, to, action string, mutate func(*repository.Contract)) (*repository.Contract, error) {
	cur, err := tda.Contracts().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status != from {
		return nil, common.Transition(cur.Status, to)
	}
	before := *cur
	c := *cur
	c.Status = to
	if mutate != nil {
		mutate(&c)
	}
	return s.save(ctx, tda, before, c, action)
}

func (s *contractsService) Submit(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error) {
	return s.transition(ctx, tda, id, repository.ContractDraft, repository.ContractPendingApproval, audit.ActionStatus, nil)
}

func (s *contractsService) Approve(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error) {
	if err := common.Require(ctx, s.perms, tda, PermApprove); err != nil {
		return nil, err
	}
	approver := claims.ActorID(ctx)
	return s.transition(ctx, tda, id, repository.ContractPendingApproval, repository.ContractActive, audit.ActionApprove,
		func(c *repository.Contract) { c.ApprovedBy = approver })
}

func (s *contractsService) Reject(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error) {
	if err := common.Require(ctx, s.perms, tda, PermApprove); err != nil {
		return nil, err
	}
	return s.transition(ctx, tda, id, repository.ContractPendingApproval, repository.ContractDraft, audit.ActionStatus, nil)
}

func (s *contractsService) Terminate(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Contract, error) {
	return s.transition(ctx, tda, id, repository.ContractActive, repository.ContractTerminated, audit.ActionStatus, nil)
}

// ExpireDue vence los contratos activos con EndsAt < now. Los de renovación
// automática generan un contrato activo nuevo por la misma duración.
func (s *contractsService) ExpireDue(ctx context.Context, tda *store.TenantDataAccess, now time.Time) (ExpireResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(resource), logger.Op("ExpireDue"), logger.TenantID(tda.ID()))

	var res ExpireResult
	active, err := tda.Contracts().ListByStatus(ctx, tda.ID(), repository.ContractActive)
	if err != nil {
		return res, err
	}
	now = now.UTC()
	for _, cur := range active {
		if !cur.EndsAt.Before(now) {
			break // ordenados por ends_at
		}
		before := cur
		c := cur
		c.Status = repository.ContractExpired
		if _, err := s.save(ctx, tda, before, c, audit.ActionExpire); err != nil {
			return res, err
		}
		res.Expired++

		renewed := "false"
		if c.AutoRenew {
			if _, err := s.renew(ctx, tda, c, now); err != nil {
				log.Error("renew failed", logger.EntityID(c.ID), logger.Err(err))
				return res, err
			}
			res.Renewed++
			renewed = "true"
		}
		metrics.ContractsExpired.WithLabelValues(renewed).Inc()
	}
	if res.Expired > 0 {
		log.Info("contracts expired", logger.Int("expired", res.Expired), logger.Int("renewed", res.Renewed))
	}
	return res, nil
}

func (s *contractsService) renew(ctx context.Context, tda *store.TenantDataAccess, old repository.Contract, now time.Time) (*repository.Contract, error) {
	n := old
	n.ID = uuid.NewString()
	n.Status = repository.ContractActive
	n.StartsAt = old.EndsAt
	n.EndsAt = old.EndsAt.Add(old.EndsAt.Sub(old.StartsAt))
	n.RenewedFromID = old.ID
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := tda.Contracts().Create(ctx, &n); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionRenew, Resource: resource, ResourceID: n.ID,
		Changes: map[string]any{"renewed_from_id": old.ID, "ends_at": n.EndsAt}})
	return &n, nil
}

func (s *contractsService) ExpiringWithin(ctx context.Context, tda *store.TenantDataAccess, days int) ([]repository.Contract, error) {
	if days <= 0 {
		return nil, common.Invalid("days must be > 0")
	}
	active, err := tda.Contracts().ListByStatus(ctx, tda.ID(), repository.ContractActive)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	limit := now.AddDate(0, 0, days)
	out := make([]repository.Contract, 0)
	for _, c := range active {
		if c.EndsAt.Before(now) {
			continue
		}
		if c.EndsAt.After(limit) {
			break
		}
		out = append(out, c)
	}
	return out, nil
}
