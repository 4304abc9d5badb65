// Package opportunities gestiona oportunidades y su conversión a deals.
package opportunities

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/deals"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/scoring"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const (
	resource = "opportunities"

	PermConvert = "opportunities:convert"
)

type Input struct {
	CustomerID     string
	Title          string
	EstimatedCents int64
	Currency       string
	Source         string
	OwnerID        string
}

type Update struct {
	Title          *string
	EstimatedCents *int64
	Currency       *string
	Source         *string
	OwnerID        *string
}

type Service interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Opportunity], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Opportunity, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Opportunity, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Opportunity, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error
	// Convert crea un deal qualified y marca la oportunidad como convertida.
	// Llamadas concurrentes sobre la misma oportunidad comparten el resultado;
	// entre procesos distintos la última escritura gana.
	Convert(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Opportunity, *repository.Deal, error)
	MarkLost(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Opportunity, error)
}

type Deps struct {
	Deals       deals.Service
	Permissions common.PermissionChecker
	Audit       *audit.Recorder
	Clock       common.Clock
}

type opportunitiesService struct {
	deals deals.Service
	perms common.PermissionChecker
	audit *audit.Recorder
	clock common.Clock

	converting singleflight.Group
}

type conversion struct {
	opp  *repository.Opportunity
	deal *repository.Deal
}

func NewService(d Deps) Service {
	return &opportunitiesService{deals: d.Deals, perms: d.Permissions, audit: d.Audit, clock: d.Clock}
}

func (s *opportunitiesService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Opportunity], error) {
	return tda.Opportunities().List(ctx, tda.ID(), f)
}

func (s *opportunitiesService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Opportunity, error) {
	return tda.Opportunities().Get(ctx, tda.ID(), id)
}

func (s *opportunitiesService) validate(ctx context.Context, tda *store.TenantDataAccess, o *repository.Opportunity) error {
	var err error
	if o.Title, err = common.Required("title", o.Title); err != nil {
		return err
	}
	if o.EstimatedCents < 0 {
		return common.Invalid("estimated_cents must be >= 0")
	}
	if o.Currency, err = common.Currency(o.Currency); err != nil {
		return err
	}
	o.Source = strings.ToLower(strings.TrimSpace(o.Source))
	if err := common.CustomerInTenant(ctx, tda, o.CustomerID); err != nil {
		return err
	}
	if o.OwnerID != "" {
		return common.UserInTenant(ctx, tda, o.OwnerID)
	}
	return nil
}

func (s *opportunitiesService) Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Opportunity, error) {
	now := s.clock.Now()
	o := repository.Opportunity{
		ID: uuid.NewString(), TenantID: tda.ID(), CustomerID: in.CustomerID,
		Title: in.Title, EstimatedCents: in.EstimatedCents, Currency: in.Currency,
		Source: in.Source, Status: repository.OpportunityOpen, OwnerID: strings.TrimSpace(in.OwnerID),
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.validate(ctx, tda, &o); err != nil {
		return nil, err
	}
	o.Score = scoring.ForOpportunity(o, now)
	if err := tda.Opportunities().Create(ctx, &o); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: o.ID, Changes: audit.Snapshot(o)})
	return &o, nil
}

func (s *opportunitiesService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Opportunity, error) {
	cur, err := tda.Opportunities().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status != repository.OpportunityOpen {
		return nil, common.Transition(cur.Status, "update")
	}
	before := *cur
	o := *cur
	if in.Title != nil {
		o.Title = *in.Title
	}
	if in.EstimatedCents != nil {
		o.EstimatedCents = *in.EstimatedCents
	}
	if in.Currency != nil {
		o.Currency = *in.Currency
	}
	if in.Source != nil {
		o.Source = *in.Source
	}
	if in.OwnerID != nil {
		o.OwnerID = strings.TrimSpace(*in.OwnerID)
	}
	if err := s.validate(ctx, tda, &o); err != nil {
		return nil, err
	}
	return s.save(ctx, tda, before, o, audit.ActionUpdate)
}

func (s *opportunitiesService) save(ctx context.Context, tda *store.TenantDataAccess, before, o repository.Opportunity, action string) (*repository.Opportunity, error) {
	now := s.clock.Now()
	o.UpdatedAt = now
	o.Score = scoring.ForOpportunity(o, now)
	if o.Status == repository.OpportunityLost {
		o.Score = 0
	}
	if err := tda.Opportunities().Update(ctx, &o); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: action, Resource: resource, ResourceID: o.ID, Changes: audit.Changes(before, o)})
	return &o, nil
}

func (s *opportunitiesService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	if err := tda.Opportunities().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: id})
	return nil
}

func (s *opportunitiesService) Convert(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Opportunity, *repository.Deal, error) {
	if err := common.Require(ctx, s.perms, tda, PermConvert); err != nil {
		return nil, nil, err
	}
	v, err, _ := s.converting.Do(tda.ID()+"/"+id, func() (any, error) {
		return s.convert(ctx, tda, id)
	})
	if err != nil {
		return nil, nil, err
	}
	c := v.(*conversion)
	return c.opp, c.deal, nil
}

func (s *opportunitiesService) convert(ctx context.Context, tda *store.TenantDataAccess, id string) (*conversion, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(resource), logger.Op("Convert"), logger.EntityID(id))

	cur, err := tda.Opportunities().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status != repository.OpportunityOpen {
		return nil, common.Transition(cur.Status, repository.OpportunityConverted)
	}

	d, err := s.deals.Create(ctx, tda, deals.Input{
		CustomerID: cur.CustomerID,
		Title:      cur.Title,
		ValueCents: cur.EstimatedCents,
		Currency:   cur.Currency,
		Stage:      repository.StageQualified,
		Source:     cur.Source,
		OwnerID:    cur.OwnerID,
	})
	if err != nil {
		log.Error("convert: create deal failed", logger.Err(err))
		return nil, err
	}

	before := *cur
	o := *cur
	o.Status = repository.OpportunityConverted
	o.DealID = d.ID
	out, err := s.save(ctx, tda, before, o, audit.ActionConvert)
	if err != nil {
		// el deal no debe quedar huérfano
		if derr := s.deals.Delete(ctx, tda, d.ID); derr != nil {
			log.Error("convert: rollback deal failed", logger.String("deal_id", d.ID), logger.Err(derr))
		}
		return nil, err
	}
	log.Info("opportunity converted", logger.String("deal_id", d.ID))
	return &conversion{opp: out, deal: d}, nil
}

func (s *opportunitiesService) MarkLost(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Opportunity, error) {
	cur, err := tda.Opportunities().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status != repository.OpportunityOpen {
		return nil, common.Transition(cur.Status, repository.OpportunityLost)
	}
	before := *cur
	o := *cur
	o.Status = repository.OpportunityLost
	return s.save(ctx, tda, before, o, audit.ActionStatus)
}
