// Package customers implementa el ABM de customers del tenant.
package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const resource = "customers"

type Input struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	Industry string
	Status   string
	OwnerID  string
}

// Update aplica solo los campos no nil.
type Update struct {
	Name     *string
	Email    *string
	Phone    *string
	Company  *string
	Industry *string
	Status   *string
	OwnerID  *string
}

type Service interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Customer], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Customer, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Customer, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Customer, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error
}

type Deps struct {
	Audit *audit.Recorder
	Clock common.Clock
}

type customersService struct {
	audit *audit.Recorder
	clock common.Clock
}

func NewService(d Deps) Service {
	return &customersService{audit: d.Audit, clock: d.Clock}
}

func validStatus(s string) bool {
	switch s {
	case repository.CustomerActive, repository.CustomerInactive, repository.CustomerProspect:
		return true
	}
	return false
}

func (s *customersService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Customer], error) {
	return tda.Customers().List(ctx, tda.ID(), f)
}

func (s *customersService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Customer, error) {
	return tda.Customers().Get(ctx, tda.ID(), id)
}

func (s *customersService) validate(ctx context.Context, tda *store.TenantDataAccess, c *repository.Customer) error {
	var err error
	if c.Name, err = common.Required("name", c.Name); err != nil {
		return err
	}
	if c.Email, err = common.NormalizeEmail(c.Email); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = repository.CustomerActive
	}
	if !validStatus(c.Status) {
		return common.Invalid("invalid status %q", c.Status)
	}
	c.Phone = strings.TrimSpace(c.Phone)
	c.Company = strings.TrimSpace(c.Company)
	c.Industry = strings.TrimSpace(c.Industry)
	if c.OwnerID != "" {
		return common.UserInTenant(ctx, tda, c.OwnerID)
	}
	return nil
}

func (s *customersService) Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Customer, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component(resource), logger.Op("Create"))

	now := s.clock.Now()
	c := repository.Customer{
		ID: uuid.NewString(), TenantID: tda.ID(),
		Name: in.Name, Email: in.Email, Phone: in.Phone, Company: in.Company,
		Industry: in.Industry, Status: in.Status, OwnerID: strings.TrimSpace(in.OwnerID),
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.validate(ctx, tda, &c); err != nil {
		return nil, err
	}
	if err := tda.Customers().Create(ctx, &c); err != nil {
		log.Error("create customer failed", logger.Err(err))
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: c.ID, Changes: audit.Snapshot(c)})
	return &c, nil
}

func (s *customersService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Customer, error) {
	cur, err := tda.Customers().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	before := *cur
	c := *cur
	setIf(&c.Name, in.Name)
	setIf(&c.Email, in.Email)
	setIf(&c.Phone, in.Phone)
	setIf(&c.Company, in.Company)
	setIf(&c.Industry, in.Industry)
	setIf(&c.Status, in.Status)
	if in.OwnerID != nil {
		c.OwnerID = strings.TrimSpace(*in.OwnerID)
	}
	if err := s.validate(ctx, tda, &c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.clock.Now()
	if err := tda.Customers().Update(ctx, &c); err != nil {
		return nil, err
	}
	if ch := audit.Changes(before, c); len(ch) > 0 {
		s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionUpdate, Resource: resource, ResourceID: c.ID, Changes: ch})
	}
	return &c, nil
}

// Delete se rechaza con ErrConflict mientras el customer tenga deals,
// contratos o tickets abiertos.
func (s *customersService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	if _, err := tda.Customers().Get(ctx, tda.ID(), id); err != nil {
		return err
	}
	byCustomer := repository.ListFilter{CustomerID: id, PageSize: 1}

	deals, err := tda.Deals().List(ctx, tda.ID(), byCustomer)
	if err != nil {
		return err
	}
	if deals.Total > 0 {
		return fmt.Errorf("%w: customer has %d deals", repository.ErrConflict, deals.Total)
	}
	contracts, err := tda.Contracts().List(ctx, tda.ID(), byCustomer)
	if err != nil {
		return err
	}
	if contracts.Total > 0 {
		return fmt.Errorf("%w: customer has %d contracts", repository.ErrConflict, contracts.Total)
	}
	for _, st := range []string{repository.TicketOpen, repository.TicketInProgress} {
		f := byCustomer
		f.Status = st
		tickets, err := tda.Tickets().List(ctx, tda.ID(), f)
		if err != nil {
			return err
		}
		if tickets.Total > 0 {
			return fmt.Errorf("%w: customer has open tickets", repository.ErrConflict)
		}
	}

	if err := tda.Customers().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: id})
	return nil
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
