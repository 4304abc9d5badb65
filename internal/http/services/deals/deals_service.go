// Package deals implementa el pipeline de ventas: ABM, cambio de stage,
// auto-asignación de owner y resumen del pipeline.
package deals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/assignment"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/scoring"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const (
	resource = "deals"

	PermUpdate = "deals:update"
	PermClose  = "deals:close"
)

// DefaultProbability por stage.
var DefaultProbability = map[string]int{
	repository.StageLead:        10,
	repository.StageQualified:   25,
	repository.StageProposal:    50,
	repository.StageNegotiation: 75,
	repository.StageClosedWon:   100,
	repository.StageClosedLost:  0,
}

type Input struct {
	CustomerID      string
	Title           string
	ValueCents      int64
	Currency        string
	Stage           string
	Probability     *int
	Source          string
	OwnerID         string
	ExpectedCloseAt *time.Time
}

type Update struct {
	Title           *string
	ValueCents      *int64
	Currency        *string
	Probability     *int
	Source          *string
	OwnerID         *string
	ExpectedCloseAt *time.Time
}

// Pipeline resume el pipeline del tenant.
type Pipeline struct {
	Stages        []repository.StageAggregate `json:"stages"`
	Count         int                         `json:"count"`
	ValueCents    int64                       `json:"value_cents"`
	WeightedCents int64                       `json:"weighted_cents"`
}

type Service interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Deal], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Deal, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Deal, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Deal, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error
	MoveStage(ctx context.Context, tda *store.TenantDataAccess, id, stage string) (*repository.Deal, error)
	Pipeline(ctx context.Context, tda *store.TenantDataAccess) (*Pipeline, error)
}

type Deps struct {
	Directory common.Directory
	Audit     *audit.Recorder
	Clock     common.Clock
}

type dealsService struct {
	dir   common.Directory
	audit *audit.Recorder
	clock common.Clock
}

func NewService(d Deps) Service {
	return &dealsService{dir: d.Directory, audit: d.Audit, clock: d.Clock}
}

func (s *dealsService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(logger.Layer("service"), logger.Component(resource), logger.Op(op))
}

func (s *dealsService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Deal], error) {
	return tda.Deals().List(ctx, tda.ID(), f)
}

func (s *dealsService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Deal, error) {
	return tda.Deals().Get(ctx, tda.ID(), id)
}

func (s *dealsService) validate(ctx context.Context, tda *store.TenantDataAccess, d *repository.Deal) error {
	var err error
	if d.Title, err = common.Required("title", d.Title); err != nil {
		return err
	}
	if d.ValueCents < 0 {
		return common.Invalid("value_cents must be >= 0")
	}
	if d.Currency, err = common.Currency(d.Currency); err != nil {
		return err
	}
	if d.Probability < 0 || d.Probability > 100 {
		return common.Invalid("probability must be between 0 and 100")
	}
	d.Source = strings.ToLower(strings.TrimSpace(d.Source))
	if err := common.CustomerInTenant(ctx, tda, d.CustomerID); err != nil {
		return err
	}
	if d.OwnerID != "" {
		return common.UserInTenant(ctx, tda, d.OwnerID)
	}
	return nil
}

// pickOwner elige al usuario activo con deals:update y menos deals abiertos.
func (s *dealsService) pickOwner(ctx context.Context, tda *store.TenantDataAccess) (string, error) {
	if s.dir == nil {
		return "", nil
	}
	candidates, err := s.dir.UsersWithPermission(ctx, tda, PermUpdate)
	if err != nil {
		return "", err
	}
	load, err := tda.Deals().CountOpenByOwner(ctx, tda.ID())
	if err != nil {
		return "", err
	}
	id, _ := assignment.PickLeastLoaded(candidates, load)
	return id, nil
}

func (s *dealsService) Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Deal, error) {
	log := s.log(ctx, "Create")

	stage := strings.TrimSpace(in.Stage)
	if stage == "" {
		stage = repository.StageLead
	}
	if !repository.IsValidStage(stage) || repository.IsClosedStage(stage) {
		return nil, common.Invalid("deals must be created in an open stage, got %q", stage)
	}

	now := s.clock.Now()
	d := repository.Deal{
		ID: uuid.NewString(), TenantID: tda.ID(), CustomerID: in.CustomerID,
		Title: in.Title, ValueCents: in.ValueCents, Currency: in.Currency,
		Stage: stage, Probability: DefaultProbability[stage], Source: in.Source,
		OwnerID: strings.TrimSpace(in.OwnerID), ExpectedCloseAt: in.ExpectedCloseAt,
		LastActivityAt: &now, CreatedAt: now, UpdatedAt: now,
	}
	if in.Probability != nil {
		d.Probability = *in.Probability
	}
	if err := s.validate(ctx, tda, &d); err != nil {
		return nil, err
	}
	if d.OwnerID == "" {
		owner, err := s.pickOwner(ctx, tda)
		if err != nil {
			return nil, err
		}
		d.OwnerID = owner
	}
	d.Score = scoring.ForDeal(d, now)

	if err := tda.Deals().Create(ctx, &d); err != nil {
		log.Error("create deal failed", logger.Err(err))
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: d.ID, Changes: audit.Snapshot(d)})
	log.Debug("deal created", logger.EntityID(d.ID), logger.String("owner_id", d.OwnerID))
	return &d, nil
}

func (s *dealsService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Deal, error) {
	cur, err := tda.Deals().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if repository.IsClosedStage(cur.Stage) {
		return nil, common.Transition(cur.Stage, "update")
	}
	before := *cur
	d := *cur
	if in.Title != nil {
		d.Title = *in.Title
	}
	if in.ValueCents != nil {
		d.ValueCents = *in.ValueCents
	}
	if in.Currency != nil {
		d.Currency = *in.Currency
	}
	if in.Probability != nil {
		d.Probability = *in.Probability
	}
	if in.Source != nil {
		d.Source = *in.Source
	}
	if in.OwnerID != nil {
		d.OwnerID = strings.TrimSpace(*in.OwnerID)
	}
	if in.ExpectedCloseAt != nil {
		d.ExpectedCloseAt = in.ExpectedCloseAt
	}
	if err := s.validate(ctx, tda, &d); err != nil {
		return nil, err
	}
	return s.save(ctx, tda, before, d, audit.ActionUpdate)
}

func (s *dealsService) save(ctx context.Context, tda *store.TenantDataAccess, before, d repository.Deal, action string) (*repository.Deal, error) {
	now := s.clock.Now()
	d.LastActivityAt = &now
	d.UpdatedAt = now
	d.Score = scoring.ForDeal(d, now)
	if err := tda.Deals().Update(ctx, &d); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: action, Resource: resource, ResourceID: d.ID, Changes: audit.Changes(before, d)})
	return &d, nil
}

// MoveStage mueve el deal entre stages abiertos o lo cierra. Cerrar requiere
// deals:close; un deal cerrado no cambia más.
func (s *dealsService) MoveStage(ctx context.Context, tda *store.TenantDataAccess, id, stage string) (*repository.Deal, error) {
	stage = strings.TrimSpace(stage)
	if !repository.IsValidStage(stage) {
		return nil, common.Invalid("unknown stage %q", stage)
	}
	cur, err := tda.Deals().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if repository.IsClosedStage(cur.Stage) {
		return nil, common.Transition(cur.Stage, stage)
	}
	if cur.Stage == stage {
		return cur, nil
	}
	closing := repository.IsClosedStage(stage)
	if closing {
		if err := common.Require(ctx, s.dir, tda, PermClose); err != nil {
			return nil, err
		}
	}

	before := *cur
	d := *cur
	d.Stage = stage
	d.Probability = DefaultProbability[stage]
	if closing {
		d.ClosedAt = common.Ptr(s.clock.Now())
	}
	out, err := s.save(ctx, tda, before, d, audit.ActionStage)
	if err != nil {
		return nil, err
	}
	if closing {
		metrics.DealsClosed.WithLabelValues(stage).Inc()
	}
	s.log(ctx, "MoveStage").Info("deal stage changed",
		logger.EntityID(d.ID), logger.String("from", before.Stage), logger.String("to", stage))
	return out, nil
}

func (s *dealsService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	if err := tda.Deals().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: id})
	return nil
}

func (s *dealsService) Pipeline(ctx context.Context, tda *store.TenantDataAccess) (*Pipeline, error) {
	stages, err := tda.Deals().SumByStage(ctx, tda.ID())
	if err != nil {
		return nil, err
	}
	p := &Pipeline{Stages: stages}
	for _, a := range stages {
		p.Count += a.Count
		p.ValueCents += a.ValueCents
		p.WeightedCents += a.WeightedCents
	}
	return p, nil
}
