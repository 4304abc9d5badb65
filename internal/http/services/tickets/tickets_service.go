// Package tickets implementa soporte: alta con SLA y auto-asignación,
// máquina de estados, asignación manual y escalamiento por SLA.
package tickets

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/email"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/assignment"
	"github.com/razorzibra-dot/trialram-sub001/internal/rules/sla"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const (
	resource = "tickets"

	PermUpdate = "tickets:update"
	PermAssign = "tickets:assign"
)

// transitions: estado actual → estados destino permitidos.
var transitions = map[string][]string{
	repository.TicketOpen:       {repository.TicketInProgress, repository.TicketClosed},
	repository.TicketInProgress: {repository.TicketResolved, repository.TicketClosed},
	repository.TicketResolved:   {repository.TicketInProgress, repository.TicketClosed},
}

// CanTransition indica si from → to está permitido.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Input struct {
	CustomerID  string
	Title       string
	Description string
	Category    string
	Priority    string
	AssigneeID  string
}

type Update struct {
	Title       *string
	Description *string
	Category    *string
	Priority    *string
}

// Escalation es el resultado de evaluar un ticket contra su SLA.
type Escalation struct {
	Ticket   repository.Ticket `json:"ticket"`
	Escalate bool              `json:"escalated"`
	Level    int               `json:"level"`
	Breached []string          `json:"breached,omitempty"`
}

type Service interface {
	List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Ticket], error)
	Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Ticket, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Ticket, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Ticket, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error
	SetStatus(ctx context.Context, tda *store.TenantDataAccess, id, status string) (*repository.Ticket, error)
	Assign(ctx context.Context, tda *store.TenantDataAccess, id, userID string) (*repository.Ticket, error)
	EscalateCheck(ctx context.Context, tda *store.TenantDataAccess, id string) (*Escalation, error)
	// EscalateOpen evalúa todos los tickets abiertos y retorna cuántos escalaron.
	EscalateOpen(ctx context.Context, tda *store.TenantDataAccess, now time.Time) (int, error)
}

type Deps struct {
	Directory common.Directory
	Audit     *audit.Recorder
	Mailer    email.Sender
	Policy    sla.Policy
	Clock     common.Clock
}

type ticketsService struct {
	dir    common.Directory
	audit  *audit.Recorder
	mailer email.Sender
	policy sla.Policy
	clock  common.Clock
}

func NewService(d Deps) Service {
	if d.Policy == nil {
		d.Policy = sla.DefaultPolicy
	}
	if d.Mailer == nil {
		d.Mailer = email.NoopSender{}
	}
	return &ticketsService{dir: d.Directory, audit: d.Audit, mailer: d.Mailer, policy: d.Policy, clock: d.Clock}
}

func (s *ticketsService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(logger.Layer("service"), logger.Component(resource), logger.Op(op))
}

func (s *ticketsService) List(ctx context.Context, tda *store.TenantDataAccess, f repository.ListFilter) (repository.Page[repository.Ticket], error) {
	return tda.Tickets().List(ctx, tda.ID(), f)
}

func (s *ticketsService) Get(ctx context.Context, tda *store.TenantDataAccess, id string) (*repository.Ticket, error) {
	return tda.Tickets().Get(ctx, tda.ID(), id)
}

func normalizePriority(p string) (string, error) {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return repository.PriorityMedium, nil
	}
	if repository.PriorityRank(p) < 0 {
		return "", common.Invalid("invalid priority %q", p)
	}
	return p, nil
}

// pickAssignee elige al usuario con tickets:update y menos tickets abiertos.
func (s *ticketsService) pickAssignee(ctx context.Context, tda *store.TenantDataAccess) (string, error) {
	if s.dir == nil {
		return "", nil
	}
	candidates, err := s.dir.UsersWithPermission(ctx, tda, PermUpdate)
	if err != nil {
		return "", err
	}
	load, err := tda.Tickets().CountOpenByAssignee(ctx, tda.ID())
	if err != nil {
		return "", err
	}
	id, _ := assignment.PickLeastLoaded(candidates, load)
	return id, nil
}

func (s *ticketsService) Create(ctx context.Context, tda *store.TenantDataAccess, in Input) (*repository.Ticket, error) {
	log := s.log(ctx, "Create")

	title, err := common.Required("title", in.Title)
	if err != nil {
		return nil, err
	}
	prio, err := normalizePriority(in.Priority)
	if err != nil {
		return nil, err
	}
	if err := common.CustomerInTenant(ctx, tda, in.CustomerID); err != nil {
		return nil, err
	}

	assignee := strings.TrimSpace(in.AssigneeID)
	auto := false
	if assignee != "" {
		if err := common.UserInTenant(ctx, tda, assignee); err != nil {
			return nil, err
		}
	} else {
		if assignee, err = s.pickAssignee(ctx, tda); err != nil {
			return nil, err
		}
		auto = assignee != ""
	}

	now := s.clock.Now()
	respDue, resDue := s.policy.Deadlines(prio, now)
	t := repository.Ticket{
		ID: uuid.NewString(), TenantID: tda.ID(), CustomerID: in.CustomerID,
		Title: title, Description: strings.TrimSpace(in.Description),
		Category: strings.TrimSpace(in.Category), Priority: prio,
		Status: repository.TicketOpen, AssigneeID: assignee,
		ResponseDueAt: respDue, ResolutionDueAt: resDue,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := tda.Tickets().Create(ctx, &t); err != nil {
		log.Error("create ticket failed", logger.Err(err))
		return nil, err
	}
	if auto {
		metrics.TicketsAutoAssigned.Inc()
		log.Info("ticket auto-assigned", logger.EntityID(t.ID), logger.String("assignee_id", assignee))
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: t.ID, Changes: audit.Snapshot(t)})
	return &t, nil
}

func (s *ticketsService) Update(ctx context.Context, tda *store.TenantDataAccess, id string, in Update) (*repository.Ticket, error) {
	cur, err := tda.Tickets().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status == repository.TicketClosed {
		return nil, common.Transition(cur.Status, "update")
	}
	before := *cur
	t := *cur
	if in.Title != nil {
		if t.Title, err = common.Required("title", *in.Title); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		t.Category = strings.TrimSpace(*in.Category)
	}
	if in.Priority != nil {
		if t.Priority, err = normalizePriority(*in.Priority); err != nil {
			return nil, err
		}
		if t.Priority != before.Priority {
			t.ResponseDueAt, t.ResolutionDueAt = s.policy.Deadlines(t.Priority, t.CreatedAt)
		}
	}
	return s.save(ctx, tda, before, t, audit.ActionUpdate)
}

func (s *ticketsService) save(ctx context.Context, tda *store.TenantDataAccess, before, t repository.Ticket, action string) (*repository.Ticket, error) {
	t.UpdatedAt = s.clock.Now()
	if err := tda.Tickets().Update(ctx, &t); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: action, Resource: resource, ResourceID: t.ID, Changes: audit.Changes(before, t)})
	return &t, nil
}

func (s *ticketsService) Delete(ctx context.Context, tda *store.TenantDataAccess, id string) error {
	if err := tda.Tickets().Delete(ctx, tda.ID(), id); err != nil {
		return err
	}
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: id})
	return nil
}

func (s *ticketsService) SetStatus(ctx context.Context, tda *store.TenantDataAccess, id, status string) (*repository.Ticket, error) {
	status = strings.TrimSpace(status)
	cur, err := tda.Tickets().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(cur.Status, status) {
		return nil, common.Transition(cur.Status, status)
	}
	now := s.clock.Now()
	before := *cur
	t := *cur
	t.Status = status
	if before.Status == repository.TicketOpen && t.FirstResponseAt == nil {
		t.FirstResponseAt = &now
	}
	switch status {
	case repository.TicketResolved:
		t.ResolvedAt = &now
	case repository.TicketInProgress:
		t.ResolvedAt = nil
	}
	return s.save(ctx, tda, before, t, audit.ActionStatus)
}

func (s *ticketsService) Assign(ctx context.Context, tda *store.TenantDataAccess, id, userID string) (*repository.Ticket, error) {
	if err := common.Require(ctx, s.dir, tda, PermAssign); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, common.Invalid("user_id is required")
	}
	cur, err := tda.Tickets().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	if cur.Status == repository.TicketClosed {
		return nil, common.Transition(cur.Status, "assign")
	}
	if err := common.UserInTenant(ctx, tda, userID); err != nil {
		return nil, err
	}
	before := *cur
	t := *cur
	t.AssigneeID = userID
	return s.save(ctx, tda, before, t, audit.ActionAssign)
}

func (s *ticketsService) EscalateCheck(ctx context.Context, tda *store.TenantDataAccess, id string) (*Escalation, error) {
	cur, err := tda.Tickets().Get(ctx, tda.ID(), id)
	if err != nil {
		return nil, err
	}
	return s.escalate(ctx, tda, *cur, s.clock.Now())
}

func (s *ticketsService) EscalateOpen(ctx context.Context, tda *store.TenantDataAccess, now time.Time) (int, error) {
	open, err := tda.Tickets().ListOpen(ctx, tda.ID())
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range open {
		res, err := s.escalate(ctx, tda, t, now)
		if err != nil {
			return n, err
		}
		if res.Escalate {
			n++
		}
	}
	return n, nil
}

func (s *ticketsService) escalate(ctx context.Context, tda *store.TenantDataAccess, t repository.Ticket, now time.Time) (*Escalation, error) {
	d := s.policy.Evaluate(t, now)
	res := &Escalation{Ticket: t, Escalate: d.Escalate, Level: d.Level, Breached: d.Breached}
	if !d.Escalate {
		return res, nil
	}

	before := t
	t.EscalationLevel = d.Level
	t.Priority = d.Priority
	t.EscalatedAt = &now
	t.UpdatedAt = now
	if err := tda.Tickets().Update(ctx, &t); err != nil {
		return nil, err
	}
	res.Ticket = t

	s.audit.Record(ctx, tda.ID(), audit.Entry{
		Action: audit.ActionEscalate, Resource: resource, ResourceID: t.ID,
		Changes: map[string]any{
			"escalation_level": t.EscalationLevel,
			"priority":         map[string]string{"from": before.Priority, "to": t.Priority},
			"breached":         d.Breached,
		},
	})
	metrics.TicketsEscalated.WithLabelValues(strconv.Itoa(d.Level)).Inc()
	log := s.log(ctx, "escalate").With(logger.TenantID(tda.ID()), logger.EntityID(t.ID))
	log.Info("ticket escalated", logger.Int("level", d.Level), logger.String("priority", t.Priority))

	s.notify(ctx, tda, t, log)
	return res, nil
}

// notify avisa al asignado; un fallo de envío no revierte el escalamiento.
func (s *ticketsService) notify(ctx context.Context, tda *store.TenantDataAccess, t repository.Ticket, log *zap.Logger) {
	if t.AssigneeID == "" {
		return
	}
	u, err := tda.Users().Get(ctx, tda.ID(), t.AssigneeID)
	if err != nil {
		log.Warn("escalation notice: assignee lookup failed", logger.Err(err))
		return
	}
	err = email.SendEscalation(s.mailer, u.Email, email.EscalationVars{
		TicketID: t.ID, Title: t.Title, Priority: t.Priority, Level: t.EscalationLevel,
		ResolutionDueAt: t.ResolutionDueAt, Tenant: tda.Tenant().Name,
	})
	if err != nil {
		log.Warn("escalation notice failed", logger.Err(err))
	}
}
