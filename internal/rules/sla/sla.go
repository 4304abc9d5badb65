// Package sla define la política de SLA de tickets y su regla de escalamiento.
package sla

import (
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// MaxLevel es el nivel de escalamiento máximo.
const MaxLevel = 3

// Target son los plazos de una prioridad.
type Target struct {
	FirstResponse time.Duration
	Resolution    time.Duration
}

// Policy mapea prioridad → plazos.
type Policy map[string]Target

// DefaultPolicy: urgent 1h/4h, high 4h/24h, medium 8h/72h, low 24h/168h.
var DefaultPolicy = Policy{
	repository.PriorityUrgent: {FirstResponse: time.Hour, Resolution: 4 * time.Hour},
	repository.PriorityHigh:   {FirstResponse: 4 * time.Hour, Resolution: 24 * time.Hour},
	repository.PriorityMedium: {FirstResponse: 8 * time.Hour, Resolution: 72 * time.Hour},
	repository.PriorityLow:    {FirstResponse: 24 * time.Hour, Resolution: 168 * time.Hour},
}

// Target retorna los plazos de la prioridad; prioridades desconocidas usan medium.
func (p Policy) Target(priority string) Target {
	if t, ok := p[priority]; ok {
		return t
	}
	return p[repository.PriorityMedium]
}

// Deadlines calcula ResponseDueAt y ResolutionDueAt desde el alta.
func (p Policy) Deadlines(priority string, createdAt time.Time) (responseDue, resolutionDue time.Time) {
	t := p.Target(priority)
	return createdAt.Add(t.FirstResponse), createdAt.Add(t.Resolution)
}

// Decision es el resultado de evaluar un ticket.
type Decision struct {
	Escalate bool
	Level    int    // nivel calculado
	Priority string // prioridad tras el bump (igual a la actual si no escala)
	Breached []string
}

const (
	BreachFirstResponse = "first_response"
	BreachResolution    = "resolution"
)

// Evaluate calcula el nivel de escalamiento de t en now.
//
// Nivel 1 si venció la primera respuesta sin respuesta. Vencida la
// resolución, el nivel es 1 + ventanas completas transcurridas desde el
// vencimiento, con tope MaxLevel. Sólo escala si supera el nivel guardado;
// la prioridad sube un paso por escalamiento.
func (p Policy) Evaluate(t repository.Ticket, now time.Time) Decision {
	d := Decision{Level: t.EscalationLevel, Priority: t.Priority}
	if !t.IsOpen() {
		return d
	}

	level := 0
	if t.FirstResponseAt == nil && now.After(t.ResponseDueAt) {
		level = 1
		d.Breached = append(d.Breached, BreachFirstResponse)
	}
	if now.After(t.ResolutionDueAt) {
		window := t.ResolutionDueAt.Sub(t.CreatedAt)
		if window <= 0 {
			window = p.Target(t.Priority).Resolution
		}
		lvl := 1 + int(now.Sub(t.ResolutionDueAt)/window)
		level = max(level, min(lvl, MaxLevel))
		d.Breached = append(d.Breached, BreachResolution)
	}

	if level > t.EscalationLevel {
		d.Escalate = true
		d.Level = level
		d.Priority = Bump(t.Priority)
	}
	return d
}

// Bump sube la prioridad un paso (máximo urgent).
func Bump(priority string) string {
	switch priority {
	case repository.PriorityLow:
		return repository.PriorityMedium
	case repository.PriorityMedium:
		return repository.PriorityHigh
	default:
		return repository.PriorityUrgent
	}
}
