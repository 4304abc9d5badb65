// Package audit registra las mutaciones de negocio en el audit log del tenant.
package audit

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/claims"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/metrics"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
)

// Acciones estándar.
const (
	ActionCreate   = "create"
	ActionUpdate   = "update"
	ActionDelete   = "delete"
	ActionStage    = "stage_change"
	ActionStatus   = "status_change"
	ActionAssign   = "assign"
	ActionEscalate = "escalate"
	ActionConvert  = "convert"
	ActionApprove  = "approve"
	ActionExpire   = "expire"
	ActionRenew    = "renew"
	ActionLogin    = "login"
)

// Entry es lo que registra un service. ActorID e IP se completan desde el
// contexto si vienen vacíos.
type Entry struct {
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	Changes    map[string]any
}

type Recorder struct {
	repo repository.AuditRepository
	now  func() time.Time
}

func NewRecorder(repo repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// Record persiste la entrada en el audit log de tenantID, el tenant sobre el
// que se opera (no el del token). Un fallo se loguea y nunca se propaga.
func (r *Recorder) Record(ctx context.Context, tenantID string, e Entry) {
	if r == nil || r.repo == nil {
		return
	}
	if tenantID == "" {
		metrics.AuditEntries.WithLabelValues("failed").Inc()
		logger.From(ctx).Error("audit entry without tenant",
			logger.Layer("audit"), logger.Resource(e.Resource), logger.String("action", e.Action))
		return
	}
	if e.ActorID == "" {
		e.ActorID = claims.ActorID(ctx)
	}

	entry := &repository.AuditEntry{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Changes:    e.Changes,
		IP:         claims.ClientIP(ctx),
		CreatedAt:  r.now().UTC(),
	}

	log := logger.From(ctx).With(
		logger.Layer("audit"),
		logger.TenantID(entry.TenantID),
		logger.UserID(entry.ActorID),
		logger.Resource(entry.Resource),
		logger.EntityID(entry.ResourceID),
		logger.String("action", entry.Action),
	)

	if err := r.repo.Append(ctx, entry); err != nil {
		metrics.AuditEntries.WithLabelValues("failed").Inc()
		log.Error("audit append failed", logger.Err(err))
		return
	}
	metrics.AuditEntries.WithLabelValues("ok").Inc()
	log.Info("audit")
}

// List retorna las entradas del tenant, más nuevas primero.
func (r *Recorder) List(ctx context.Context, tenantID string, f repository.AuditFilter) (repository.Page[repository.AuditEntry], error) {
	return r.repo.List(ctx, tenantID, f)
}

// Diff retorna los campos que cambian entre before y after (valores nuevos).
func Diff(before, after map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range after {
		if old, ok := before[k]; !ok || !reflect.DeepEqual(old, v) {
			out[k] = v
		}
	}
	return out
}

// Snapshot convierte una entidad a map usando sus tags json.
func Snapshot(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	delete(out, "updated_at")
	return out
}

// Changes es Diff entre dos snapshots de la misma entidad.
func Changes(before, after any) map[string]any {
	return Diff(Snapshot(before), Snapshot(after))
}
