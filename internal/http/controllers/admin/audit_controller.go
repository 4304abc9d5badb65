package admin

import (
	"net/http"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	httperrors "github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/helpers"
)

// AuditController maneja GET /v1/audit
type AuditController struct {
	recorder *audit.Recorder
}

func NewAuditController(recorder *audit.Recorder) *AuditController {
	return &AuditController{recorder: recorder}
}

// List lista la auditoría del tenant, más reciente primero.
// Filtros: resource, resource_id, actor_id, page, page_size.
func (c *AuditController) List(w http.ResponseWriter, r *http.Request) {
	log := opLogger(r, "AuditController.List")
	tda, ok := tenantFrom(w, r)
	if !ok {
		return
	}
	f, err := helpers.AuditFilter(r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	page, err := c.recorder.List(r.Context(), tda.ID(), f)
	if err != nil {
		writeError(w, log, err)
		return
	}
	helpers.WritePage(w, page)
}
