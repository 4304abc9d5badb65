package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
)

// ListFilter arma el filtro de listado desde la query:
// q, status, priority, owner_id, customer_id, page, page_size, sort, desc.
func ListFilter(r *http.Request) (repository.ListFilter, error) {
	q := r.URL.Query()
	f := repository.ListFilter{
		Search:     strings.TrimSpace(q.Get("q")),
		Status:     strings.TrimSpace(q.Get("status")),
		Priority:   strings.TrimSpace(q.Get("priority")),
		OwnerID:    strings.TrimSpace(q.Get("owner_id")),
		CustomerID: strings.TrimSpace(q.Get("customer_id")),
		SortBy:     strings.TrimSpace(q.Get("sort")),
	}

	var err error
	if f.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = intParam(q.Get("page_size"), "page_size"); err != nil {
		return f, err
	}
	if v := q.Get("desc"); v != "" {
		b, perr := strconv.ParseBool(v)
		if perr != nil {
			return f, errors.ErrInvalidParameter.WithDetail("desc must be a boolean")
		}
		f.SortDesc = b
	}
	return f, nil
}

// AuditFilter arma el filtro de auditoría desde la query.
func AuditFilter(r *http.Request) (repository.AuditFilter, error) {
	q := r.URL.Query()
	f := repository.AuditFilter{
		Resource:   strings.TrimSpace(q.Get("resource")),
		ResourceID: strings.TrimSpace(q.Get("resource_id")),
		ActorID:    strings.TrimSpace(q.Get("actor_id")),
	}
	var err error
	if f.Page, err = intParam(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.PageSize, err = intParam(q.Get("page_size"), "page_size"); err != nil {
		return f, err
	}
	return f, nil
}

// IntQuery lee un entero opcional de la query (def si falta).
func IntQuery(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	return intParam(v, name)
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.ErrInvalidParameter.WithDetail(name + " must be a non-negative integer")
	}
	return n, nil
}

// PathID lee el parámetro {name} y valida que sea un UUID.
// Devuelve false si ya escribió el error HTTP.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if _, err := uuid.Parse(id); err != nil {
		errors.WriteError(w, errors.ErrInvalidFormat.WithDetail(name+" must be a UUID"))
		return "", false
	}
	return id, true
}

// PathParam lee el parámetro {name} sin validar formato.
func PathParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}
