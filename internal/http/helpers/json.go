// Package helpers contiene utilidades HTTP compartidas por los controllers.
package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/errors"
)

const maxBody = 64 << 10

// ReadJSON decodifica el body en v (tolerante a campos desconocidos).
// Valida Content-Type y limita el body a 64KB.
// Devuelve false si ya escribió el error HTTP.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("Content-Type must be application/json"))
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			errors.WriteError(w, errors.ErrInvalidJSON.WithDetail("empty body"))
			return false
		}
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			errors.WriteError(w, errors.ErrBadRequest.WithDetail("body too large"))
			return false
		}
		errors.WriteError(w, errors.ErrInvalidJSON.WithDetail(err.Error()))
		return false
	}
	return true
}

// WriteJSON escribe una respuesta JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoContent responde 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WritePage escribe una página de resultados ({items, total, page, page_size}).
// Items nunca se serializa como null.
func WritePage[T any](w http.ResponseWriter, p repository.Page[T]) {
	if p.Items == nil {
		p.Items = []T{}
	}
	WriteJSON(w, http.StatusOK, p)
}

// Created responde 201 con Location.
func Created(w http.ResponseWriter, location string, v any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	WriteJSON(w, http.StatusCreated, v)
}
