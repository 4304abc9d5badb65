package memory

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// table es una tabla en memoria con filtrado por tenant y una restricción
// unique opcional. Guarda copias de los valores.
type table[T any] struct {
	mu     sync.RWMutex
	rows   map[string]T
	key    func(*T) string
	tenant func(*T) string
	unique func(*T) string // nil o "" = sin restricción
}

func newTable[T any](key, tenant, unique func(*T) string) *table[T] {
	return &table[T]{rows: make(map[string]T), key: key, tenant: tenant, unique: unique}
}

func (t *table[T]) get(tenantID, id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok || t.tenant(&v) != tenantID {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (t *table[T]) insert(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.key(v)
	if _, ok := t.rows[id]; ok {
		return repository.ErrConflict
	}
	if err := t.checkUnique(v, id); err != nil {
		return err
	}
	t.rows[id] = *v
	return nil
}

func (t *table[T]) update(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.key(v)
	cur, ok := t.rows[id]
	if !ok || t.tenant(&cur) != t.tenant(v) {
		return repository.ErrNotFound
	}
	if err := t.checkUnique(v, id); err != nil {
		return err
	}
	t.rows[id] = *v
	return nil
}

func (t *table[T]) remove(tenantID, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.rows[id]
	if !ok || t.tenant(&cur) != tenantID {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// checkUnique requiere el lock tomado.
func (t *table[T]) checkUnique(v *T, selfID string) error {
	if t.unique == nil {
		return nil
	}
	u := t.unique(v)
	if u == "" {
		return nil
	}
	for id, row := range t.rows {
		if id != selfID && t.unique(&row) == u {
			return repository.ErrConflict
		}
	}
	return nil
}

// scan retorna copias de las filas del tenant que cumplen keep (nil = todas).
func (t *table[T]) scan(tenantID string, keep func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0)
	for _, row := range t.rows {
		if t.tenant(&row) != tenantID {
			continue
		}
		if keep == nil || keep(&row) {
			out = append(out, row)
		}
	}
	return out
}

// find retorna la primera fila del tenant que cumple keep.
func (t *table[T]) find(tenantID string, keep func(*T) bool) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, row := range t.rows {
		if t.tenant(&row) == tenantID && keep(&row) {
			return &row, nil
		}
	}
	return nil, repository.ErrNotFound
}

// purge borra todas las filas del tenant.
func (t *table[T]) purge(tenantID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, row := range t.rows {
		if t.tenant(&row) == tenantID {
			delete(t.rows, id)
		}
	}
}

// list aplica filtro, orden y paginación con la misma semántica que el adapter SQL.
func (t *table[T]) list(tenantID string, f repository.ListFilter, sortable []string,
	match func(*T, repository.ListFilter) bool, cmp func(a, b *T, field string) int,
) repository.Page[T] {
	f = f.Normalize(sortable...)
	items := t.scan(tenantID, func(v *T) bool { return match(v, f) })
	slices.SortStableFunc(items, func(a, b T) int {
		c := cmp(&a, &b, f.SortBy)
		if f.SortDesc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(t.key(&a), t.key(&b))
		}
		return c
	})
	return paginate(items, f.Page, f.PageSize, f.Offset())
}

func paginate[T any](items []T, page, size, offset int) repository.Page[T] {
	total := len(items)
	start := min(max(offset, 0), total)
	end := min(start+size, total)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return repository.Page[T]{Items: out, Total: total, Page: page, PageSize: size}
}

// ─── helpers de filtrado y orden ───

// contains busca q (case-insensitive) en alguno de los campos. q vacío = match.
func contains(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// eq compara contra el filtro; filtro vacío = match.
func eq(filter, v string) bool { return filter == "" || filter == v }

func cmpTime(a, b time.Time) int { return a.Compare(b) }

// cmpTimePtr ordena nil al final, como NULLS LAST en postgres para ASC.
func cmpTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
