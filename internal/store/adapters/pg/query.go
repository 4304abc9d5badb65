package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// where acumula condiciones con placeholders posicionales.
type where struct {
	conds []string
	args  []any
}

func tenantWhere(tenantID string) *where {
	w := &where{}
	w.add("tenant_id = $%d", tenantID)
	return w
}

// add agrega una condición con un único placeholder %d.
func (w *where) add(cond string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *where) eq(col, v string) {
	if v != "" {
		w.add(col+" = $%d", v)
	}
}

// search agrega un ILIKE sobre varias columnas unidas por OR.
func (w *where) search(q string, cols ...string) {
	if q == "" {
		return
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	w.args = append(w.args, "%"+r.Replace(q)+"%")
	n := len(w.args)
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", c, n)
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *where) sql() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// listSpec describe una tabla listable.
type listSpec struct {
	table   string
	columns string
	// sortCols mapea el nombre público de orden a la expresión SQL.
	sortCols map[string]string
}

func (s listSpec) sortable() []string {
	out := make([]string, 0, len(s.sortCols))
	for k := range s.sortCols {
		out = append(out, k)
	}
	return out
}

// listPage ejecuta COUNT + SELECT paginado con orden estable por id.
func listPage[T any](ctx context.Context, pool *pgxpool.Pool, spec listSpec, w *where,
	f repository.ListFilter, scan func(pgx.Row) (T, error),
) (repository.Page[T], error) {
	f = f.Normalize(spec.sortable()...)
	page := repository.Page[T]{Items: []T{}, Page: f.Page, PageSize: f.PageSize}

	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+spec.table+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return page, mapErr(err)
	}

	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	args := append(append([]any{}, w.args...), f.PageSize, f.Offset())
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		spec.columns, spec.table, w.sql(), spec.sortCols[f.SortBy], dir, len(args)-1, len(args))

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return page, mapErr(err)
	}
	items, err := collect(rows, scan)
	if err != nil {
		return page, mapErr(err)
	}
	page.Items = items
	return page, nil
}
