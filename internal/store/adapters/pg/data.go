package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// ─── CustomerRepository ───

type customerRepo struct{ pool *pgxpool.Pool }

var customerSpec = listSpec{
	table:   "customers",
	columns: `id, tenant_id, name, email, phone, company, industry, status, owner_id, created_at, updated_at`,
	sortCols: map[string]string{
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	},
}

func scanCustomer(row pgx.Row) (repository.Customer, error) {
	var c repository.Customer
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Industry,
		&c.Status, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *customerRepo) Get(ctx context.Context, tenantID, id string) (*repository.Customer, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanCustomer,
		`SELECT `+customerSpec.columns+` FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *customerRepo) Create(ctx context.Context, c *repository.Customer) error {
	const query = `
		INSERT INTO customers (id, tenant_id, name, email, phone, company, industry, status, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query, c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Company, c.Industry,
		c.Status, c.OwnerID, c.CreatedAt, c.UpdatedAt)
	return mapErr(err)
}

func (r *customerRepo) Update(ctx context.Context, c *repository.Customer) error {
	const query = `
		UPDATE customers SET name = $3, email = $4, phone = $5, company = $6, industry = $7,
			status = $8, owner_id = $9, updated_at = $10
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, c.TenantID, c.ID, c.Name, c.Email, c.Phone, c.Company, c.Industry,
		c.Status, c.OwnerID, c.UpdatedAt)
}

func (r *customerRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *customerRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Customer], error) {
	w := tenantWhere(tenantID)
	w.eq("status", f.Status)
	w.eq("owner_id", f.OwnerID)
	w.search(f.Search, "name", "email", "company")
	return listPage(ctx, r.pool, customerSpec, w, f, scanCustomer)
}

// ─── DealRepository ───

type dealRepo struct{ pool *pgxpool.Pool }

var dealSpec = listSpec{
	table: "deals",
	columns: `id, tenant_id, customer_id, title, value_cents, currency, stage, probability, source, owner_id,
		score, expected_close_at, last_activity_at, closed_at, created_at, updated_at`,
	sortCols: map[string]string{
		"value":             "value_cents",
		"score":             "score",
		"created_at":        "created_at",
		"expected_close_at": "expected_close_at",
	},
}

func scanDeal(row pgx.Row) (repository.Deal, error) {
	var d repository.Deal
	err := row.Scan(&d.ID, &d.TenantID, &d.CustomerID, &d.Title, &d.ValueCents, &d.Currency, &d.Stage,
		&d.Probability, &d.Source, &d.OwnerID, &d.Score, &d.ExpectedCloseAt, &d.LastActivityAt, &d.ClosedAt,
		&d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *dealRepo) Get(ctx context.Context, tenantID, id string) (*repository.Deal, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanDeal,
		`SELECT `+dealSpec.columns+` FROM deals WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *dealRepo) Create(ctx context.Context, d *repository.Deal) error {
	const query = `
		INSERT INTO deals (id, tenant_id, customer_id, title, value_cents, currency, stage, probability, source,
			owner_id, score, expected_close_at, last_activity_at, closed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.pool.Exec(ctx, query, d.ID, d.TenantID, d.CustomerID, d.Title, d.ValueCents, d.Currency,
		d.Stage, d.Probability, d.Source, d.OwnerID, d.Score, d.ExpectedCloseAt, d.LastActivityAt, d.ClosedAt,
		d.CreatedAt, d.UpdatedAt)
	return mapErr(err)
}

func (r *dealRepo) Update(ctx context.Context, d *repository.Deal) error {
	const query = `
		UPDATE deals SET customer_id = $3, title = $4, value_cents = $5, currency = $6, stage = $7,
			probability = $8, source = $9, owner_id = $10, score = $11, expected_close_at = $12,
			last_activity_at = $13, closed_at = $14, updated_at = $15
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, d.TenantID, d.ID, d.CustomerID, d.Title, d.ValueCents, d.Currency,
		d.Stage, d.Probability, d.Source, d.OwnerID, d.Score, d.ExpectedCloseAt, d.LastActivityAt, d.ClosedAt,
		d.UpdatedAt)
}

func (r *dealRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM deals WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *dealRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Deal], error) {
	w := tenantWhere(tenantID)
	w.eq("stage", f.Status)
	w.eq("owner_id", f.OwnerID)
	w.eq("customer_id", f.CustomerID)
	w.search(f.Search, "title")
	return listPage(ctx, r.pool, dealSpec, w, f, scanDeal)
}

func (r *dealRepo) CountOpenByOwner(ctx context.Context, tenantID string) (map[string]int, error) {
	const query = `
		SELECT owner_id, COUNT(*) FROM deals
		WHERE tenant_id = $1 AND owner_id <> '' AND stage NOT IN ('closed_won', 'closed_lost')
		GROUP BY owner_id
	`
	return countBy(ctx, r.pool, query, tenantID)
}

func (r *dealRepo) SumByStage(ctx context.Context, tenantID string) ([]repository.StageAggregate, error) {
	const query = `
		SELECT stage, COUNT(*), COALESCE(SUM(value_cents), 0)::bigint, COALESCE(SUM(value_cents * probability / 100), 0)::bigint
		FROM deals
		WHERE tenant_id = $1
		GROUP BY stage
		ORDER BY array_position(ARRAY['lead','qualified','proposal','negotiation','closed_won','closed_lost'], stage)
	`
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.StageAggregate, error) {
		var a repository.StageAggregate
		err := row.Scan(&a.Stage, &a.Count, &a.ValueCents, &a.WeightedCents)
		return a, err
	})
}

// countBy escanea pares (clave, count).
func countBy(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (map[string]int, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}

// ─── OpportunityRepository ───

type opportunityRepo struct{ pool *pgxpool.Pool }

var opportunitySpec = listSpec{
	table: "opportunities",
	columns: `id, tenant_id, customer_id, title, estimated_cents, currency, source, status, score, owner_id,
		deal_id, created_at, updated_at`,
	sortCols: map[string]string{
		"score":      "score",
		"created_at": "created_at",
		"estimated":  "estimated_cents",
	},
}

func scanOpportunity(row pgx.Row) (repository.Opportunity, error) {
	var o repository.Opportunity
	err := row.Scan(&o.ID, &o.TenantID, &o.CustomerID, &o.Title, &o.EstimatedCents, &o.Currency, &o.Source,
		&o.Status, &o.Score, &o.OwnerID, &o.DealID, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *opportunityRepo) Get(ctx context.Context, tenantID, id string) (*repository.Opportunity, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanOpportunity,
		`SELECT `+opportunitySpec.columns+` FROM opportunities WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *opportunityRepo) Create(ctx context.Context, o *repository.Opportunity) error {
	const query = `
		INSERT INTO opportunities (id, tenant_id, customer_id, title, estimated_cents, currency, source, status,
			score, owner_id, deal_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query, o.ID, o.TenantID, o.CustomerID, o.Title, o.EstimatedCents, o.Currency,
		o.Source, o.Status, o.Score, o.OwnerID, o.DealID, o.CreatedAt, o.UpdatedAt)
	return mapErr(err)
}

func (r *opportunityRepo) Update(ctx context.Context, o *repository.Opportunity) error {
	const query = `
		UPDATE opportunities SET customer_id = $3, title = $4, estimated_cents = $5, currency = $6, source = $7,
			status = $8, score = $9, owner_id = $10, deal_id = $11, updated_at = $12
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, o.TenantID, o.ID, o.CustomerID, o.Title, o.EstimatedCents, o.Currency,
		o.Source, o.Status, o.Score, o.OwnerID, o.DealID, o.UpdatedAt)
}

func (r *opportunityRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM opportunities WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *opportunityRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Opportunity], error) {
	w := tenantWhere(tenantID)
	w.eq("status", f.Status)
	w.eq("owner_id", f.OwnerID)
	w.eq("customer_id", f.CustomerID)
	w.search(f.Search, "title")
	return listPage(ctx, r.pool, opportunitySpec, w, f, scanOpportunity)
}

// ─── ContractRepository ───

type contractRepo struct{ pool *pgxpool.Pool }

var contractSpec = listSpec{
	table: "contracts",
	columns: `id, tenant_id, customer_id, deal_id, title, value_cents, currency, status, starts_at, ends_at,
		auto_renew, approved_by, renewed_from_id, created_at, updated_at`,
	sortCols: map[string]string{
		"value":      "value_cents",
		"ends_at":    "ends_at",
		"created_at": "created_at",
	},
}

func scanContract(row pgx.Row) (repository.Contract, error) {
	var c repository.Contract
	err := row.Scan(&c.ID, &c.TenantID, &c.CustomerID, &c.DealID, &c.Title, &c.ValueCents, &c.Currency,
		&c.Status, &c.StartsAt, &c.EndsAt, &c.AutoRenew, &c.ApprovedBy, &c.RenewedFromID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *contractRepo) Get(ctx context.Context, tenantID, id string) (*repository.Contract, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanContract,
		`SELECT `+contractSpec.columns+` FROM contracts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *contractRepo) Create(ctx context.Context, c *repository.Contract) error {
	const query = `
		INSERT INTO contracts (id, tenant_id, customer_id, deal_id, title, value_cents, currency, status,
			starts_at, ends_at, auto_renew, approved_by, renewed_from_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query, c.ID, c.TenantID, c.CustomerID, c.DealID, c.Title, c.ValueCents,
		c.Currency, c.Status, c.StartsAt, c.EndsAt, c.AutoRenew, c.ApprovedBy, c.RenewedFromID,
		c.CreatedAt, c.UpdatedAt)
	return mapErr(err)
}

func (r *contractRepo) Update(ctx context.Context, c *repository.Contract) error {
	const query = `
		UPDATE contracts SET customer_id = $3, deal_id = $4, title = $5, value_cents = $6, currency = $7,
			status = $8, starts_at = $9, ends_at = $10, auto_renew = $11, approved_by = $12,
			renewed_from_id = $13, updated_at = $14
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, c.TenantID, c.ID, c.CustomerID, c.DealID, c.Title, c.ValueCents,
		c.Currency, c.Status, c.StartsAt, c.EndsAt, c.AutoRenew, c.ApprovedBy, c.RenewedFromID, c.UpdatedAt)
}

func (r *contractRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM contracts WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *contractRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Contract], error) {
	w := tenantWhere(tenantID)
	w.eq("status", f.Status)
	w.eq("customer_id", f.CustomerID)
	w.search(f.Search, "title")
	return listPage(ctx, r.pool, contractSpec, w, f, scanContract)
}

func (r *contractRepo) ListByStatus(ctx context.Context, tenantID, status string) ([]repository.Contract, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contractSpec.columns+` FROM contracts WHERE tenant_id = $1 AND status = $2 ORDER BY ends_at, id`,
		tenantID, status)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanContract)
}

// ─── TicketRepository ───

type ticketRepo struct{ pool *pgxpool.Pool }

var ticketSpec = listSpec{
	table: "tickets",
	columns: `id, tenant_id, customer_id, title, description, category, priority, status, assignee_id,
		response_due_at, resolution_due_at, first_response_at, resolved_at, escalation_level, escalated_at,
		created_at, updated_at`,
	sortCols: map[string]string{
		"priority":          "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 ELSE 3 END",
		"created_at":        "created_at",
		"resolution_due_at": "resolution_due_at",
	},
}

func scanTicket(row pgx.Row) (repository.Ticket, error) {
	var t repository.Ticket
	err := row.Scan(&t.ID, &t.TenantID, &t.CustomerID, &t.Title, &t.Description, &t.Category, &t.Priority,
		&t.Status, &t.AssigneeID, &t.ResponseDueAt, &t.ResolutionDueAt, &t.FirstResponseAt, &t.ResolvedAt,
		&t.EscalationLevel, &t.EscalatedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *ticketRepo) Get(ctx context.Context, tenantID, id string) (*repository.Ticket, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanTicket,
		`SELECT `+ticketSpec.columns+` FROM tickets WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *ticketRepo) Create(ctx context.Context, t *repository.Ticket) error {
	const query = `
		INSERT INTO tickets (id, tenant_id, customer_id, title, description, category, priority, status,
			assignee_id, response_due_at, resolution_due_at, first_response_at, resolved_at, escalation_level,
			escalated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.pool.Exec(ctx, query, t.ID, t.TenantID, t.CustomerID, t.Title, t.Description, t.Category,
		t.Priority, t.Status, t.AssigneeID, t.ResponseDueAt, t.ResolutionDueAt, t.FirstResponseAt, t.ResolvedAt,
		t.EscalationLevel, t.EscalatedAt, t.CreatedAt, t.UpdatedAt)
	return mapErr(err)
}

func (r *ticketRepo) Update(ctx context.Context, t *repository.Ticket) error {
	const query = `
		UPDATE tickets SET customer_id = $3, title = $4, description = $5, category = $6, priority = $7,
			status = $8, assignee_id = $9, response_due_at = $10, resolution_due_at = $11,
			first_response_at = $12, resolved_at = $13, escalation_level = $14, escalated_at = $15,
			updated_at = $16
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, t.TenantID, t.ID, t.CustomerID, t.Title, t.Description, t.Category,
		t.Priority, t.Status, t.AssigneeID, t.ResponseDueAt, t.ResolutionDueAt, t.FirstResponseAt, t.ResolvedAt,
		t.EscalationLevel, t.EscalatedAt, t.UpdatedAt)
}

func (r *ticketRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM tickets WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *ticketRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Ticket], error) {
	w := tenantWhere(tenantID)
	w.eq("status", f.Status)
	w.eq("priority", f.Priority)
	w.eq("assignee_id", f.OwnerID)
	w.eq("customer_id", f.CustomerID)
	w.search(f.Search, "title", "description")
	return listPage(ctx, r.pool, ticketSpec, w, f, scanTicket)
}

func (r *ticketRepo) ListOpen(ctx context.Context, tenantID string) ([]repository.Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ticketSpec.columns+` FROM tickets
		 WHERE tenant_id = $1 AND status IN ('open', 'in_progress')
		 ORDER BY created_at, id`, tenantID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTicket)
}

func (r *ticketRepo) CountOpenByAssignee(ctx context.Context, tenantID string) (map[string]int, error) {
	const query = `
		SELECT assignee_id, COUNT(*) FROM tickets
		WHERE tenant_id = $1 AND assignee_id <> '' AND status IN ('open', 'in_progress')
		GROUP BY assignee_id
	`
	return countBy(ctx, r.pool, query, tenantID)
}

// ─── JobWorkRepository ───

type jobWorkRepo struct{ pool *pgxpool.Pool }

var jobWorkSpec = listSpec{
	table: "jobworks",
	columns: `id, tenant_id, customer_id, reference, description, status, quantity, unit_price_cents,
		total_cents, assignee_id, due_at, completed_at, created_at, updated_at`,
	sortCols: map[string]string{
		"due_at":     "due_at",
		"total":      "total_cents",
		"created_at": "created_at",
	},
}

func scanJobWork(row pgx.Row) (repository.JobWork, error) {
	var j repository.JobWork
	err := row.Scan(&j.ID, &j.TenantID, &j.CustomerID, &j.Reference, &j.Description, &j.Status, &j.Quantity,
		&j.UnitPriceCents, &j.TotalCents, &j.AssigneeID, &j.DueAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *jobWorkRepo) Get(ctx context.Context, tenantID, id string) (*repository.JobWork, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanJobWork,
		`SELECT `+jobWorkSpec.columns+` FROM jobworks WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *jobWorkRepo) Create(ctx context.Context, j *repository.JobWork) error {
	const query = `
		INSERT INTO jobworks (id, tenant_id, customer_id, reference, description, status, quantity,
			unit_price_cents, total_cents, assignee_id, due_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.pool.Exec(ctx, query, j.ID, j.TenantID, j.CustomerID, j.Reference, j.Description, j.Status,
		j.Quantity, j.UnitPriceCents, j.TotalCents, j.AssigneeID, j.DueAt, j.CompletedAt, j.CreatedAt, j.UpdatedAt)
	return mapErr(err)
}

func (r *jobWorkRepo) Update(ctx context.Context, j *repository.JobWork) error {
	const query = `
		UPDATE jobworks SET customer_id = $3, reference = $4, description = $5, status = $6, quantity = $7,
			unit_price_cents = $8, total_cents = $9, assignee_id = $10, due_at = $11, completed_at = $12,
			updated_at = $13
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, j.TenantID, j.ID, j.CustomerID, j.Reference, j.Description, j.Status,
		j.Quantity, j.UnitPriceCents, j.TotalCents, j.AssigneeID, j.DueAt, j.CompletedAt, j.UpdatedAt)
}

func (r *jobWorkRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM jobworks WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *jobWorkRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.JobWork], error) {
	w := tenantWhere(tenantID)
	w.eq("status", f.Status)
	w.eq("assignee_id", f.OwnerID)
	w.eq("customer_id", f.CustomerID)
	w.search(f.Search, "reference", "description")
	return listPage(ctx, r.pool, jobWorkSpec, w, f, scanJobWork)
}

// ─── RefDataRepository ───

type refDataRepo struct{ pool *pgxpool.Pool }

const refItemColumns = `id, tenant_id, category, key, label, sort_order, active, created_at, updated_at`

func scanRefItem(row pgx.Row) (repository.RefItem, error) {
	var i repository.RefItem
	err := row.Scan(&i.ID, &i.TenantID, &i.Category, &i.Key, &i.Label, &i.SortOrder, &i.Active, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (r *refDataRepo) List(ctx context.Context, tenantID, category string, onlyActive bool) ([]repository.RefItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+refItemColumns+` FROM ref_items
		 WHERE tenant_id = $1 AND category = $2 AND (active OR NOT $3)
		 ORDER BY sort_order, label`, tenantID, category, onlyActive)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRefItem)
}

func (r *refDataRepo) Get(ctx context.Context, tenantID, category, key string) (*repository.RefItem, error) {
	if !validID(tenantID) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanRefItem,
		`SELECT `+refItemColumns+` FROM ref_items WHERE tenant_id = $1 AND category = $2 AND key = $3`,
		tenantID, category, key)
}

func (r *refDataRepo) Create(ctx context.Context, i *repository.RefItem) error {
	const query = `
		INSERT INTO ref_items (id, tenant_id, category, key, label, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query, i.ID, i.TenantID, i.Category, i.Key, i.Label, i.SortOrder, i.Active,
		i.CreatedAt, i.UpdatedAt)
	return mapErr(err)
}

func (r *refDataRepo) Update(ctx context.Context, i *repository.RefItem) error {
	const query = `
		UPDATE ref_items SET category = $3, key = $4, label = $5, sort_order = $6, active = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, i.TenantID, i.ID, i.Category, i.Key, i.Label, i.SortOrder, i.Active, i.UpdatedAt)
}

func (r *refDataRepo) Delete(ctx context.Context, tenantID, category, key string) error {
	if !validID(tenantID) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool,
		`DELETE FROM ref_items WHERE tenant_id = $1 AND category = $2 AND key = $3`, tenantID, category, key)
}

func (r *refDataRepo) Categories(ctx context.Context, tenantID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT category FROM ref_items WHERE tenant_id = $1 ORDER BY category`, tenantID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
