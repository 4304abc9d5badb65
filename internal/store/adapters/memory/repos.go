package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// ─── Tenants ───

type tenantRepo struct {
	t    *table[repository.Tenant]
	conn *Connection
}

func (r *tenantRepo) GetByID(_ context.Context, id string) (*repository.Tenant, error) {
	return r.t.get("", id)
}

func (r *tenantRepo) GetBySlug(_ context.Context, slug string) (*repository.Tenant, error) {
	return r.t.find("", func(t *repository.Tenant) bool { return t.Slug == slug })
}

func (r *tenantRepo) List(_ context.Context) ([]repository.Tenant, error) {
	out := r.t.scan("", nil)
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *tenantRepo) Create(_ context.Context, t *repository.Tenant) error { return r.t.insert(t) }
func (r *tenantRepo) Update(_ context.Context, t *repository.Tenant) error { return r.t.update(t) }

func (r *tenantRepo) Delete(_ context.Context, id string) error {
	if err := r.t.remove("", id); err != nil {
		return err
	}
	r.conn.purge(id)
	return nil
}

// ─── Users ───

type userRepo struct{ t *table[repository.User] }

func (r *userRepo) Get(_ context.Context, tenantID, id string) (*repository.User, error) {
	return r.t.get(tenantID, id)
}

func (r *userRepo) GetByEmail(_ context.Context, tenantID, email string) (*repository.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.t.find(tenantID, func(u *repository.User) bool { return strings.ToLower(u.Email) == email })
}

func (r *userRepo) Create(_ context.Context, u *repository.User) error { return r.t.insert(u) }
func (r *userRepo) Update(_ context.Context, u *repository.User) error { return r.t.update(u) }
func (r *userRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *userRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.User], error) {
	return r.t.list(tenantID, f, repository.UserSortable,
		func(u *repository.User, f repository.ListFilter) bool {
			switch f.Status {
			case "active":
				if !u.Active {
					return false
				}
			case "inactive":
				if u.Active {
					return false
				}
			}
			return contains(f.Search, u.Email, u.Name)
		},
		func(a, b *repository.User, field string) int {
			switch field {
			case "email":
				return strings.Compare(a.Email, b.Email)
			case "name":
				return strings.Compare(a.Name, b.Name)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

// ─── Audit ───

type auditRepo struct{ t *table[repository.AuditEntry] }

func (r *auditRepo) Append(_ context.Context, e *repository.AuditEntry) error { return r.t.insert(e) }

func (r *auditRepo) List(_ context.Context, tenantID string, f repository.AuditFilter) (repository.Page[repository.AuditEntry], error) {
	lf := repository.ListFilter{Page: f.Page, PageSize: f.PageSize}.Normalize()
	items := r.t.scan(tenantID, func(e *repository.AuditEntry) bool {
		return eq(f.Resource, e.Resource) && eq(f.ResourceID, e.ResourceID) && eq(f.ActorID, e.ActorID)
	})
	sort.Slice(items, func(i, j int) bool {
		if c := items[i].CreatedAt.Compare(items[j].CreatedAt); c != 0 {
			return c > 0
		}
		return items[i].ID > items[j].ID
	})
	return paginate(items, lf.Page, lf.PageSize, lf.Offset()), nil
}

// ─── Customers ───

type customerRepo struct{ t *table[repository.Customer] }

func (r *customerRepo) Get(_ context.Context, tenantID, id string) (*repository.Customer, error) {
	return r.t.get(tenantID, id)
}
func (r *customerRepo) Create(_ context.Context, c *repository.Customer) error { return r.t.insert(c) }
func (r *customerRepo) Update(_ context.Context, c *repository.Customer) error { return r.t.update(c) }
func (r *customerRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *customerRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Customer], error) {
	return r.t.list(tenantID, f, repository.CustomerSortable,
		func(c *repository.Customer, f repository.ListFilter) bool {
			return eq(f.Status, c.Status) && eq(f.OwnerID, c.OwnerID) &&
				contains(f.Search, c.Name, c.Email, c.Company)
		},
		func(a, b *repository.Customer, field string) int {
			switch field {
			case "name":
				return strings.Compare(a.Name, b.Name)
			case "updated_at":
				return cmpTime(a.UpdatedAt, b.UpdatedAt)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

// ─── Deals ───

type dealRepo struct{ t *table[repository.Deal] }

func (r *dealRepo) Get(_ context.Context, tenantID, id string) (*repository.Deal, error) {
	return r.t.get(tenantID, id)
}
func (r *dealRepo) Create(_ context.Context, d *repository.Deal) error { return r.t.insert(d) }
func (r *dealRepo) Update(_ context.Context, d *repository.Deal) error { return r.t.update(d) }
func (r *dealRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *dealRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Deal], error) {
	return r.t.list(tenantID, f, repository.DealSortable,
		func(d *repository.Deal, f repository.ListFilter) bool {
			return eq(f.Status, d.Stage) && eq(f.OwnerID, d.OwnerID) &&
				eq(f.CustomerID, d.CustomerID) && contains(f.Search, d.Title)
		},
		func(a, b *repository.Deal, field string) int {
			switch field {
			case "value":
				return cmpInt64(a.ValueCents, b.ValueCents)
			case "score":
				return cmpInt64(int64(a.Score), int64(b.Score))
			case "expected_close_at":
				return cmpTimePtr(a.ExpectedCloseAt, b.ExpectedCloseAt)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

func (r *dealRepo) CountOpenByOwner(_ context.Context, tenantID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, d := range r.t.scan(tenantID, nil) {
		if d.OwnerID != "" && !repository.IsClosedStage(d.Stage) {
			counts[d.OwnerID]++
		}
	}
	return counts, nil
}

var stageOrder = []string{
	repository.StageLead, repository.StageQualified, repository.StageProposal,
	repository.StageNegotiation, repository.StageClosedWon, repository.StageClosedLost,
}

func (r *dealRepo) SumByStage(_ context.Context, tenantID string) ([]repository.StageAggregate, error) {
	agg := make(map[string]*repository.StageAggregate)
	for _, d := range r.t.scan(tenantID, nil) {
		a, ok := agg[d.Stage]
		if !ok {
			a = &repository.StageAggregate{Stage: d.Stage}
			agg[d.Stage] = a
		}
		a.Count++
		a.ValueCents += d.ValueCents
		a.WeightedCents += d.ValueCents * int64(d.Probability) / 100
	}
	out := make([]repository.StageAggregate, 0, len(agg))
	for _, s := range stageOrder {
		if a, ok := agg[s]; ok {
			out = append(out, *a)
		}
	}
	return out, nil
}

// ─── Opportunities ───

type opportunityRepo struct{ t *table[repository.Opportunity] }

func (r *opportunityRepo) Get(_ context.Context, tenantID, id string) (*repository.Opportunity, error) {
	return r.t.get(tenantID, id)
}
func (r *opportunityRepo) Create(_ context.Context, o *repository.Opportunity) error {
	return r.t.insert(o)
}
func (r *opportunityRepo) Update(_ context.Context, o *repository.Opportunity) error {
	return r.t.update(o)
}
func (r *opportunityRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *opportunityRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Opportunity], error) {
	return r.t.list(tenantID, f, repository.OpportunitySortable,
		func(o *repository.Opportunity, f repository.ListFilter) bool {
			return eq(f.Status, o.Status) && eq(f.OwnerID, o.OwnerID) &&
				eq(f.CustomerID, o.CustomerID) && contains(f.Search, o.Title)
		},
		func(a, b *repository.Opportunity, field string) int {
			switch field {
			case "score":
				return cmpInt64(int64(a.Score), int64(b.Score))
			case "estimated":
				return cmpInt64(a.EstimatedCents, b.EstimatedCents)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

// ─── Contracts ───

type contractRepo struct{ t *table[repository.Contract] }

func (r *contractRepo) Get(_ context.Context, tenantID, id string) (*repository.Contract, error) {
	return r.t.get(tenantID, id)
}
func (r *contractRepo) Create(_ context.Context, c *repository.Contract) error { return r.t.insert(c) }
func (r *contractRepo) Update(_ context.Context, c *repository.Contract) error { return r.t.update(c) }
func (r *contractRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *contractRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Contract], error) {
	return r.t.list(tenantID, f, repository.ContractSortable,
		func(c *repository.Contract, f repository.ListFilter) bool {
			return eq(f.Status, c.Status) && eq(f.CustomerID, c.CustomerID) && contains(f.Search, c.Title)
		},
		func(a, b *repository.Contract, field string) int {
			switch field {
			case "value":
				return cmpInt64(a.ValueCents, b.ValueCents)
			case "ends_at":
				return cmpTime(a.EndsAt, b.EndsAt)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

func (r *contractRepo) ListByStatus(_ context.Context, tenantID, status string) ([]repository.Contract, error) {
	out := r.t.scan(tenantID, func(c *repository.Contract) bool { return c.Status == status })
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].EndsAt.Compare(out[j].EndsAt); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ─── Tickets ───

type ticketRepo struct{ t *table[repository.Ticket] }

func (r *ticketRepo) Get(_ context.Context, tenantID, id string) (*repository.Ticket, error) {
	return r.t.get(tenantID, id)
}
func (r *ticketRepo) Create(_ context.Context, t *repository.Ticket) error { return r.t.insert(t) }
func (r *ticketRepo) Update(_ context.Context, t *repository.Ticket) error { return r.t.update(t) }
func (r *ticketRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *ticketRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.Ticket], error) {
	return r.t.list(tenantID, f, repository.TicketSortable,
		func(t *repository.Ticket, f repository.ListFilter) bool {
			return eq(f.Status, t.Status) && eq(f.Priority, t.Priority) &&
				eq(f.OwnerID, t.AssigneeID) && eq(f.CustomerID, t.CustomerID) &&
				contains(f.Search, t.Title, t.Description)
		},
		func(a, b *repository.Ticket, field string) int {
			switch field {
			case "priority":
				return cmpInt64(int64(repository.PriorityRank(a.Priority)), int64(repository.PriorityRank(b.Priority)))
			case "resolution_due_at":
				return cmpTime(a.ResolutionDueAt, b.ResolutionDueAt)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

func (r *ticketRepo) ListOpen(_ context.Context, tenantID string) ([]repository.Ticket, error) {
	out := r.t.scan(tenantID, func(t *repository.Ticket) bool { return t.IsOpen() })
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].CreatedAt.Compare(out[j].CreatedAt); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ticketRepo) CountOpenByAssignee(_ context.Context, tenantID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, t := range r.t.scan(tenantID, nil) {
		if t.AssigneeID != "" && t.IsOpen() {
			counts[t.AssigneeID]++
		}
	}
	return counts, nil
}

// ─── JobWorks ───

type jobWorkRepo struct{ t *table[repository.JobWork] }

func (r *jobWorkRepo) Get(_ context.Context, tenantID, id string) (*repository.JobWork, error) {
	return r.t.get(tenantID, id)
}
func (r *jobWorkRepo) Create(_ context.Context, j *repository.JobWork) error { return r.t.insert(j) }
func (r *jobWorkRepo) Update(_ context.Context, j *repository.JobWork) error { return r.t.update(j) }
func (r *jobWorkRepo) Delete(_ context.Context, tenantID, id string) error {
	return r.t.remove(tenantID, id)
}

func (r *jobWorkRepo) List(_ context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.JobWork], error) {
	return r.t.list(tenantID, f, repository.JobWorkSortable,
		func(j *repository.JobWork, f repository.ListFilter) bool {
			return eq(f.Status, j.Status) && eq(f.OwnerID, j.AssigneeID) &&
				eq(f.CustomerID, j.CustomerID) && contains(f.Search, j.Reference, j.Description)
		},
		func(a, b *repository.JobWork, field string) int {
			switch field {
			case "due_at":
				return cmpTimePtr(a.DueAt, b.DueAt)
			case "total":
				return cmpInt64(a.TotalCents, b.TotalCents)
			}
			return cmpTime(a.CreatedAt, b.CreatedAt)
		}), nil
}

// ─── RefData ───

type refDataRepo struct{ t *table[repository.RefItem] }

func (r *refDataRepo) List(_ context.Context, tenantID, category string, onlyActive bool) ([]repository.RefItem, error) {
	out := r.t.scan(tenantID, func(i *repository.RefItem) bool {
		return i.Category == category && (!onlyActive || i.Active)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

func (r *refDataRepo) Get(_ context.Context, tenantID, category, key string) (*repository.RefItem, error) {
	return r.t.find(tenantID, func(i *repository.RefItem) bool { return i.Category == category && i.Key == key })
}

func (r *refDataRepo) Create(_ context.Context, item *repository.RefItem) error {
	return r.t.insert(item)
}
func (r *refDataRepo) Update(_ context.Context, item *repository.RefItem) error {
	return r.t.update(item)
}

func (r *refDataRepo) Delete(ctx context.Context, tenantID, category, key string) error {
	item, err := r.Get(ctx, tenantID, category, key)
	if err != nil {
		return err
	}
	return r.t.remove(tenantID, item.ID)
}

func (r *refDataRepo) Categories(_ context.Context, tenantID string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, i := range r.t.scan(tenantID, nil) {
		seen[i.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
