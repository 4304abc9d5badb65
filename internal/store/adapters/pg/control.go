package pg

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// ─── TenantRepository ───

type tenantRepo struct{ pool *pgxpool.Pool }

const tenantColumns = `id, slug, name, plan, status, created_at, updated_at`

func scanTenant(row pgx.Row) (repository.Tenant, error) {
	var t repository.Tenant
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Plan, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*repository.Tenant, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanTenant, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*repository.Tenant, error) {
	return getOne(ctx, r.pool, scanTenant, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
}

func (r *tenantRepo) List(ctx context.Context) ([]repository.Tenant, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTenant)
}

func (r *tenantRepo) Create(ctx context.Context, t *repository.Tenant) error {
	const query = `
		INSERT INTO tenants (id, slug, name, plan, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query, t.ID, t.Slug, t.Name, t.Plan, t.Status, t.CreatedAt, t.UpdatedAt)
	return mapErr(err)
}

func (r *tenantRepo) Update(ctx context.Context, t *repository.Tenant) error {
	const query = `
		UPDATE tenants SET slug = $2, name = $3, plan = $4, status = $5, updated_at = $6
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, t.ID, t.Slug, t.Name, t.Plan, t.Status, t.UpdatedAt)
}

func (r *tenantRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM tenants WHERE id = $1`, id)
}

// ─── UserRepository ───

type userRepo struct{ pool *pgxpool.Pool }

var userSpec = listSpec{
	table:   "users",
	columns: `id, tenant_id, email, name, password_hash, active, super_admin, created_at, updated_at`,
	sortCols: map[string]string{
		"email":      "email",
		"name":       "name",
		"created_at": "created_at",
	},
}

func scanUser(row pgx.Row) (repository.User, error) {
	var u repository.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.Name, &u.PasswordHash, &u.Active, &u.SuperAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *userRepo) Get(ctx context.Context, tenantID, id string) (*repository.User, error) {
	if !validID(tenantID, id) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanUser,
		`SELECT `+userSpec.columns+` FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, tenantID, email string) (*repository.User, error) {
	if !validID(tenantID) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanUser,
		`SELECT `+userSpec.columns+` FROM users WHERE tenant_id = $1 AND lower(email) = lower($2)`,
		tenantID, strings.TrimSpace(email))
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	const query = `
		INSERT INTO users (id, tenant_id, email, name, password_hash, active, super_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query, u.ID, u.TenantID, u.Email, u.Name, u.PasswordHash, u.Active, u.SuperAdmin, u.CreatedAt, u.UpdatedAt)
	return mapErr(err)
}

func (r *userRepo) Update(ctx context.Context, u *repository.User) error {
	const query = `
		UPDATE users SET email = $3, name = $4, password_hash = $5, active = $6, super_admin = $7, updated_at = $8
		WHERE tenant_id = $1 AND id = $2
	`
	return execOne(ctx, r.pool, query, u.TenantID, u.ID, u.Email, u.Name, u.PasswordHash, u.Active, u.SuperAdmin, u.UpdatedAt)
}

func (r *userRepo) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(tenantID, id) {
		return repository.ErrNotFound
	}
	return execOne(ctx, r.pool, `DELETE FROM users WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

func (r *userRepo) List(ctx context.Context, tenantID string, f repository.ListFilter) (repository.Page[repository.User], error) {
	w := tenantWhere(tenantID)
	switch f.Status {
	case "active":
		w.add("active = $%d", true)
	case "inactive":
		w.add("active = $%d", false)
	}
	w.search(f.Search, "email", "name")
	return listPage(ctx, r.pool, userSpec, w, f, scanUser)
}

// ─── AuditRepository ───

type auditRepo struct{ pool *pgxpool.Pool }

var auditSpec = listSpec{
	table:    "audit_log",
	columns:  `id, tenant_id, actor_id, action, resource, resource_id, changes, ip, created_at`,
	sortCols: map[string]string{"created_at": "created_at"},
}

func scanAudit(row pgx.Row) (repository.AuditEntry, error) {
	var e repository.AuditEntry
	err := row.Scan(&e.ID, &e.TenantID, &e.ActorID, &e.Action, &e.Resource, &e.ResourceID, &e.Changes, &e.IP, &e.CreatedAt)
	return e, err
}

func (r *auditRepo) Append(ctx context.Context, e *repository.AuditEntry) error {
	const query = `
		INSERT INTO audit_log (id, tenant_id, actor_id, action, resource, resource_id, changes, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query, e.ID, e.TenantID, e.ActorID, e.Action, e.Resource, e.ResourceID, e.Changes, e.IP, e.CreatedAt)
	return mapErr(err)
}

func (r *auditRepo) List(ctx context.Context, tenantID string, f repository.AuditFilter) (repository.Page[repository.AuditEntry], error) {
	w := tenantWhere(tenantID)
	w.eq("resource", f.Resource)
	w.eq("resource_id", f.ResourceID)
	w.eq("actor_id", f.ActorID)
	lf := repository.ListFilter{Page: f.Page, PageSize: f.PageSize, SortBy: "created_at", SortDesc: true}
	return listPage(ctx, r.pool, auditSpec, w, lf, scanAudit)
}

// ─── RBACRepository ───

type rbacRepo struct{ pool *pgxpool.Pool }

func (r *rbacRepo) ListPermissions(ctx context.Context) ([]repository.Permission, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, resource, action, description FROM permissions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.Permission, error) {
		var p repository.Permission
		err := row.Scan(&p.Name, &p.Resource, &p.Action, &p.Description)
		return p, err
	})
}

func (r *rbacRepo) UpsertPermission(ctx context.Context, p repository.Permission) error {
	const query = `
		INSERT INTO permissions (name, resource, action, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET resource = $2, action = $3, description = $4
	`
	_, err := r.pool.Exec(ctx, query, p.Name, p.Resource, p.Action, p.Description)
	return err
}

// roleSelect agrega los permisos del rol en un array ordenado.
const roleSelect = `
	SELECT r.id, r.tenant_id, r.name, r.description, r.system, r.created_at, r.updated_at,
		COALESCE(ARRAY(SELECT rp.permission FROM role_permissions rp WHERE rp.role_id = r.id ORDER BY rp.permission), '{}')
	FROM roles r
`

func scanRole(row pgx.Row) (repository.Role, error) {
	var role repository.Role
	err := row.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.System,
		&role.CreatedAt, &role.UpdatedAt, &role.Permissions)
	return role, err
}

func (r *rbacRepo) ListRoles(ctx context.Context, tenantID string) ([]repository.Role, error) {
	if !validID(tenantID) {
		return []repository.Role{}, nil
	}
	rows, err := r.pool.Query(ctx, roleSelect+` WHERE r.tenant_id = $1 ORDER BY r.name`, tenantID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanRole)
}

func (r *rbacRepo) GetRole(ctx context.Context, tenantID, name string) (*repository.Role, error) {
	if !validID(tenantID) {
		return nil, repository.ErrNotFound
	}
	return getOne(ctx, r.pool, scanRole, roleSelect+` WHERE r.tenant_id = $1 AND r.name = $2`, tenantID, name)
}

func (r *rbacRepo) CreateRole(ctx context.Context, tenantID string, input repository.RoleInput) (*repository.Role, error) {
	const query = `
		INSERT INTO roles (tenant_id, name, description, system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	role := &repository.Role{
		TenantID:    tenantID,
		Name:        input.Name,
		Description: input.Description,
		System:      input.System,
		Permissions: []string{},
	}
	err := r.pool.QueryRow(ctx, query, tenantID, input.Name, input.Description, input.System).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return role, nil
}

func (r *rbacRepo) UpdateRole(ctx context.Context, tenantID, name string, input repository.RoleInput) (*repository.Role, error) {
	newName := input.Name
	if newName == "" {
		newName = name
	}
	const query = `
		UPDATE roles SET name = $3, description = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND name = $2
	`
	if err := execOne(ctx, r.pool, query, tenantID, name, newName, input.Description); err != nil {
		return nil, err
	}
	return r.GetRole(ctx, tenantID, newName)
}

func (r *rbacRepo) DeleteRole(ctx context.Context, tenantID, name string) error {
	// role_permissions y user_roles caen por ON DELETE CASCADE.
	return execOne(ctx, r.pool, `DELETE FROM roles WHERE tenant_id = $1 AND name = $2`, tenantID, name)
}

func (r *rbacRepo) SetRolePermissions(ctx context.Context, tenantID, name string, perms []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var roleID string
	err = tx.QueryRow(ctx, `SELECT id FROM roles WHERE tenant_id = $1 AND name = $2 FOR UPDATE`, tenantID, name).Scan(&roleID)
	if err != nil {
		return mapErr(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
		return err
	}
	if len(perms) > 0 {
		const ins = `
			INSERT INTO role_permissions (role_id, permission)
			SELECT $1, unnest($2::text[])
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, ins, roleID, perms); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `UPDATE roles SET updated_at = NOW() WHERE id = $1`, roleID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *rbacRepo) GetRoleUsersCount(ctx context.Context, tenantID, name string) (int, error) {
	const query = `
		SELECT COUNT(*) FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE r.tenant_id = $1 AND r.name = $2
	`
	var count int
	err := r.pool.QueryRow(ctx, query, tenantID, name).Scan(&count)
	return count, err
}

func (r *rbacRepo) AssignRole(ctx context.Context, tenantID, userID, role string) error {
	if !validID(tenantID, userID) {
		return repository.ErrNotFound
	}
	// Usuario y rol deben ser del mismo tenant; si no, no se inserta nada.
	const query = `
		INSERT INTO user_roles (user_id, role_id)
		SELECT u.id, r.id FROM users u, roles r
		WHERE u.tenant_id = $1 AND u.id = $2 AND r.tenant_id = $1 AND r.name = $3
		ON CONFLICT DO NOTHING
		RETURNING user_id
	`
	var uid string
	err := r.pool.QueryRow(ctx, query, tenantID, userID, role).Scan(&uid)
	if err == pgx.ErrNoRows {
		// Puede ser ON CONFLICT (ya asignado) o usuario/rol inexistente.
		roles, gerr := r.GetUserRoles(ctx, tenantID, userID)
		if gerr != nil {
			return gerr
		}
		for _, name := range roles {
			if name == role {
				return nil
			}
		}
		return repository.ErrNotFound
	}
	return mapErr(err)
}

func (r *rbacRepo) RemoveRole(ctx context.Context, tenantID, userID, role string) error {
	if !validID(tenantID, userID) {
		return repository.ErrNotFound
	}
	const query = `
		DELETE FROM user_roles ur USING roles r
		WHERE ur.role_id = r.id AND r.tenant_id = $1 AND ur.user_id = $2 AND r.name = $3
	`
	return execOne(ctx, r.pool, query, tenantID, userID, role)
}

func (r *rbacRepo) GetUserRoles(ctx context.Context, tenantID, userID string) ([]string, error) {
	if !validID(tenantID, userID) {
		return []string{}, nil
	}
	const query = `
		SELECT r.name FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE r.tenant_id = $1 AND ur.user_id = $2
		ORDER BY r.name
	`
	rows, err := r.pool.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *rbacRepo) GetUserPermissions(ctx context.Context, tenantID, userID string) ([]string, error) {
	if !validID(tenantID, userID) {
		return []string{}, nil
	}
	const query = `
		SELECT DISTINCT rp.permission
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		JOIN role_permissions rp ON rp.role_id = r.id
		WHERE r.tenant_id = $1 AND ur.user_id = $2
		ORDER BY rp.permission
	`
	rows, err := r.pool.Query(ctx, query, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *rbacRepo) ListUsersWithPermission(ctx context.Context, tenantID string, anyOf []string) ([]string, error) {
	if !validID(tenantID) {
		return []string{}, nil
	}
	const query = `
		SELECT DISTINCT u.id::text
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		JOIN roles r ON r.id = ur.role_id AND r.tenant_id = u.tenant_id
		JOIN role_permissions rp ON rp.role_id = r.id
		WHERE u.tenant_id = $1 AND u.active AND rp.permission = ANY($2)
		ORDER BY 1
	`
	rows, err := r.pool.Query(ctx, query, tenantID, anyOf)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
