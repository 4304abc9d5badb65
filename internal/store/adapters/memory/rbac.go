package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

// rbacRepo guarda roles por tenant|name y asignaciones por tenant|userID.
type rbacRepo struct {
	mu        sync.RWMutex
	perms     map[string]repository.Permission
	roles     map[string]repository.Role
	userRoles map[string]map[string]struct{}
	users     *table[repository.User]
}

func newRBACRepo(users *table[repository.User]) *rbacRepo {
	return &rbacRepo{
		perms:     make(map[string]repository.Permission),
		roles:     make(map[string]repository.Role),
		userRoles: make(map[string]map[string]struct{}),
		users:     users,
	}
}

func rk(tenantID, name string) string { return tenantID + "|" + name }

func cloneRole(r repository.Role) repository.Role {
	r.Permissions = slices.Clone(r.Permissions)
	if r.Permissions == nil {
		r.Permissions = []string{}
	}
	return r
}

func (r *rbacRepo) ListPermissions(_ context.Context) ([]repository.Permission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Permission, 0, len(r.perms))
	for _, p := range r.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *rbacRepo) UpsertPermission(_ context.Context, p repository.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.perms[p.Name] = p
	return nil
}

func (r *rbacRepo) ListRoles(_ context.Context, tenantID string) ([]repository.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Role, 0)
	for _, role := range r.roles {
		if role.TenantID == tenantID {
			out = append(out, cloneRole(role))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *rbacRepo) GetRole(_ context.Context, tenantID, name string) (*repository.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[rk(tenantID, name)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneRole(role)
	return &c, nil
}

func (r *rbacRepo) CreateRole(_ context.Context, tenantID string, in repository.RoleInput) (*repository.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rk(tenantID, in.Name)
	if _, ok := r.roles[key]; ok {
		return nil, repository.ErrConflict
	}
	now := time.Now().UTC()
	role := repository.Role{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Name:        in.Name,
		Description: in.Description,
		System:      in.System,
		Permissions: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.roles[key] = role
	c := cloneRole(role)
	return &c, nil
}

func (r *rbacRepo) UpdateRole(_ context.Context, tenantID, name string, in repository.RoleInput) (*repository.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rk(tenantID, name)
	role, ok := r.roles[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != "" && in.Name != name {
		if _, taken := r.roles[rk(tenantID, in.Name)]; taken {
			return nil, repository.ErrConflict
		}
		delete(r.roles, key)
		for ukey, set := range r.userRoles {
			if _, has := set[name]; has && tenantOf(ukey) == tenantID {
				delete(set, name)
				set[in.Name] = struct{}{}
			}
		}
		role.Name = in.Name
		key = rk(tenantID, in.Name)
	}
	role.Description = in.Description
	role.UpdatedAt = time.Now().UTC()
	r.roles[key] = role
	c := cloneRole(role)
	return &c, nil
}

func (r *rbacRepo) DeleteRole(_ context.Context, tenantID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rk(tenantID, name)
	if _, ok := r.roles[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.roles, key)
	for ukey, set := range r.userRoles {
		if tenantOf(ukey) == tenantID {
			delete(set, name)
		}
	}
	return nil
}

func (r *rbacRepo) SetRolePermissions(_ context.Context, tenantID, name string, perms []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := rk(tenantID, name)
	role, ok := r.roles[key]
	if !ok {
		return repository.ErrNotFound
	}
	ps := slices.Clone(perms)
	sort.Strings(ps)
	role.Permissions = slices.Compact(ps)
	role.UpdatedAt = time.Now().UTC()
	r.roles[key] = role
	return nil
}

func (r *rbacRepo) GetRoleUsersCount(_ context.Context, tenantID, name string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for ukey, set := range r.userRoles {
		if _, has := set[name]; has && tenantOf(ukey) == tenantID {
			n++
		}
	}
	return n, nil
}

func (r *rbacRepo) AssignRole(_ context.Context, tenantID, userID, role string) error {
	if _, err := r.users.get(tenantID, userID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[rk(tenantID, role)]; !ok {
		return repository.ErrNotFound
	}
	key := rk(tenantID, userID)
	set, ok := r.userRoles[key]
	if !ok {
		set = make(map[string]struct{})
		r.userRoles[key] = set
	}
	set[role] = struct{}{}
	return nil
}

func (r *rbacRepo) RemoveRole(_ context.Context, tenantID, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.userRoles[rk(tenantID, userID)]
	if _, has := set[role]; !has {
		return repository.ErrNotFound
	}
	delete(set, role)
	return nil
}

func (r *rbacRepo) GetUserRoles(_ context.Context, tenantID, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userRolesLocked(tenantID, userID), nil
}

func (r *rbacRepo) userRolesLocked(tenantID, userID string) []string {
	out := make([]string, 0)
	for name := range r.userRoles[rk(tenantID, userID)] {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *rbacRepo) GetUserPermissions(_ context.Context, tenantID, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userPermsLocked(tenantID, userID), nil
}

func (r *rbacRepo) userPermsLocked(tenantID, userID string) []string {
	out := make([]string, 0)
	for _, name := range r.userRolesLocked(tenantID, userID) {
		out = append(out, r.roles[rk(tenantID, name)].Permissions...)
	}
	sort.Strings(out)
	return slices.Compact(out)
}

func (r *rbacRepo) ListUsersWithPermission(_ context.Context, tenantID string, anyOf []string) ([]string, error) {
	active := r.users.scan(tenantID, func(u *repository.User) bool { return u.Active })

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0)
	for _, u := range active {
		for _, p := range r.userPermsLocked(tenantID, u.ID) {
			if slices.Contains(anyOf, p) {
				out = append(out, u.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// purge borra roles y asignaciones del tenant.
func (r *rbacRepo) purge(tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, role := range r.roles {
		if role.TenantID == tenantID {
			delete(r.roles, key)
		}
	}
	for key := range r.userRoles {
		if tenantOf(key) == tenantID {
			delete(r.userRoles, key)
		}
	}
}

// dropUser borra las asignaciones de un usuario eliminado.
func (r *rbacRepo) dropUser(tenantID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.userRoles, rk(tenantID, userID))
}

func tenantOf(key string) string {
	tenantID, _, _ := strings.Cut(key, "|")
	return tenantID
}
