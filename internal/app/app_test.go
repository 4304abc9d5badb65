package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/config"
	"github.com/razorzibra-dot/trialram-sub001/internal/security/password"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/adapters/memory"
)

type harness struct {
	t *testing.T
	a *App
}

func newHarness(t *testing.T, mutate ...func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Bootstrap.TenantSlug = "acme"
	cfg.Bootstrap.AdminEmail = "owner@acme.io"
	cfg.Bootstrap.AdminPassword = "s3cret-pass"
	for _, m := range mutate {
		m(cfg)
	}

	ctx := context.Background()
	a, err := New(ctx, cfg, "test", Deps{
		Store:    store.NewManagerWithConnection(memory.New(), time.Minute),
		Registry: prometheus.NewRegistry(),
		Password: password.Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	res, err := a.Migrate(ctx)
	require.NoError(t, err)
	require.Empty(t, res.Applied)

	_, err = a.Bootstrap(ctx)
	require.NoError(t, err)
	return &harness{t: t, a: a}
}

type req struct {
	method, path, token string
	headers             map[string]string
	body                any
}

func (h *harness) do(r req) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if r.body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(r.body))
	}
	hr := httptest.NewRequest(r.method, r.path, &buf)
	hr.RemoteAddr = "10.0.0.1:4242"
	if r.body != nil {
		hr.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		hr.Header.Set("Authorization", "Bearer "+r.token)
	}
	for k, v := range r.headers {
		hr.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.a.Handler.ServeHTTP(rec, hr)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func (h *harness) login(tenant, email, pass string) string {
	h.t.Helper()
	rec, body := h.do(req{method: http.MethodPost, path: "/v1/auth/login", body: map[string]string{
		"tenant": tenant, "email": email, "password": pass,
	}})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := body["access_token"].(string)
	require.NotEmpty(h.t, tok)
	return tok
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(req{method: http.MethodGet, path: "/healthz"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, body = h.do(req{method: http.MethodGet, path: "/readyz"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ready", body["status"])

	rec, _ = h.do(req{method: http.MethodGet, path: "/metrics"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")

	rec, body = h.do(req{method: http.MethodGet, path: "/nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NotEmpty(t, body["code"])
}

func TestLoginAndMe(t *testing.T) {
	h := newHarness(t)

	rec, body := h.do(req{method: http.MethodPost, path: "/v1/auth/login", body: map[string]string{
		"tenant": "acme", "email": "owner@acme.io", "password": "wrong-pass",
	}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "INVALID_CREDENTIALS", body["code"])

	tok := h.login("acme", "owner@acme.io", "s3cret-pass")

	rec, body = h.do(req{method: http.MethodGet, path: "/v1/auth/me", token: tok})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tenant := body["tenant"].(map[string]any)
	require.Equal(t, "acme", tenant["slug"])
	require.Equal(t, []any{"admin"}, body["roles"])

	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/auth/me", token: "garbage"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerLifecycle(t *testing.T) {
	h := newHarness(t)
	tok := h.login("acme", "owner@acme.io", "s3cret-pass")

	rec, _ := h.do(req{method: http.MethodGet, path: "/v1/customers"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := h.do(req{method: http.MethodPost, path: "/v1/customers", token: tok, body: map[string]string{
		"name": "Wayne Enterprises", "email": "bruce@wayne.io", "company": "Wayne",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)
	require.Equal(t, "/v1/customers/"+id, rec.Header().Get("Location"))

	rec, body = h.do(req{method: http.MethodGet, path: "/v1/customers/" + id, token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Wayne Enterprises", body["name"])

	rec, body = h.do(req{method: http.MethodPatch, path: "/v1/customers/" + id, token: tok, body: map[string]string{"phone": "555-0100"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "555-0100", body["phone"])

	rec, body = h.do(req{method: http.MethodGet, path: "/v1/customers?q=wayne", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["total"])

	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/customers/not-a-uuid", token: tok})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = h.do(req{method: http.MethodDelete, path: "/v1/customers/" + id, token: tok})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/customers/" + id, token: tok})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = h.do(req{method: http.MethodGet, path: "/v1/audit?resource=customers", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, body["total"])
}

func TestPermissionsAndTenantIsolation(t *testing.T) {
	h := newHarness(t)
	root := h.login("acme", "owner@acme.io", "s3cret-pass")

	rec, _ := h.do(req{method: http.MethodPost, path: "/v1/users", token: root, body: map[string]any{
		"email": "viewer@acme.io", "name": "Vic", "password": "viewer-pass", "roles": []string{"viewer"},
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	viewer := h.login("acme", "viewer@acme.io", "viewer-pass")

	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/customers", token: viewer})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := h.do(req{method: http.MethodPost, path: "/v1/customers", token: viewer, body: map[string]string{
		"name": "Nope", "email": "nope@nope.io",
	}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, body["detail"], "customers:create")

	// sólo super admins administran tenants
	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/admin/tenants", token: viewer})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = h.do(req{method: http.MethodPost, path: "/v1/admin/tenants", token: root, body: map[string]string{
		"slug": "globex", "name": "Globex", "admin_email": "hank@globex.io", "admin_password": "globex-pass",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = h.do(req{method: http.MethodPost, path: "/v1/customers", token: root, body: map[string]string{
		"name": "Acme Only", "email": "only@acme.io",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)

	// un usuario de acme no puede operar sobre globex
	rec, body = h.do(req{method: http.MethodGet, path: "/v1/customers", token: viewer,
		headers: map[string]string{"X-Tenant-Slug": "globex"}})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "TENANT_MISMATCH", body["code"])

	// el super admin sí, y no ve los datos de acme
	rec, body = h.do(req{method: http.MethodGet, path: "/v1/customers", token: root,
		headers: map[string]string{"X-Tenant-Slug": "globex"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, body["total"])

	globex := h.login("globex", "hank@globex.io", "globex-pass")
	rec, body = h.do(req{method: http.MethodGet, path: "/v1/customers", token: globex})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, body["total"])

	// tenant suspendido
	rec, _ = h.do(req{method: http.MethodPost, path: "/v1/admin/tenants/globex/suspend", token: root})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/customers", token: globex})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDealPipelineAndTickets(t *testing.T) {
	h := newHarness(t)
	tok := h.login("acme", "owner@acme.io", "s3cret-pass")

	_, cust := h.do(req{method: http.MethodPost, path: "/v1/customers", token: tok, body: map[string]string{
		"name": "Stark", "email": "tony@stark.io",
	}})
	custID := cust["id"].(string)

	rec, deal := h.do(req{method: http.MethodPost, path: "/v1/deals", token: tok, body: map[string]any{
		"customer_id": custID, "title": "Armor", "value_cents": 6_000_000, "currency": "USD", "source": "referral",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dealID := deal["id"].(string)
	require.Equal(t, "lead", deal["stage"])

	rec, deal = h.do(req{method: http.MethodPost, path: "/v1/deals/" + dealID + "/stage", token: tok,
		body: map[string]string{"stage": "closed_won"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.EqualValues(t, 100, deal["probability"])

	rec, _ = h.do(req{method: http.MethodPost, path: "/v1/deals/" + dealID + "/stage", token: tok,
		body: map[string]string{"stage": "proposal"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = h.do(req{method: http.MethodGet, path: "/v1/deals/pipeline", token: tok})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, ticket := h.do(req{method: http.MethodPost, path: "/v1/tickets", token: tok, body: map[string]string{
		"customer_id": custID, "title": "Reactor leak", "priority": "urgent",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, ticket["resolution_due_at"])

	rec, ticket = h.do(req{method: http.MethodPost, path: "/v1/tickets/" + ticket["id"].(string) + "/status", token: tok,
		body: map[string]string{"status": "in_progress"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, ticket["first_response_at"])
}

func TestLoginRateLimit(t *testing.T) {
	h := newHarness(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.Login.Limit = 2
		c.Rate.Login.Window = "1h"
	})
	body := map[string]string{"tenant": "acme", "email": "owner@acme.io", "password": "wrong-pass"}
	for i := 0; i < 2; i++ {
		rec, _ := h.do(req{method: http.MethodPost, path: "/v1/auth/login", body: body})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec, _ := h.do(req{method: http.MethodPost, path: "/v1/auth/login", body: body})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestSuperAdminMutationsAuditTheTargetTenant(t *testing.T) {
	h := newHarness(t)
	root := h.login("acme", "owner@acme.io", "s3cret-pass")

	rec, _ := h.do(req{method: http.MethodPost, path: "/v1/admin/tenants", token: root, body: map[string]string{
		"slug": "globex", "name": "Globex", "admin_email": "hank@globex.io", "admin_password": "globex-pass",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	inGlobex := map[string]string{"X-Tenant-Slug": "globex"}
	rec, _ = h.do(req{method: http.MethodPost, path: "/v1/customers", token: root, headers: inGlobex, body: map[string]string{
		"name": "Initech", "email": "bill@initech.io",
	}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body := h.do(req{method: http.MethodGet, path: "/v1/audit?resource=customers", token: root, headers: inGlobex})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["total"])

	rec, body = h.do(req{method: http.MethodGet, path: "/v1/audit?resource=customers", token: root})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 0, body["total"])
}

func TestListWithHugePageIsEmptyNotPanic(t *testing.T) {
	h := newHarness(t)
	tok := h.login("acme", "owner@acme.io", "s3cret-pass")

	rec, _ := h.do(req{method: http.MethodPost, path: "/v1/customers", token: tok, body: map[string]string{
		"name": "Wayne Enterprises", "email": "bruce@wayne.io",
	}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := h.do(req{method: http.MethodGet, path: "/v1/customers?page=9223372036854775807", token: tok})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.EqualValues(t, 1, body["total"])
	require.Empty(t, body["items"])
}
