// Package refdata administra los datos de referencia del tenant (industrias,
// fuentes de deals, categorías de tickets, monedas) con cache por categoría.
package refdata

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razorzibra-dot/trialram-sub001/internal/audit"
	"github.com/razorzibra-dot/trialram-sub001/internal/cache"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/observability/logger"
	"github.com/razorzibra-dot/trialram-sub001/internal/store"
)

const resource = "refdata"

var nameRE = regexp.MustCompile(`^[a-z0-9_]{2,40}$`)

type seedItem struct{ key, label string }

// Defaults son las categorías sembradas en cada tenant nuevo.
var defaults = map[string][]seedItem{
	"industry": {
		{"technology", "Technology"}, {"finance", "Finance"}, {"healthcare", "Healthcare"},
		{"manufacturing", "Manufacturing"}, {"retail", "Retail"}, {"other", "Other"},
	},
	"deal_source": {
		{"referral", "Referral"}, {"partner", "Partner"}, {"event", "Event"},
		{"website", "Website"}, {"other", "Other"},
	},
	"ticket_category": {
		{"billing", "Billing"}, {"technical", "Technical"}, {"account", "Account"}, {"other", "Other"},
	},
	"currency": {
		{"usd", "US Dollar"}, {"eur", "Euro"}, {"gbp", "Pound Sterling"}, {"inr", "Indian Rupee"},
	},
}

// DefaultCategories retorna las categorías sembradas por SeedTenant.
func DefaultCategories() []string {
	return []string{"currency", "deal_source", "industry", "ticket_category"}
}

type Input struct {
	Key       string
	Label     string
	SortOrder int
	Active    *bool
}

type Update struct {
	Label     *string
	SortOrder *int
	Active    *bool
}

type Service interface {
	Categories(ctx context.Context, tda *store.TenantDataAccess) ([]string, error)
	List(ctx context.Context, tda *store.TenantDataAccess, category string, onlyActive bool) ([]repository.RefItem, error)
	Get(ctx context.Context, tda *store.TenantDataAccess, category, key string) (*repository.RefItem, error)
	Create(ctx context.Context, tda *store.TenantDataAccess, category string, in Input) (*repository.RefItem, error)
	Update(ctx context.Context, tda *store.TenantDataAccess, category, key string, in Update) (*repository.RefItem, error)
	Delete(ctx context.Context, tda *store.TenantDataAccess, category, key string) error
	// SeedTenant crea las categorías por defecto que falten. Idempotente.
	SeedTenant(ctx context.Context, tda *store.TenantDataAccess) error
}

type Deps struct {
	Cache cache.Client // opcional
	TTL   time.Duration
	Audit *audit.Recorder
	Clock common.Clock
}

type refdataService struct {
	cache cache.Client
	ttl   time.Duration
	audit *audit.Recorder
	clock common.Clock
}

func NewService(d Deps) Service {
	if d.TTL <= 0 {
		d.TTL = 10 * time.Minute
	}
	return &refdataService{cache: d.Cache, ttl: d.TTL, audit: d.Audit, clock: d.Clock}
}

func (s *refdataService) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(logger.Layer("service"), logger.Component(resource), logger.Op(op))
}

func listKey(tenantID, category string, onlyActive bool) string {
	scope := "all"
	if onlyActive {
		scope = "active"
	}
	return "refdata:" + tenantID + ":" + category + ":" + scope
}

func (s *refdataService) invalidate(ctx context.Context, tenantID, category string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePrefix(ctx, "refdata:"+tenantID+":"+category+":"); err != nil {
		s.log(ctx, "invalidate").Warn("cache delete failed", logger.Err(err))
	}
}

func name(field, v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if !nameRE.MatchString(v) {
		return "", common.Invalid("invalid %s %q (a-z0-9_, 2-40 chars)", field, v)
	}
	return v, nil
}

func (s *refdataService) Categories(ctx context.Context, tda *store.TenantDataAccess) ([]string, error) {
	return tda.RefData().Categories(ctx, tda.ID())
}

func (s *refdataService) List(ctx context.Context, tda *store.TenantDataAccess, category string, onlyActive bool) ([]repository.RefItem, error) {
	category, err := name("category", category)
	if err != nil {
		return nil, err
	}
	key := listKey(tda.ID(), category, onlyActive)
	if s.cache != nil {
		var cached []repository.RefItem
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			return cached, nil
		}
	}
	items, err := tda.RefData().List(ctx, tda.ID(), category, onlyActive)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.RefItem{}
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, items, s.ttl); err != nil {
			s.log(ctx, "List").Warn("cache set failed", logger.Err(err))
		}
	}
	return items, nil
}

func (s *refdataService) Get(ctx context.Context, tda *store.TenantDataAccess, category, key string) (*repository.RefItem, error) {
	return tda.RefData().Get(ctx, tda.ID(), strings.ToLower(category), strings.ToLower(key))
}

func (s *refdataService) Create(ctx context.Context, tda *store.TenantDataAccess, category string, in Input) (*repository.RefItem, error) {
	category, err := name("category", category)
	if err != nil {
		return nil, err
	}
	key, err := name("key", in.Key)
	if err != nil {
		return nil, err
	}
	label, err := common.Required("label", in.Label)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	item := repository.RefItem{
		ID: uuid.NewString(), TenantID: tda.ID(), Category: category, Key: key,
		Label: label, SortOrder: in.SortOrder, Active: in.Active == nil || *in.Active,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := tda.RefData().Create(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tda.ID(), category)
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionCreate, Resource: resource, ResourceID: category + "/" + key, Changes: audit.Snapshot(item)})
	return &item, nil
}

func (s *refdataService) Update(ctx context.Context, tda *store.TenantDataAccess, category, key string, in Update) (*repository.RefItem, error) {
	cur, err := s.Get(ctx, tda, category, key)
	if err != nil {
		return nil, err
	}
	before := *cur
	item := *cur
	if in.Label != nil {
		if item.Label, err = common.Required("label", *in.Label); err != nil {
			return nil, err
		}
	}
	if in.SortOrder != nil {
		item.SortOrder = *in.SortOrder
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	item.UpdatedAt = s.clock.Now()
	if err := tda.RefData().Update(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tda.ID(), item.Category)
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionUpdate, Resource: resource, ResourceID: item.Category + "/" + item.Key, Changes: audit.Changes(before, item)})
	return &item, nil
}

func (s *refdataService) Delete(ctx context.Context, tda *store.TenantDataAccess, category, key string) error {
	category, key = strings.ToLower(category), strings.ToLower(key)
	if err := tda.RefData().Delete(ctx, tda.ID(), category, key); err != nil {
		return err
	}
	s.invalidate(ctx, tda.ID(), category)
	s.audit.Record(ctx, tda.ID(), audit.Entry{Action: audit.ActionDelete, Resource: resource, ResourceID: category + "/" + key})
	return nil
}

func (s *refdataService) SeedTenant(ctx context.Context, tda *store.TenantDataAccess) error {
	created := 0
	now := s.clock.Now()
	for _, category := range DefaultCategories() {
		for i, it := range defaults[category] {
			if _, err := tda.RefData().Get(ctx, tda.ID(), category, it.key); err == nil {
				continue
			} else if !repository.IsNotFound(err) {
				return err
			}
			item := repository.RefItem{
				ID: uuid.NewString(), TenantID: tda.ID(), Category: category, Key: it.key,
				Label: it.label, SortOrder: (i + 1) * 10, Active: true, CreatedAt: now, UpdatedAt: now,
			}
			if err := tda.RefData().Create(ctx, &item); err != nil && !repository.IsConflict(err) {
				return err
			}
			created++
		}
		s.invalidate(ctx, tda.ID(), category)
	}
	s.log(ctx, "SeedTenant").Info("reference data seeded", logger.TenantID(tda.ID()), logger.Count(created))
	return nil
}
