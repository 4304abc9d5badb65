package refdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/cache"
	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
	"github.com/razorzibra-dot/trialram-sub001/internal/http/services/common"
	"github.com/razorzibra-dot/trialram-sub001/internal/store/storetest"
)

func TestSeedTenantIsIdempotent(t *testing.T) {
	_, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{Cache: cache.NewMemory("test")})
	ctx := context.Background()

	require.NoError(t, svc.SeedTenant(ctx, tda))
	require.NoError(t, svc.SeedTenant(ctx, tda))

	cats, err := svc.Categories(ctx, tda)
	require.NoError(t, err)
	require.ElementsMatch(t, DefaultCategories(), cats)

	sources, err := svc.List(ctx, tda, "deal_source", false)
	require.NoError(t, err)
	require.Len(t, sources, 5)
	require.Equal(t, "referral", sources[0].Key)
}

func TestListIsCachedAndInvalidatedOnWrite(t *testing.T) {
	_, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{Cache: cache.NewMemory("test")})
	ctx := context.Background()

	_, err := svc.Create(ctx, tda, "region", Input{Key: "emea", Label: "EMEA", SortOrder: 20})
	require.NoError(t, err)
	_, err = svc.Create(ctx, tda, "region", Input{Key: "amer", Label: "Americas", SortOrder: 10})
	require.NoError(t, err)

	items, err := svc.List(ctx, tda, "region", true)
	require.NoError(t, err)
	require.Equal(t, []string{"amer", "emea"}, keys(items))

	// Escritura directa al repo: el cache sigue sirviendo la lista anterior.
	require.NoError(t, tda.RefData().Delete(ctx, tda.ID(), "region", "amer"))
	items, err = svc.List(ctx, tda, "region", true)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Una escritura por el service invalida.
	_, err = svc.Update(ctx, tda, "region", "emea", Update{Active: common.Ptr(false)})
	require.NoError(t, err)
	items, err = svc.List(ctx, tda, "region", true)
	require.NoError(t, err)
	require.Empty(t, items)
	items, err = svc.List(ctx, tda, "region", false)
	require.NoError(t, err)
	require.Equal(t, []string{"emea"}, keys(items))
}

func TestValidation(t *testing.T) {
	_, tda := storetest.NewTenant(t, "acme")
	svc := NewService(Deps{})
	ctx := context.Background()

	_, err := svc.Create(ctx, tda, "Bad Category!", Input{Key: "x1", Label: "X"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, "region", Input{Key: "x", Label: "X"})
	require.True(t, repository.IsInvalidInput(err))
	_, err = svc.Create(ctx, tda, "region", Input{Key: "apac", Label: " "})
	require.True(t, repository.IsInvalidInput(err))

	_, err = svc.Create(ctx, tda, "region", Input{Key: "apac", Label: "APAC"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, tda, "region", Input{Key: "APAC", Label: "again"})
	require.True(t, repository.IsConflict(err))

	require.True(t, repository.IsNotFound(svc.Delete(ctx, tda, "region", "latam")))
}

func keys(items []repository.RefItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}
