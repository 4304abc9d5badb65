package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeBoundsPaging(t *testing.T) {
	f := ListFilter{Page: math.MaxInt, PageSize: 500, SortBy: "drop table"}.Normalize("name")
	require.Equal(t, MaxPage, f.Page)
	require.Equal(t, MaxPageSize, f.PageSize)
	require.Equal(t, "created_at", f.SortBy)
	require.Equal(t, (MaxPage-1)*MaxPageSize, f.Offset())
	require.GreaterOrEqual(t, f.Offset(), 0)

	f = ListFilter{}.Normalize()
	require.Equal(t, 1, f.Page)
	require.Equal(t, DefaultPageSize, f.PageSize)
	require.Zero(t, f.Offset())
}

func TestOffsetNeverNegative(t *testing.T) {
	require.GreaterOrEqual(t, ListFilter{Page: math.MaxInt, PageSize: math.MaxInt}.Offset(), 0)
	require.Zero(t, ListFilter{Page: -3, PageSize: 20}.Offset())
}
