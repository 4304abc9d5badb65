package assignment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickLeastLoaded(t *testing.T) {
	_, ok := PickLeastLoaded(nil, nil)
	require.False(t, ok)

	id, ok := PickLeastLoaded([]string{"c", "b", "a"}, map[string]int{"a": 3, "b": 1, "c": 1})
	require.True(t, ok)
	require.Equal(t, "b", id)

	id, _ = PickLeastLoaded([]string{"z", "y"}, nil)
	require.Equal(t, "y", id)
}
