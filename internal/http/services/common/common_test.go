package common

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/razorzibra-dot/trialram-sub001/internal/domain/repository"
)

func TestNormalizeEmail(t *testing.T) {
	e, err := NormalizeEmail("  Ana@Acme.IO ")
	require.NoError(t, err)
	require.Equal(t, "ana@acme.io", e)

	for _, bad := range []string{"", "ana", "ana@", "Ana <ana@acme.io>", "ana@localhost"} {
		_, err := NormalizeEmail(bad)
		require.ErrorIs(t, err, repository.ErrInvalidInput, bad)
	}
}

func TestCurrency(t *testing.T) {
	c, err := Currency("")
	require.NoError(t, err)
	require.Equal(t, "USD", c)
	c, err = Currency("eur")
	require.NoError(t, err)
	require.Equal(t, "EUR", c)
	_, err = Currency("EURO")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
	_, err = Currency("E1R")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
