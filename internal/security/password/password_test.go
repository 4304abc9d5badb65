package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var fast = Params{Memory: 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func TestHashAndVerify(t *testing.T) {
	h, err := Hash(fast, "s3cret-pass")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(h, "$argon2id$v=19$m=1024,t=1,p=1$"))

	require.True(t, Verify("s3cret-pass", h))
	require.False(t, Verify("wrong", h))
	require.False(t, Verify("s3cret-pass", "$argon2id$garbage"))

	h2, err := Hash(fast, "s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, h, h2, "salt must differ")
}

func TestHashEmpty(t *testing.T) {
	_, err := Hash(fast, "")
	require.ErrorIs(t, err, ErrEmpty)
}

func TestNeedsRehash(t *testing.T) {
	h, err := Hash(fast, "abcdefgh")
	require.NoError(t, err)
	require.False(t, NeedsRehash(fast, h))
	require.True(t, NeedsRehash(Default, h))
	require.True(t, NeedsRehash(fast, "plain"))
}

func TestPolicy(t *testing.T) {
	require.NoError(t, DefaultPolicy.Check("12345678"))

	err := DefaultPolicy.Check("short")
	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	require.Equal(t, []string{"too_short"}, pe.Reasons)

	strict := Policy{MinLength: 10, RequireUpper: true, RequireDigit: true, RequireSymbol: true}
	ok, reasons := strict.Validate("lowercaseonly")
	require.False(t, ok)
	require.ElementsMatch(t, []string{"missing_upper", "missing_digit", "missing_symbol"}, reasons)
	ok, _ = strict.Validate("Upper-case9!")
	require.True(t, ok)
}
