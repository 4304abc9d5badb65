package jwt

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer("crm", secret, time.Hour)
	require.NoError(t, err)

	tok, exp, err := iss.IssueAccess("u1", "t1", true, []string{"admin"})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := iss.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", c.UserID())
	require.Equal(t, "t1", c.TenantID)
	require.True(t, c.SuperAdmin)
	require.Equal(t, []string{"admin"}, c.Roles)
	require.Equal(t, "crm", c.Issuer)
}

func TestParseRejects(t *testing.T) {
	iss, err := NewIssuer("crm", secret, time.Hour)
	require.NoError(t, err)
	tok, _, err := iss.IssueAccess("u1", "t1", false, nil)
	require.NoError(t, err)

	other, err := NewIssuer("crm", []byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)

	wrongIss, err := NewIssuer("other", secret, time.Hour)
	require.NoError(t, err)
	_, err = wrongIss.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidIssuer)

	_, err = iss.Parse("")
	require.ErrorIs(t, err, ErrInvalidToken)

	none := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, AccessClaims{TenantID: "t1"})
	raw, err := none.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = iss.Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpired(t *testing.T) {
	iss, err := NewIssuer("crm", secret, time.Minute)
	require.NoError(t, err)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := iss.IssueAccess("u1", "t1", false, nil)
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(tok)
	require.ErrorIs(t, err, ErrExpired)
}

func TestWeakSecret(t *testing.T) {
	_, err := NewIssuer("crm", []byte("short"), time.Hour)
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	require.True(t, ok)
	require.Equal(t, "abc.def", tok)
	_, ok = BearerToken("Basic xyz")
	require.False(t, ok)
	_, ok = BearerToken("Bearer ")
	require.False(t, ok)
}
