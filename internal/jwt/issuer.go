package jwt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrExpired       = errors.New("expired")
	ErrInvalidIssuer = errors.New("invalid_issuer")
	ErrWeakSecret    = errors.New("jwt secret must be at least 32 bytes")
)

// Issuer firma y valida tokens HS256 con un secreto compartido.
type Issuer struct {
	Iss       string        // "iss"
	AccessTTL time.Duration // TTL por defecto (ej: 1h)

	secret []byte
	now    func() time.Time
}

func NewIssuer(iss string, secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{Iss: iss, AccessTTL: ttl, secret: append([]byte(nil), secret...), now: time.Now}, nil
}

// IssueAccess firma un access token para userID dentro de tenantID.
// Devuelve el token y su expiración.
func (i *Issuer) IssueAccess(userID, tenantID string, superAdmin bool, roles []string) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.AccessTTL)
	claims := AccessClaims{
		TenantID:   tenantID,
		SuperAdmin: superAdmin,
		Roles:      roles,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Keyfunc sólo acepta HS256 con el secreto propio.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if t.Method != jwtv5.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}
}
