package jwt

import jwtv5 "github.com/golang-jwt/jwt/v5"

// AccessClaims son los claims del access token de la API.
type AccessClaims struct {
	TenantID   string   `json:"tid"`
	SuperAdmin bool     `json:"sa,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	jwtv5.RegisteredClaims
}

// UserID es un alias de Subject.
func (c *AccessClaims) UserID() string { return c.Subject }
