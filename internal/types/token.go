package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a session token
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// TokenID returns the jti claim used for revocation.
func (c *TokenClaims) TokenID() string {
	return c.RegisteredClaims.ID
}
