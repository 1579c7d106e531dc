// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeAccess = "access"
	PurposeCLI    = "cli"
)

// Claims carried by merchant tokens. Subject is the merchant id.
type Claims struct {
	MerchantID string `json:"merchant_id"`
	Email      string `json:"email,omitempty"`
	Purpose    string `json:"purpose"`
	jwt.RegisteredClaims
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(audience string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == audience {
			return true
		}
	}
	return false
}
