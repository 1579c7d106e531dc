// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string // key id for rotation
	Ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		Ttl:      ttl,
	}
}

// Generate signs a token for merchantID and returns it with its jti.
// A non-positive ttl falls back to the generator default.
func (g *Generator) Generate(merchantID, email, purpose string, ttl time.Duration) (string, string, error) {
	if g.priv == nil {
		return "", "", errors.New("jwt generator has nil private key")
	}
	if merchantID == "" {
		return "", "", errors.New("jwt subject is empty")
	}
	if ttl <= 0 {
		ttl = g.Ttl
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		MerchantID: merchantID,
		Email:      email,
		Purpose:    purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   merchantID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	return signed, jti, err
}

// GenerateAccessToken generates a standard access token.
func (g *Generator) GenerateAccessToken(merchantID, email string) (string, string, error) {
	return g.Generate(merchantID, email, PurposeAccess, 0)
}
