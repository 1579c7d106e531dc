// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront-crm/internal/domain/tenant"
	"storefront-crm/internal/pkg/jwt"
	"storefront-crm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// TokenVerifier is satisfied by *jwt.Verifier.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

// MembershipChecker is satisfied by *tenant.TenantService.
type MembershipChecker interface {
	Membership(ctx context.Context, storeID, merchantID string) (*tenant.TeamMember, error)
}

// RevocationChecker is satisfied by *session.Revocations.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	verifier    TokenVerifier
	members     MembershipChecker
	revocations RevocationChecker
}

func NewAuthMiddleware(verifier TokenVerifier, members MembershipChecker) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		members:  members,
	}
}

// WithRevocations makes Auth reject tokens that were logged out.
func (m *AuthMiddleware) WithRevocations(r RevocationChecker) *AuthMiddleware {
	m.revocations = r
	return m
}

// Auth validates the bearer token and puts the merchant into the context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				response.Error(c, http.StatusServiceUnavailable, "unable to verify session", nil)
				return
			}
			if revoked {
				response.Error(c, http.StatusUnauthorized, "token has been revoked", nil)
				return
			}
		}

		c.Set(ctxMerchantID, claims.MerchantID)
		c.Set(ctxJTI, claims.ID)
		c.Set(ctxEmail, claims.Email)
		if claims.ExpiresAt != nil {
			c.Set(ctxTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// StoreMembership resolves the :store_id path parameter against the caller's
// membership. MUST be used after Auth().
func (m *AuthMiddleware) StoreMembership() gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantID, ok := GetMerchantID(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		storeID := c.Param("store_id")
		if storeID == "" {
			response.Error(c, http.StatusBadRequest, "store_id is required", nil)
			return
		}

		member, err := m.members.Membership(c.Request.Context(), storeID, merchantID)
		if err != nil {
			response.FromError(c, "failed to resolve store membership", err)
			return
		}

		c.Set(ctxStoreID, storeID)
		c.Set(ctxMemberRole, member.Role)
		c.Next()
	}
}

// RequireRole requires the store membership to carry one of roles.
// MUST be used after StoreMembership().
func (m *AuthMiddleware) RequireRole(roles ...tenant.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetMemberRole(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "no store role found", nil)
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
			"role":           role,
		})
	}
}

// StoreScoped returns Auth + StoreMembership for /stores/:store_id routes.
func (m *AuthMiddleware) StoreScoped() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.StoreMembership(),
	}
}

// extractToken reads a Bearer token from the Authorization header, falling
// back to the token query parameter used by websocket clients.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}

// ExtractToken is extractToken for handlers outside the middleware chain.
func ExtractToken(c *gin.Context) string {
	return extractToken(c)
}
