// internal/middleware/helpers.go
package middleware

import (
	"time"

	"storefront-crm/internal/domain/tenant"

	"github.com/gin-gonic/gin"
)

const (
	ctxMerchantID = "merchant_id"
	ctxJTI        = "jti"
	ctxEmail      = "email"
	ctxStoreID    = "store_id"
	ctxMemberRole = "member_role"

	ctxTokenExpiry = "token_expiry"
)

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func GetMerchantID(c *gin.Context) (string, bool) {
	return getString(c, ctxMerchantID)
}

// MustGetMerchantID gets the merchant ID from context or panics
func MustGetMerchantID(c *gin.Context) string {
	id, exists := GetMerchantID(c)
	if !exists {
		panic("merchant_id not found in context")
	}
	return id
}

func GetJTI(c *gin.Context) (string, bool) {
	return getString(c, ctxJTI)
}

// GetTokenExpiry returns when the caller's access token expires.
func GetTokenExpiry(c *gin.Context) (time.Time, bool) {
	v, exists := c.Get(ctxTokenExpiry)
	if !exists {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

// MustGetStoreID gets the store ID resolved by StoreMembership or panics
func MustGetStoreID(c *gin.Context) string {
	id, exists := getString(c, ctxStoreID)
	if !exists {
		panic("store_id not found in context")
	}
	return id
}

func GetMemberRole(c *gin.Context) (tenant.Role, bool) {
	v, exists := c.Get(ctxMemberRole)
	if !exists {
		return "", false
	}
	role, ok := v.(tenant.Role)
	return role, ok
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := GetMerchantID(c)
	return exists
}
