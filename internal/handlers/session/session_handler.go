// internal/handlers/session/session_handler.go
package session

import (
	"context"
	"net/http"
	"time"

	"storefront-crm/internal/middleware"
	"storefront-crm/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Revoker is satisfied by *session.Revocations.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type SessionHandler struct {
	revocations Revoker
	now         func() time.Time
}

func NewSessionHandler(revocations Revoker) *SessionHandler {
	return &SessionHandler{revocations: revocations, now: time.Now}
}

// Logout revokes the caller's access token for the rest of its lifetime.
func (h *SessionHandler) Logout(c *gin.Context) {
	jti, ok := middleware.GetJTI(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "token has no id", nil)
		return
	}

	ttl := time.Duration(0)
	if exp, ok := middleware.GetTokenExpiry(c); ok {
		ttl = exp.Sub(h.now())
	}

	if err := h.revocations.Revoke(c.Request.Context(), jti, ttl); err != nil {
		response.FromError(c, "failed to log out", err)
		return
	}
	response.Success(c, http.StatusOK, "logged out", nil)
}
