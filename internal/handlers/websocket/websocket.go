// internal/handlers/websocket/websocket.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"storefront-crm/internal/middleware"
	xerrors "storefront-crm/internal/pkg/errors"
	"storefront-crm/internal/pkg/response"
	ws "storefront-crm/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, logger *zap.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		logger: logger,
	}
}

// HandleConnection authenticates ?token= (or a Bearer header) for ?store_id=
// and upgrades the connection onto the store's feed.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "missing authentication token", nil)
		return
	}

	auth, err := h.hub.AuthenticateClient(c.Request.Context(), token, c.Query("store_id"))
	if err != nil {
		h.logger.Warn("websocket authentication failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		switch {
		case errors.Is(err, ws.ErrStoreRequired):
			response.Error(c, http.StatusBadRequest, "store_id is required", nil)
		case errors.Is(err, xerrors.ErrForbidden):
			response.Error(c, http.StatusForbidden, "not a member of this store", nil)
		case errors.Is(err, ws.ErrSessionUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "unable to verify session", nil)
		case errors.Is(err, ws.ErrTokenRevoked):
			response.Error(c, http.StatusUnauthorized, "token has been revoked", nil)
		default:
			response.Error(c, http.StatusUnauthorized, "authentication failed", nil)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	if !h.hub.Attach(ws.NewClient(h.hub, conn, auth)) {
		conn.Close()
		return
	}
}

// GetStats returns connection counts for the caller's store.
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	storeID := middleware.MustGetStoreID(c)
	response.Success(c, http.StatusOK, "websocket stats", map[string]interface{}{
		"store_connections": h.hub.ConnectedClients(storeID),
		"timestamp":         time.Now(),
	})
}
