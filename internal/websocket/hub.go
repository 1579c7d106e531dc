// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"storefront-crm/internal/domain/tenant"
	wstypes "storefront-crm/internal/domain/websocket"
	"storefront-crm/internal/pkg/jwt"

	"go.uber.org/zap"
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

type Hub struct {
	// Registered clients by store ID
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	Register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Closed once Run returns
	done chan struct{}

	handlerRegistry *HandlerRegistry

	verifier    TokenVerifier
	members     MembershipChecker
	revocations RevocationChecker
	logger      *zap.Logger
}

type BroadcastMessage struct {
	StoreID string
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(verifier TokenVerifier, members MembershipChecker, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		verifier:        verifier,
		members:         members,
		logger:          logger,
	}
}

// WithRevocations makes AuthenticateClient refuse tokens revoked by logout.
func (h *Hub) WithRevocations(r RevocationChecker) *Hub {
	h.revocations = r
	return h
}

// AuthenticateClient verifies the token and that its merchant is an accepted
// member of the store the client wants to follow.
func (h *Hub) AuthenticateClient(ctx context.Context, token, storeID string) (*ClientAuth, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	if storeID == "" {
		return nil, ErrStoreRequired
	}
	claims, err := h.verifier.VerifyAccessToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if h.revocations != nil {
		revoked, err := h.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			h.logger.Error("failed to check token revocation", zap.Error(err))
			return nil, ErrSessionUnavailable
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	member, err := h.members.Membership(ctx, storeID, claims.MerchantID)
	if err != nil {
		return nil, err
	}

	return &ClientAuth{
		MerchantID: claims.MerchantID,
		StoreID:    storeID,
		SessionID:  claims.ID,
		Role:       member.Role,
		Email:      claims.Email,
	}, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage delegates to a registered handler. The bool reports
// whether one claimed the message.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// Attach registers an upgraded client and starts its pumps. It returns false
// when the hub has already stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
	case <-h.done:
		client.Close()
		return false
	}
	go client.WritePump()
	go client.ReadPump()
	return true
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.storeID] == nil {
		h.clients[client.storeID] = make(map[*Client]bool)
	}
	h.clients[client.storeID][client] = true

	h.logger.Info("websocket client connected",
		zap.String("store_id", client.storeID),
		zap.String("merchant_id", client.merchantID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"store_id":    client.storeID,
		"merchant_id": client.merchantID,
		"role":        client.role,
		"channels":    client.Subscriptions(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.storeID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.storeID)
			}

			h.logger.Info("websocket client disconnected",
				zap.String("store_id", client.storeID),
				zap.String("merchant_id", client.merchantID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[msg.StoreID] {
		if client.IsSubscribed(msg.Channel) {
			client.SendMessage(msg.Message)
		}
	}
}

// Publish queues an event for every client of the store subscribed to the
// channel. It never blocks; when the queue is full the event is dropped.
func (h *Hub) Publish(storeID string, channel wstypes.ChannelType, event wstypes.EventType, data interface{}) {
	msg := &BroadcastMessage{
		StoreID: storeID,
		Channel: channel,
		Message: wstypes.NewMessage(event, data),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.String("store_id", storeID),
			zap.String("event", string(event)),
		)
	}
}

// ConnectedClients returns how many clients follow the store.
func (h *Hub) ConnectedClients(storeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[storeID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// DisconnectMerchant closes every connection a merchant holds on a store,
// used when the merchant loses access.
func (h *Hub) DisconnectMerchant(storeID, merchantID, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[storeID]
	msg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
		"reason": reason,
	})
	for client := range clients {
		if client.merchantID != merchantID {
			continue
		}
		client.SendMessage(msg)
		client.Close()
		delete(clients, client)
	}
	if len(clients) == 0 {
		delete(h.clients, storeID)
	}
}

// DisconnectStore closes every connection following the store.
func (h *Hub) DisconnectStore(storeID, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{
		"reason": reason,
	})
	for client := range h.clients[storeID] {
		client.SendMessage(msg)
		client.Close()
	}
	delete(h.clients, storeID)
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for storeID, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
		delete(h.clients, storeID)
	}
}
