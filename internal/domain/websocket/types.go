// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"

	// CRM events (server -> client)
	EventTypeActivityCreated  EventType = "activity:created"
	EventTypeLeadConverted    EventType = "lead:converted"
	EventTypeDealStageChanged EventType = "deal:stage_changed"
	EventTypeStatsInvalidated EventType = "stats:invalidated"

	// Timeline requests (client -> server) and replies
	EventTypeTimelineFetch  EventType = "timeline:fetch"
	EventTypeTimelineResult EventType = "timeline:result"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType              `json:"type"`
	Data      interface{}            `json:"data,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ID        string                 `json:"id,omitempty"`
}

// ChannelType is a per-store feed clients can subscribe to.
type ChannelType string

const (
	ChannelActivities ChannelType = "activities"
	ChannelPipeline   ChannelType = "pipeline"
	ChannelSystem     ChannelType = "system"
)

// DefaultChannels are subscribed on connect.
var DefaultChannels = []ChannelType{ChannelActivities, ChannelPipeline, ChannelSystem}

func (c ChannelType) Valid() bool {
	switch c {
	case ChannelActivities, ChannelPipeline, ChannelSystem:
		return true
	}
	return false
}

type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// TimelineRequest asks for the activity history of exactly one of a
// contact, lead or deal.
type TimelineRequest struct {
	ContactID string `json:"contact_id,omitempty"`
	LeadID    string `json:"lead_id,omitempty"`
	DealID    string `json:"deal_id,omitempty"`
}

// LeadConvertedData is pushed on the pipeline channel.
type LeadConvertedData struct {
	LeadID    string `json:"lead_id"`
	DealID    string `json:"deal_id"`
	ContactID string `json:"contact_id"`
}

// DealStageChangedData is pushed on the pipeline channel.
type DealStageChangedData struct {
	DealID string `json:"deal_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}

// DecodeData re-decodes the loosely typed Data field into dst.
func (m *WSMessage) DecodeData(dst interface{}) error {
	raw, err := json.Marshal(m.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
