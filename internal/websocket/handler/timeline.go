// internal/websocket/handler/timeline.go
package handlers

import (
	"context"
	"fmt"

	"storefront-crm/internal/domain/crm"
	wstypes "storefront-crm/internal/domain/websocket"
	ws "storefront-crm/internal/websocket"
)

// TimelineReader is satisfied by *crm.CRMService.
type TimelineReader interface {
	Timeline(ctx context.Context, storeID string, req wstypes.TimelineRequest) ([]crm.Activity, error)
}

// TimelineHandler answers timeline:fetch with the activity history of one
// contact, lead or deal in the client's store.
type TimelineHandler struct {
	timelines TimelineReader
}

func NewTimelineHandler(timelines TimelineReader) *TimelineHandler {
	return &TimelineHandler{timelines: timelines}
}

func (h *TimelineHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypeTimelineFetch}
}

func (h *TimelineHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	if msg.Type != wstypes.EventTypeTimelineFetch {
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}

	var req wstypes.TimelineRequest
	if err := msg.DecodeData(&req); err != nil {
		client.SendError("invalid_request", "Invalid timeline request", err.Error())
		return nil
	}

	activities, err := h.timelines.Timeline(ctx, client.StoreID(), req)
	if err != nil {
		client.SendError("timeline_failed", "Failed to load timeline", err.Error())
		return nil
	}

	reply := wstypes.NewMessage(wstypes.EventTypeTimelineResult, map[string]interface{}{
		"request":    req,
		"activities": activities,
		"count":      len(activities),
	})
	if msg.ID != "" {
		reply.Metadata = map[string]interface{}{"reply_to": msg.ID}
	}
	client.SendMessage(reply)
	return nil
}
