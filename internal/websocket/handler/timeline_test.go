package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront-crm/internal/domain/crm"
	"storefront-crm/internal/domain/tenant"
	wstypes "storefront-crm/internal/domain/websocket"
	xerrors "storefront-crm/internal/pkg/errors"
	ws "storefront-crm/internal/websocket"
)

type fakeTimelines struct {
	gotStore string
	gotReq   wstypes.TimelineRequest
}

func (f *fakeTimelines) Timeline(_ context.Context, storeID string, req wstypes.TimelineRequest) ([]crm.Activity, error) {
	f.gotStore, f.gotReq = storeID, req
	if req.ContactID == "" {
		return nil, xerrors.Invalid("a contact, lead or deal id is required")
	}
	return []crm.Activity{{ID: "a2", Title: "Follow up"}, {ID: "a1", Title: "Intro"}}, nil
}

// connect runs a hub with the timeline handler and returns a client
// connection for store-1.
func connect(t *testing.T, timelines TimelineReader) *websocket.Conn {
	t.Helper()
	hub := ws.NewHub(nil, nil, zap.NewNop())
	hub.RegisterHandler(NewTimelineHandler(timelines))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(ws.NewClient(hub, conn, &ws.ClientAuth{StoreID: "store-1", MerchantID: "m1", Role: tenant.RoleMember}))
	}))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-stopped
		srv.Close()
	})

	require.Equal(t, wstypes.EventTypeConnected, read(t, conn).Type)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) *wstypes.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wstypes.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return &msg
}

func TestTimelineHandler_Result(t *testing.T) {
	timelines := &fakeTimelines{}
	conn := connect(t, timelines)

	req := wstypes.NewMessage(wstypes.EventTypeTimelineFetch, wstypes.TimelineRequest{ContactID: "c1"})
	require.NoError(t, conn.WriteJSON(req))

	msg := read(t, conn)
	require.Equal(t, wstypes.EventTypeTimelineResult, msg.Type)
	assert.Equal(t, req.ID, msg.Metadata["reply_to"])

	var body struct {
		Activities []crm.Activity `json:"activities"`
		Count      int            `json:"count"`
	}
	require.NoError(t, msg.DecodeData(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "a2", body.Activities[0].ID)
	assert.Equal(t, "store-1", timelines.gotStore, "the store comes from the connection, not the request")
}

func TestTimelineHandler_Error(t *testing.T) {
	conn := connect(t, &fakeTimelines{})

	require.NoError(t, conn.WriteJSON(wstypes.NewMessage(wstypes.EventTypeTimelineFetch, wstypes.TimelineRequest{})))

	msg := read(t, conn)
	require.Equal(t, wstypes.EventTypeError, msg.Type)
	var data wstypes.ErrorData
	require.NoError(t, msg.DecodeData(&data))
	assert.Equal(t, "timeline_failed", data.Code)
}
