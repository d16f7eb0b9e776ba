package presence

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborlink/marina/internal/model"
)

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
}

func TestHandlerRejectsMissingActor(t *testing.T) {
	hub := NewHub(time.Hour, 2*time.Hour, zerolog.Nop())
	srv := httptest.NewServer(NewHandler(hub, zerolog.Nop()))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	_, _, err = ws.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	assert.Equal(t, 0, hub.Len())
}

func TestHandlerDeliversEvents(t *testing.T) {
	hub := NewHub(time.Hour, 2*time.Hour, zerolog.Nop())
	srv := httptest.NewServer(NewHandler(hub, zerolog.Nop()))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "actorId=m-1&role=member"), nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	var welcome model.NotificationEvent
	require.NoError(t, ws.ReadJSON(&welcome))
	assert.Equal(t, model.EventWelcome, welcome.Kind)

	waitForConnected(t, hub, "m-1")
	require.True(t, hub.Send("m-1", model.NotificationEvent{
		Kind:     model.EventReservationCreated,
		Priority: model.PriorityHigh,
		Message:  "Sea Drift booked for Saturday morning",
	}))

	var event model.NotificationEvent
	require.NoError(t, ws.ReadJSON(&event))
	assert.Equal(t, model.EventReservationCreated, event.Kind)
	assert.Equal(t, "Sea Drift booked for Saturday morning", event.Message)
}

func TestHandlerUnregistersOnClose(t *testing.T) {
	hub := NewHub(time.Hour, 2*time.Hour, zerolog.Nop())
	srv := httptest.NewServer(NewHandler(hub, zerolog.Nop()))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "actorId=m-1"), nil)
	require.NoError(t, err)
	var welcome model.NotificationEvent
	require.NoError(t, ws.ReadJSON(&welcome))
	waitForConnected(t, hub, "m-1")

	require.NoError(t, ws.Close())

	deadline := time.Now().Add(time.Second)
	for hub.Connected("m-1") && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.False(t, hub.Connected("m-1"))
}

func TestHandlerWatchdogOverWire(t *testing.T) {
	hub := NewHub(20*time.Millisecond, 40*time.Millisecond, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)

	srv := httptest.NewServer(NewHandler(hub, zerolog.Nop()))
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "actorId=m-1"), nil)
	require.NoError(t, err)
	defer func() { _ = ws.Close() }()

	// The default pong handler on the client side answers server pings,
	// so the connection stays registered well past the stale timeout.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	time.Sleep(150 * time.Millisecond)
	assert.True(t, hub.Connected("m-1"))

	cancel()
	srv.Close()
	<-done
}

func waitForConnected(t *testing.T, hub *Hub, actorID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !hub.Connected(actorID) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, hub.Connected(actorID))
}
