package presence

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harborlink/marina/internal/model"
)

const writeWait = 10 * time.Second

// Handler upgrades HTTP requests into registered presence connections.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the dashboard origin; origin
			// policy is enforced upstream by the caller's middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP handles GET /ws?actorId=&role=. A missing actor id closes
// the socket with a policy violation; no registry entry is created.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actorID := r.URL.Query().Get("actorId")
	role := model.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = model.RoleMember
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	if actorID == "" {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "actorId query parameter is required"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}

	conn := h.hub.Register(actorID, role, &wsSocket{ws: ws})

	ws.SetPongHandler(func(string) error {
		h.hub.Touch(conn)
		return nil
	})

	go h.readLoop(conn, ws)
}

// readLoop drains inbound frames. Any message counts as a liveness
// signal; read errors tear the connection down.
func (h *Handler) readLoop(conn *Connection, ws *websocket.Conn) {
	defer func() {
		h.hub.Unregister(conn)
		_ = ws.Close()
	}()
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
		h.hub.Touch(conn)
	}
}

// wsSocket adapts a gorilla connection to the hub's Socket interface.
type wsSocket struct {
	ws *websocket.Conn
}

func (s *wsSocket) WriteEvent(event model.NotificationEvent) error {
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return s.ws.WriteJSON(event)
}

func (s *wsSocket) WritePing() error {
	return s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *wsSocket) Close() error {
	_ = s.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "stale connection"),
		time.Now().Add(writeWait))
	return s.ws.Close()
}
