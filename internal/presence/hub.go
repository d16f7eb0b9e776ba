// Package presence maintains one live connection per online actor,
// delivers structured events, and reclaims connections whose clients
// vanished without a clean close.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harborlink/marina/internal/model"
)

// Hub is the connection registry. All methods are safe for concurrent
// use; delivery is at-most-once and best-effort.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Connection

	probeInterval time.Duration
	staleTimeout  time.Duration
	log           zerolog.Logger
}

// NewHub constructs a registry. staleTimeout should cover roughly two
// probe cycles so one lost probe does not disconnect a healthy client.
func NewHub(probeInterval, staleTimeout time.Duration, log zerolog.Logger) *Hub {
	return &Hub{
		conns:         make(map[string]*Connection),
		probeInterval: probeInterval,
		staleTimeout:  staleTimeout,
		log:           log,
	}
}

// Register enters a connection into the registry and sends the welcome
// event. A previous connection for the same actor is superseded, not
// force-closed; its own read loop will tear it down.
func (h *Hub) Register(actorID string, role model.Role, socket Socket) *Connection {
	conn := &Connection{
		ActorID:        actorID,
		Role:           role,
		socket:         socket,
		state:          StateOpen,
		lastLivenessAt: time.Now(),
	}

	h.mu.Lock()
	if _, replaced := h.conns[actorID]; replaced {
		h.log.Info().Str("actor_id", actorID).Msg("superseding existing connection")
	}
	h.conns[actorID] = conn
	h.mu.Unlock()

	welcome := model.NotificationEvent{
		Kind:          model.EventWelcome,
		TargetActorID: actorID,
		Message:       "connected",
		Priority:      model.PriorityLow,
		CreatedAt:     time.Now().UTC(),
	}
	if err := conn.writeEvent(welcome); err != nil {
		h.log.Warn().Err(err).Str("actor_id", actorID).Msg("welcome delivery failed")
	}

	h.log.Info().Str("actor_id", actorID).Str("role", string(role)).Msg("actor connected")
	return conn
}

// Unregister removes conn from the registry if it is still the current
// record for its actor, and marks it closed. A superseded connection
// unregistering must not evict its replacement.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.conns[conn.ActorID]; ok && current == conn {
		delete(h.conns, conn.ActorID)
		h.log.Info().Str("actor_id", conn.ActorID).Msg("actor disconnected")
	}
	conn.state = StateClosed
}

// Touch records an inbound liveness signal. Any message counts, not
// just explicit pongs.
func (h *Hub) Touch(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.lastLivenessAt = time.Now()
	if conn.state == StateAwaitingPong {
		conn.state = StateIdle
	}
}

// Send delivers one event to a single actor. It returns false when the
// actor has no registered connection or the channel is not writable;
// callers branch on this to decide whether the fallback path runs.
func (h *Hub) Send(actorID string, event model.NotificationEvent) bool {
	h.mu.RLock()
	conn, ok := h.conns[actorID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	if err := conn.writeEvent(event); err != nil {
		h.log.Warn().Err(err).Str("actor_id", actorID).Str("kind", string(event.Kind)).
			Msg("live delivery failed, purging connection")
		h.closeAndPurge(conn)
		return false
	}
	return true
}

// Broadcast fans an event out to every open connection, optionally
// filtered by role, and returns the successful-delivery count.
func (h *Hub) Broadcast(event model.NotificationEvent, roles ...model.Role) int {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		if len(roles) > 0 && !roleMatches(conn.Role, roles) {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.writeEvent(event); err != nil {
			h.closeAndPurge(conn)
			continue
		}
		delivered++
	}
	return delivered
}

// Connected reports whether an actor currently holds a registry entry.
func (h *Hub) Connected(actorID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[actorID]
	return ok
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Start runs the liveness watchdog until ctx is cancelled. Every probe
// interval it pings each connection and moves it to AwaitingPong;
// connections whose last liveness signal is older than the stale
// timeout are force-closed and purged.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(h.probeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.probe()
			}
		}
	}()
}

func (h *Hub) probe() {
	now := time.Now()

	h.mu.Lock()
	var stale, live []*Connection
	for _, conn := range h.conns {
		if now.Sub(conn.lastLivenessAt) > h.staleTimeout {
			stale = append(stale, conn)
			continue
		}
		conn.state = StateAwaitingPong
		live = append(live, conn)
	}
	for _, conn := range stale {
		delete(h.conns, conn.ActorID)
		conn.state = StateClosed
	}
	h.mu.Unlock()

	for _, conn := range stale {
		h.log.Info().Str("actor_id", conn.ActorID).Msg("reclaiming stale connection")
		_ = conn.socket.Close()
	}
	for _, conn := range live {
		if err := conn.writePing(); err != nil {
			h.closeAndPurge(conn)
		}
	}
}

func (h *Hub) closeAndPurge(conn *Connection) {
	h.Unregister(conn)
	_ = conn.socket.Close()
}

func roleMatches(role model.Role, filter []model.Role) bool {
	for _, r := range filter {
		if r == role {
			return true
		}
	}
	return false
}
