package presence

import (
	"sync"
	"time"

	"github.com/harborlink/marina/internal/model"
)

// State is the lifecycle position of a live connection.
type State string

const (
	StateConnecting   State = "connecting"
	StateOpen         State = "open"
	StateIdle         State = "idle"
	StateAwaitingPong State = "awaiting-pong"
	StateClosed       State = "closed"
)

// Socket is the minimal surface of a live channel the hub drives. The
// production implementation wraps a gorilla websocket; tests substitute
// in-memory fakes.
type Socket interface {
	// WriteEvent delivers one JSON event frame.
	WriteEvent(event model.NotificationEvent) error
	// WritePing sends a liveness probe.
	WritePing() error
	Close() error
}

// Connection is the registry record for one online actor. The socket
// handle is owned exclusively by this record; a replacement connection
// supersedes it in the registry without force-closing it.
type Connection struct {
	ActorID string
	Role    model.Role

	socket Socket

	// writeMu serializes socket writes; event sends and liveness pings
	// originate from different goroutines.
	writeMu sync.Mutex

	// Guarded by the hub mutex.
	state          State
	lastLivenessAt time.Time
}

func (c *Connection) writeEvent(event model.NotificationEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.socket.WriteEvent(event)
}

func (c *Connection) writePing() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.socket.WritePing()
}
