package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// Buffer size for outgoing messages per connection
	sendBufferSize = 64
)

// ConnID identifies a single event-stream connection
type ConnID string

// Conn is one live event-stream connection. A connection starts anonymous
// and is bound to a username once the client identifies itself.
type Conn struct {
	id          ConnID
	username    string
	send        chan []byte
	connectedAt time.Time
}

// ID returns the connection's identifier
func (c *Conn) ID() ConnID {
	return c.id
}

// Send returns the channel the connection's writer drains
func (c *Conn) Send() <-chan []byte {
	return c.send
}

// Registry tracks live connections and which user each belongs to.
// A user may hold several connections at once; messages addressed to a
// user go to all of them.
type Registry struct {
	mu     sync.RWMutex
	conns  map[ConnID]*Conn
	byUser map[string]map[ConnID]*Conn
	logger *slog.Logger
}

// NewRegistry creates a connection Registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		conns:  make(map[ConnID]*Conn),
		byUser: make(map[string]map[ConnID]*Conn),
		logger: logger.With(slog.String("component", "notify")),
	}
}

// Connect registers a new anonymous connection
func (r *Registry) Connect() *Conn {
	conn := &Conn{
		id:          ConnID(uuid.NewString()),
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}

	r.mu.Lock()
	r.conns[conn.id] = conn
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("connection registered",
		slog.String("conn_id", string(conn.id)),
		slog.Int("total_connections", total))
	return conn
}

// Identify binds a connection to a username. Re-identifying with a
// different name moves the connection; identifying twice with the same
// name is a no-op.
func (r *Registry) Identify(id ConnID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[id]
	if !ok {
		return
	}
	if conn.username == username {
		return
	}

	if conn.username != "" {
		r.detachLocked(conn)
	}
	conn.username = username

	set, ok := r.byUser[username]
	if !ok {
		set = make(map[ConnID]*Conn)
		r.byUser[username] = set
	}
	set[id] = conn

	r.logger.Info("connection identified",
		slog.String("conn_id", string(id)),
		slog.String("username", username))
}

// Disconnect removes a connection and closes its send channel.
// Unknown connection ids are ignored.
func (r *Registry) Disconnect(id ConnID) {
	r.mu.Lock()
	conn, ok := r.conns[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, id)
	if conn.username != "" {
		r.detachLocked(conn)
	}
	total := len(r.conns)
	r.mu.Unlock()

	close(conn.send)
	r.logger.Info("connection unregistered",
		slog.String("conn_id", string(id)),
		slog.Duration("connection_duration", time.Since(conn.connectedAt)),
		slog.Int("total_connections", total))
}

// detachLocked removes a connection from its user's set. Caller holds mu.
func (r *Registry) detachLocked(conn *Conn) {
	set, ok := r.byUser[conn.username]
	if !ok {
		return
	}
	delete(set, conn.id)
	if len(set) == 0 {
		delete(r.byUser, conn.username)
	}
}

// SendToUser delivers a message to every connection bound to a user.
// Connections with a full buffer drop the message rather than block.
// Returns the number of connections the message reached.
func (r *Registry) SendToUser(username string, message []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sent := 0
	for _, conn := range r.byUser[username] {
		select {
		case conn.send <- message:
			sent++
		default:
			r.logger.Warn("message dropped - connection buffer full",
				slog.String("conn_id", string(conn.id)),
				slog.String("username", username))
		}
	}
	return sent
}

// SendToConn delivers a message to a single connection
func (r *Registry) SendToConn(id ConnID, message []byte) bool {
	r.mu.RLock()
	conn, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case conn.send <- message:
		return true
	default:
		r.logger.Warn("message dropped - connection buffer full",
			slog.String("conn_id", string(id)))
		return false
	}
}

// ConnectionCount returns the number of live connections
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// UserConnectionCount returns the number of connections bound to a user
func (r *Registry) UserConnectionCount(username string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[username])
}
