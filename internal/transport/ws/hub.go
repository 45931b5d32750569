package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgSessionSnapshot MessageType = "session_snapshot"
	MsgSessionUpdated  MessageType = "session_updated"
	MsgSessionClosed   MessageType = "session_closed"
	MsgError           MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one viewer of an editor session
type Connection struct {
	SessionID string
	HostID    string
	Send      chan []byte

	// last session revision delivered; owned by the hub loop
	revision int64
}

// Revisioned payloads carry the session revision they describe. The hub never hands a
// viewer a revision older than, or equal to, one it already delivered.
type Revisioned interface {
	CurrentRevision() int64
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(sessionID, hostID string) *Connection {
	return &Connection{
		SessionID: sessionID,
		HostID:    hostID,
		Send:      make(chan []byte, 256),
		revision:  -1,
	}
}

// BroadcastMessage is a message to broadcast. With Disconnect set the session's viewers
// are closed instead, after every message queued before it has been delivered.
// With Target set only that viewer receives it.
type BroadcastMessage struct {
	SessionID  string
	Message    *Message
	Disconnect bool
	Target     *Connection

	Revision int64
	Ordered  bool
}

// Hub fans editor events out to every viewer of a session
type Hub struct {
	// session -> viewers
	sessions map[string]map[*Connection]struct{}
	mu       sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	log *zap.Logger
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(log *zap.Logger) *Hub {
	h := &Hub{
		sessions:   make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[*Connection]struct{})
			}
			h.sessions[conn.SessionID][conn] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("viewer connected", zap.String("sessionId", conn.SessionID), zap.String("hostId", conn.HostID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if viewers, ok := h.sessions[conn.SessionID]; ok {
				if _, ok := viewers[conn]; ok {
					delete(viewers, conn)
					close(conn.Send)
					if len(viewers) == 0 {
						delete(h.sessions, conn.SessionID)
					}
					h.log.Debug("viewer disconnected", zap.String("sessionId", conn.SessionID))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Disconnect {
				h.mu.Lock()
				for conn := range h.sessions[msg.SessionID] {
					close(conn.Send)
				}
				delete(h.sessions, msg.SessionID)
				h.mu.Unlock()
				continue
			}
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error("failed to encode ws message", zap.Error(err))
				continue
			}
			h.mu.RLock()
			viewers := h.sessions[msg.SessionID]
			if msg.Target != nil {
				if _, ok := viewers[msg.Target]; ok {
					deliver(msg.Target, data, msg)
				}
			} else {
				for conn := range viewers {
					deliver(conn, data, msg)
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, viewers := range h.sessions {
				for conn := range viewers {
					close(conn.Send)
				}
			}
			h.sessions = make(map[string]map[*Connection]struct{})
			h.mu.Unlock()
			return
		}
	}
}

func deliver(conn *Connection, data []byte, msg *BroadcastMessage) {
	if msg.Ordered {
		if msg.Revision <= conn.revision {
			return
		}
		conn.revision = msg.Revision
	}
	select {
	case conn.Send <- data:
	default:
		// Drop message if buffer full
	}
}

// Register adds a connection. After Close the connection is closed straight away.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// ViewerCount returns how many connections watch a session
func (h *Hub) ViewerCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// BroadcastToSession sends a message to every viewer of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	h.enqueue(sessionID, nil, MessageType(msgType), payload)
}

// SendTo queues a message for one registered viewer, ordered with the session's broadcasts
func (h *Hub) SendTo(conn *Connection, msgType MessageType, payload interface{}) {
	h.enqueue(conn.SessionID, conn, msgType, payload)
}

func (h *Hub) enqueue(sessionID string, target *Connection, msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode ws payload", zap.String("type", string(msgType)), zap.Error(err))
		return
	}
	msg := &BroadcastMessage{
		SessionID: sessionID,
		Message:   &Message{Type: msgType, Payload: data},
		Target:    target,
	}
	if r, ok := payload.(Revisioned); ok {
		msg.Revision = r.CurrentRevision()
		msg.Ordered = true
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// DisconnectSession closes every viewer of a session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Disconnect: true}:
	case <-h.done:
	}
}

// Close stops the hub loop and closes every connection
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}
