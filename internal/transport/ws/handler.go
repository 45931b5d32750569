package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"evalforge/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// TokenValidator checks a host token
type TokenValidator interface {
	ValidateHostToken(token string) (*model.HostClaims, error)
}

// SessionReader loads an editor session on behalf of a host
type SessionReader interface {
	Get(ctx context.Context, hostID, sessionID string) (*model.EditorSession, error)
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	auth     TokenValidator
	sessions SessionReader
	log      *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, auth TokenValidator, sessions SessionReader, log *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		auth:     auth,
		sessions: sessions,
		log:      log,
	}
}

// EditorWS handles GET /v1/ws/editor/{sessionId}. The current session is sent first,
// then one message per command applied to it.
func (h *Handler) EditorWS(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.auth.ValidateHostToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.sessions.Get(r.Context(), claims.HostID, sessionID); err != nil {
		http.Error(w, "session not available", http.StatusNotFound)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// The snapshot is read only once the viewer is registered, so no command can
	// land between the two unseen. The hub drops whichever of snapshot and update is older.
	conn := NewConnection(sessionID, claims.HostID)
	h.hub.Register(conn)
	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)

	sess, err := h.sessions.Get(r.Context(), claims.HostID, sessionID)
	if err != nil {
		h.log.Info("editor session gone before snapshot", zap.String("sessionId", sessionID), zap.Error(err))
		h.hub.Unregister(conn)
		return
	}
	h.hub.SendTo(conn, MsgSessionSnapshot, sess)

	h.log.Info("editor viewer connected",
		zap.String("sessionId", sessionID),
		zap.String("hostId", claims.HostID))
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Commands arrive over REST; inbound frames only keep the connection alive
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug("websocket closed", zap.String("sessionId", conn.SessionID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
