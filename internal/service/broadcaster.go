package service

// Broadcaster pushes editor events to websocket viewers (avoids import cycle)
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToSession(string, string, interface{}) {}
func (nopBroadcaster) DisconnectSession(string)                       {}
