package models

// SessionListener receives connection-level transitions from the session.
// Implementations must not block; heavy work belongs on the UI's own loop.
type SessionListener interface {
	OnConnected(addr string)
	OnDisconnected()
	OnInternalError(error)
}
