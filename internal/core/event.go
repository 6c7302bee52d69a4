package core

// EventKind is a notification the core emits to connections.
type EventKind int

const (
	// EventChatJoined confirms a join and carries the session ID.
	EventChatJoined EventKind = iota
	// EventMessageReceived delivers a persisted message to a session's room.
	EventMessageReceived
	// EventOnlineStatus answers a presence query.
	EventOnlineStatus
	// EventError reports a failure to the originating connection only.
	EventError
)

// Event is sent to connections to describe what happened.
type Event struct {
	Kind      EventKind
	SessionID string
	Message   Message
	UserID    string
	Online    bool
	Error     *CoreError
}
