package core

// CommandKind describes what the connection wants to do.
type CommandKind int

const (
	// CommandJoinChat subscribes the connection to the session shared
	// with a target user, creating the session on first contact.
	CommandJoinChat CommandKind = iota
	// CommandSendMessage persists a message and broadcasts it to the
	// session's room, including the sender's own connection.
	CommandSendMessage
	// CommandPresenceUpdate registers the connection as online for its user.
	CommandPresenceUpdate
	// CommandPresenceQuery asks whether a target user is online.
	CommandPresenceQuery
)

// Command represents an action requested by a connection.
type Command struct {
	Kind         CommandKind
	TargetUserID string
	SenderName   string
	Text         string
}
