package core

// Client is one realtime connection as seen by the core layer. A user
// may hold several clients at once (multiple tabs or devices).
type Client struct {
	// ConnID identifies this connection; UserID identifies the
	// authenticated user behind it.
	ConnID   string
	UserID   string
	Name     string
	Commands chan *Command
	Events   chan *Event
	Rooms    map[string]struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(connID, userID, name string) *Client {
	if name == "" {
		name = userID
	}
	return &Client{
		ConnID:   connID,
		UserID:   userID,
		Name:     name,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		Rooms:    make(map[string]struct{}),
	}
}

// send delivers an event without blocking; slow consumers drop.
func (c *Client) send(event *Event) {
	select {
	case c.Events <- event:
	default:
	}
}
