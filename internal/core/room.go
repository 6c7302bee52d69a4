package core

// Room is the runtime broadcast group of connections subscribed to one
// chat session's new messages. Only the hub run loop touches it.
type Room struct {
	SessionID string
	clients   map[*Client]struct{}
}

// NewRoom constructs a room with no clients.
func NewRoom(sessionID string) *Room {
	return &Room{
		SessionID: sessionID,
		clients:   make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the room. Returns true if newly added.
func (r *Room) AddClient(c *Client) bool {
	if _, exists := r.clients[c]; exists {
		return false
	}
	r.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the room. Returns true if removed.
func (r *Room) RemoveClient(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	return true
}

// Broadcast sends an event to all clients in the room, including the
// connection the event originated from.
func (r *Room) Broadcast(event *Event) {
	for client := range r.clients {
		client.send(event)
	}
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.clients) == 0
}
