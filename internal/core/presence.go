package core

import "sync"

// Presence tracks which users currently hold an open realtime
// connection in this process. It is advisory only: entries live as
// long as the process runs and the connection is open, and a user with
// several simultaneous connections stays online until the last one
// disconnects.
type Presence struct {
	mu sync.RWMutex
	// userID -> set of connection IDs
	users map[string]map[string]struct{}
	// connID -> userID reverse index for disconnect cleanup
	owners map[string]string
}

// NewPresence constructs an empty presence tracker.
func NewPresence() *Presence {
	return &Presence{
		users:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// MarkOnline registers a connection for a user. Repeated calls for the
// same connection are idempotent.
func (p *Presence) MarkOnline(userID, connID string) {
	if userID == "" || connID == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.users[userID]
	if !ok {
		conns = make(map[string]struct{})
		p.users[userID] = conns
	}
	conns[connID] = struct{}{}
	p.owners[connID] = userID
}

// MarkOffline removes whichever user entry owns the connection. A
// handle that never registered is a no-op.
func (p *Presence) MarkOffline(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.owners[connID]
	if !ok {
		return
	}
	delete(p.owners, connID)

	conns := p.users[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(p.users, userID)
	}
}

// IsOnline reports whether the user has at least one open connection.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users[userID]) > 0
}

// OnlineCount returns the number of distinct online users.
func (p *Presence) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}
