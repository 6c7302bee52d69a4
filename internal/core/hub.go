package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamdocs/teamdocs-server/internal/metrics"
	"github.com/teamdocs/teamdocs-server/internal/store"
)

// Hub coordinates realtime chat: it owns the room table, binds
// connections to chat sessions, and dispatches events. Each connection
// handles one command at a time (its pump goroutine), while the run
// loop applies room mutations and broadcasts in a single ordered
// stream, so broadcast order always matches store append order.
type Hub struct {
	resolver *Resolver
	store    store.ChatStore
	presence *Presence
	log      zerolog.Logger

	register   chan *Client
	unregister chan *Client
	effects    chan func()

	rooms   map[string]*Room
	clients map[*Client]struct{}

	sessionMu    sync.Mutex
	sessionLocks map[string]*sync.Mutex

	timeout time.Duration
}

// NewHub creates a hub over the given chat store and presence tracker.
// A nil logger disables logging; a non-positive storeTimeout falls back
// to the default.
func NewHub(chatStore store.ChatStore, presence *Presence, logger *zerolog.Logger, storeTimeout time.Duration) *Hub {
	lg := zerolog.Nop()
	if logger != nil {
		lg = *logger
	}
	if presence == nil {
		presence = NewPresence()
	}
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Hub{
		resolver:     NewResolver(chatStore, storeTimeout),
		store:        chatStore,
		presence:     presence,
		log:          lg,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		effects:      make(chan func(), 64),
		rooms:        make(map[string]*Room),
		clients:      make(map[*Client]struct{}),
		sessionLocks: make(map[string]*sync.Mutex),
		timeout:      storeTimeout,
	}
}

// Presence returns the hub's presence tracker.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Resolver returns the hub's session resolver.
func (h *Hub) Resolver() *Resolver {
	return h.resolver
}

// RegisterClient adds a connection to the hub and starts handling its
// commands. Blocks until the run loop picks it up.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection: presence entry and all room
// subscriptions are released as one cleanup step on the run loop.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Run processes registrations and ordered effects until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.pump(ctx, c)
		case c := <-h.unregister:
			h.removeClient(c)
		case fn := <-h.effects:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// removeClient runs on the hub loop.
func (h *Hub) removeClient(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for sessionID := range c.Rooms {
		if room, ok := h.rooms[sessionID]; ok {
			room.RemoveClient(c)
			if room.Empty() {
				delete(h.rooms, sessionID)
			}
		}
	}
	c.Rooms = make(map[string]struct{})

	h.presence.MarkOffline(c.ConnID)

	// Stops the pump goroutine. Safe: the transport joins its read and
	// write loops before unregistering, so no sender remains.
	close(c.Commands)

	h.log.Debug().Str("conn_id", c.ConnID).Str("user_id", c.UserID).Msg("client unregistered")
}

// pump handles one connection's commands, one at a time. Store I/O
// blocks only this connection; other connections keep processing.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			h.handle(ctx, c, cmd)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) handle(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoinChat:
		h.handleJoin(ctx, c, cmd)
	case CommandSendMessage:
		h.handleSend(ctx, c, cmd)
	case CommandPresenceUpdate:
		h.presence.MarkOnline(c.UserID, c.ConnID)
	case CommandPresenceQuery:
		c.send(&Event{
			Kind:   EventOnlineStatus,
			UserID: cmd.TargetUserID,
			Online: h.presence.IsOnline(cmd.TargetUserID),
		})
	default:
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, cmd *Command) {
	session, err := h.resolver.Resolve(ctx, c.UserID, cmd.TargetUserID)
	if err != nil {
		c.send(&Event{Kind: EventError, Error: classify(err)})
		return
	}

	h.effects <- func() {
		// The connection may have unregistered while the resolve was in
		// flight; subscribing it now would pin a dead client in the room.
		if _, ok := h.clients[c]; !ok {
			return
		}
		room, ok := h.rooms[session.ID]
		if !ok {
			room = NewRoom(session.ID)
			h.rooms[session.ID] = room
		}
		room.AddClient(c)
		c.Rooms[session.ID] = struct{}{}
		c.send(&Event{Kind: EventChatJoined, SessionID: session.ID})
	}
}

func (h *Hub) handleSend(ctx context.Context, c *Client, cmd *Command) {
	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		metrics.SendFailures.Inc()
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeValidationFailed, ErrEmptyMessage.Error())})
		return
	}
	if len(text) > MaxMessageBytes {
		metrics.SendFailures.Inc()
		c.send(&Event{Kind: EventError, Error: coreError(ErrCodeValidationFailed, ErrOversized.Error())})
		return
	}

	senderName := cmd.SenderName
	if senderName == "" {
		senderName = c.Name
	}

	session, err := h.resolver.Resolve(ctx, c.UserID, cmd.TargetUserID)
	if err != nil {
		metrics.SendFailures.Inc()
		c.send(&Event{Kind: EventError, Error: classify(err)})
		return
	}

	record := &store.ChatMessage{
		SenderID:   c.UserID,
		SenderName: senderName,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}

	// The per-session lock is held across append and broadcast enqueue:
	// whichever append lands first enqueues its broadcast first, so
	// subscribers observe messages in store append order.
	lock := h.sessionLock(session.ID)
	lock.Lock()
	err = retryStore(ctx, h.timeout, func(opCtx context.Context) error {
		return h.store.AppendMessage(opCtx, session.ID, record)
	})
	if err != nil {
		lock.Unlock()
		metrics.SendFailures.Inc()
		h.log.Warn().Err(err).Str("session_id", session.ID).Msg("append message failed")
		c.send(&Event{Kind: EventError, Error: classify(err)})
		return
	}
	metrics.MessagesPersisted.Inc()

	msg := Message{
		ID:         record.ID,
		SessionID:  session.ID,
		SenderID:   record.SenderID,
		SenderName: record.SenderName,
		Text:       record.Text,
		CreatedAt:  record.CreatedAt,
	}
	h.effects <- func() {
		if room, ok := h.rooms[session.ID]; ok {
			room.Broadcast(&Event{Kind: EventMessageReceived, SessionID: session.ID, Message: msg})
			metrics.MessagesBroadcast.Inc()
		}
	}
	lock.Unlock()
}

func (h *Hub) sessionLock(sessionID string) *sync.Mutex {
	h.sessionMu.Lock()
	defer h.sessionMu.Unlock()
	lock, ok := h.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		h.sessionLocks[sessionID] = lock
	}
	return lock
}

// classify maps an error to a wire-level CoreError.
func classify(err error) *CoreError {
	switch {
	case errors.Is(err, ErrSelfChat), errors.Is(err, ErrEmptyUserID),
		errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrOversized):
		return coreError(ErrCodeValidationFailed, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return coreError(ErrCodeNotFound, "not found")
	default:
		return coreError(ErrCodeStoreUnavailable, "storage temporarily unavailable")
	}
}
