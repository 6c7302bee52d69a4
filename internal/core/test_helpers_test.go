package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

// fakeChatStore is an in-memory ChatStore with optional fault injection.
type fakeChatStore struct {
	mu       sync.Mutex
	sessions map[string]*store.ChatSession // by pair key
	byID     map[string]*store.ChatSession
	messages map[string][]*store.ChatMessage
	nextID   int64

	failAppend   error
	failLookups  error
	blockLookups bool
	createDelay  time.Duration
	createCalls  int
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{
		sessions: make(map[string]*store.ChatSession),
		byID:     make(map[string]*store.ChatSession),
		messages: make(map[string][]*store.ChatMessage),
	}
}

func (f *fakeChatStore) CreateSession(ctx context.Context, session *store.ChatSession) error {
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if _, ok := f.sessions[session.PairKey]; ok {
		return store.ErrConflict
	}
	cp := *session
	f.sessions[session.PairKey] = &cp
	f.byID[session.ID] = &cp
	return nil
}

func (f *fakeChatStore) GetSession(ctx context.Context, id string) (*store.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLookups != nil {
		return nil, f.failLookups
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeChatStore) GetSessionByPairKey(ctx context.Context, pairKey string) (*store.ChatSession, error) {
	if f.blockLookups {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failLookups != nil {
		return nil, f.failLookups
	}
	s, ok := f.sessions[pairKey]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeChatStore) AppendMessage(ctx context.Context, sessionID string, msg *store.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAppend != nil {
		return f.failAppend
	}
	if _, ok := f.byID[sessionID]; !ok {
		return store.ErrNotFound
	}
	f.nextID++
	msg.ID = f.nextID
	msg.SessionID = sessionID
	cp := *msg
	f.messages[sessionID] = append(f.messages[sessionID], &cp)
	return nil
}

func (f *fakeChatStore) ListMessages(ctx context.Context, sessionID string) ([]*store.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*store.ChatMessage, 0, len(f.messages[sessionID]))
	for _, m := range f.messages[sessionID] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeChatStore) messageCount(sessionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages[sessionID])
}

var errStoreDown = errors.New("store down")

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}
