package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSession(t *testing.T, s *SQLiteStore, id, a, b string) *store.ChatSession {
	t.Helper()
	if b < a {
		a, b = b, a
	}
	session := &store.ChatSession{
		ID:      id,
		PairKey: "dm:" + a + ":" + b,
		UserA:   a,
		UserB:   b,
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func TestCreateSessionPairKeyUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedSession(t, s, "sess-1", "alice", "bob")

	dup := &store.ChatSession{
		ID:      "sess-2",
		PairKey: "dm:alice:bob",
		UserA:   "alice",
		UserB:   "bob",
	}
	err := s.CreateSession(ctx, dup)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate pair key, got %v", err)
	}

	got, err := s.GetSessionByPairKey(ctx, "dm:alice:bob")
	if err != nil {
		t.Fatalf("get by pair key: %v", err)
	}
	if got.ID != "sess-1" {
		t.Fatalf("the first insert must win, got session %s", got.ID)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetSession(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetSessionByPairKey(ctx, "dm:x:y"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendAndListMessagesInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	session := seedSession(t, s, "sess-1", "alice", "bob")

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		msg := &store.ChatMessage{
			SenderID:   "alice",
			SenderName: "Alice A",
			Text:       text,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.AppendMessage(ctx, session.ID, msg); err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
		if msg.ID == 0 {
			t.Fatalf("append must assign the message ID")
		}
	}

	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != len(texts) {
		t.Fatalf("expected %d messages, got %d", len(texts), len(messages))
	}
	for i, msg := range messages {
		if msg.Text != texts[i] {
			t.Fatalf("message %d out of order: got %q want %q", i, msg.Text, texts[i])
		}
		if i > 0 && messages[i-1].ID >= msg.ID {
			t.Fatalf("IDs must be strictly increasing: %d then %d", messages[i-1].ID, msg.ID)
		}
	}
}

func TestAppendMessageMissingSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg := &store.ChatMessage{SenderID: "alice", SenderName: "Alice A", Text: "lost", CreatedAt: time.Now().UTC()}
	err := s.AppendMessage(ctx, "ghost", msg)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Nothing may be persisted for the failed append.
	messages, err := s.ListMessages(ctx, "ghost")
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}
}

func TestListMessagesEmptySession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	session := seedSession(t, s, "sess-1", "alice", "bob")

	messages, err := s.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("an empty history is not an error: %v", err)
	}
	if messages == nil || len(messages) != 0 {
		t.Fatalf("expected empty slice, got %#v", messages)
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &store.User{
		ID:           "u-1",
		FullName:     "Alice Anderson",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		TeamCode:     "TEAM1234",
	}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := &store.User{ID: "u-2", FullName: "Other", Email: "alice@example.com", PasswordHash: "hash", TeamCode: "TEAM1234"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "u-1" || got.FullName != "Alice Anderson" {
		t.Fatalf("unexpected user: %+v", got)
	}

	members, err := s.ListUsersByTeam(ctx, "TEAM1234")
	if err != nil {
		t.Fatalf("list team: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 team member, got %d", len(members))
	}
}

func TestDocumentUpdateSnapshotsVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	doc := &store.Document{
		ID:         "d-1",
		Title:      "Design notes",
		Content:    "v1 content",
		Tags:       []string{"draft"},
		CreatedBy:  "u-1",
		TeamID:     "TEAM1234",
		AuthorName: "Alice Anderson",
	}
	if err := s.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	doc.Content = "v2 content"
	doc.Tags = []string{"draft", "review"}
	if err := s.UpdateDocument(ctx, doc); err != nil {
		t.Fatalf("update document: %v", err)
	}

	versions, err := s.ListVersions(ctx, doc.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 1 || versions[0].Content != "v1 content" {
		t.Fatalf("expected one snapshot of the prior content, got %+v", versions)
	}

	got, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.Content != "v2 content" || len(got.Tags) != 2 {
		t.Fatalf("unexpected document after update: %+v", got)
	}

	starred, err := s.SetDocumentStarred(ctx, doc.ID, true)
	if err != nil {
		t.Fatalf("set starred: %v", err)
	}
	if !starred.Starred {
		t.Fatal("document should be starred")
	}
}
