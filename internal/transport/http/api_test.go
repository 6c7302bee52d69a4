package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamdocs/teamdocs-server/internal/ai"
	"github.com/teamdocs/teamdocs-server/internal/auth"
	"github.com/teamdocs/teamdocs-server/internal/config"
	"github.com/teamdocs/teamdocs-server/internal/core"
	"github.com/teamdocs/teamdocs-server/internal/log"
	"github.com/teamdocs/teamdocs-server/internal/store"
	"github.com/teamdocs/teamdocs-server/internal/store/sqlite"
)

type apiFixture struct {
	handler http.Handler
	store   *sqlite.SQLiteStore
	hub     *core.Hub
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := log.New("error", false)
	cfg := config.Default()
	cfg.JWTSecret = "test-secret-at-least-32-chars-long"

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	aiService := ai.NewService(ai.NewClient("http://127.0.0.1:0", "", time.Second), "test-model")

	hub := core.NewHub(st, core.NewPresence(), logger, cfg.StoreTimeout)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, authService, st, aiService, cfg, logger)
	return &apiFixture{handler: server.Handler, store: st, hub: hub}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) signup(t *testing.T, fullName, email, teamCode string) AuthResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": "Sup3r$ecret",
		"teamCode": teamCode,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupLoginFlow(t *testing.T) {
	f := newAPIFixture(t)

	created := f.signup(t, "Alice Anderson", "alice@example.com", "")
	assert.NotEmpty(t, created.Token)
	assert.Len(t, created.TeamCode, 8)

	// Duplicate signup conflicts.
	rec := f.do(t, http.MethodPost, "/api/signup", "", map[string]string{
		"fullName": "Alice Anderson",
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChatHistoryEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	alice := f.signup(t, "Alice Anderson", "alice@example.com", "")
	bob := f.signup(t, "Bob Brown", "bob@example.com", alice.TeamCode)

	// First call lazily creates the session and returns an empty history.
	rec := f.do(t, http.MethodGet, "/api/chat/"+alice.User.ID+"/"+bob.User.ID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var history ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.NotEmpty(t, history.ID)
	assert.Len(t, history.Messages, 0)
	assert.ElementsMatch(t, []string{alice.User.ID, bob.User.ID}, history.Participants)

	// Seed a message directly and re-read.
	msg := &store.ChatMessage{SenderID: alice.User.ID, SenderName: "Alice Anderson", Text: "hi bob", CreatedAt: time.Now().UTC()}
	require.NoError(t, f.store.AppendMessage(context.Background(), history.ID, msg))

	rec = f.do(t, http.MethodGet, "/api/chat/"+bob.User.ID+"/"+alice.User.ID, bob.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second ChatHistoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, history.ID, second.ID)
	require.Len(t, second.Messages, 1)
	assert.Equal(t, "hi bob", second.Messages[0].Text)

	// A caller may only read their own conversations.
	rec = f.do(t, http.MethodGet, "/api/chat/"+bob.User.ID+"/"+alice.User.ID, alice.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Self chat is rejected.
	rec = f.do(t, http.MethodGet, "/api/chat/"+alice.User.ID+"/"+alice.User.ID, alice.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.signup(t, "Alice Anderson", "alice@example.com", "")

	rec := f.do(t, http.MethodPost, "/api/docs", alice.Token, map[string]any{
		"title":   "Design notes",
		"content": "v1 content",
		"tags":    []string{"draft"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doc DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, alice.User.ID, doc.CreatedBy)

	rec = f.do(t, http.MethodPut, "/api/docs/"+doc.ID, alice.Token, map[string]any{
		"title":   "Design notes",
		"content": "v2 content",
		"tags":    []string{"draft", "review"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/docs/"+doc.ID+"/versions", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var versions []VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
	require.Len(t, versions, 1)
	assert.Equal(t, "v1 content", versions[0].Content)

	rec = f.do(t, http.MethodGet, "/api/docs", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "v2 content", docs[0].Content)
}

func TestTeamEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	alice := f.signup(t, "Alice Anderson", "alice@example.com", "")
	_ = f.signup(t, "Bob Brown", "bob@example.com", alice.TeamCode)

	rec := f.do(t, http.MethodGet, "/api/team", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var members []UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	assert.Len(t, members, 2)

	rec = f.do(t, http.MethodGet, "/api/profile", alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice@example.com", profile.Email)
}
