package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/teamdocs/teamdocs-server/internal/core"
	"github.com/teamdocs/teamdocs-server/internal/store"
)

// ChatHandlers provides the read-only chat history endpoint.
type ChatHandlers struct {
	resolver *core.Resolver
	store    store.ChatStore
	log      *zerolog.Logger
}

// NewChatHandlers creates a new chat handlers instance.
func NewChatHandlers(resolver *core.Resolver, st store.ChatStore, logger *zerolog.Logger) *ChatHandlers {
	return &ChatHandlers{
		resolver: resolver,
		store:    st,
		log:      logger,
	}
}

// ChatMessageResponse represents one message in history responses.
type ChatMessageResponse struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// ChatHistoryResponse represents a session with its full message log.
type ChatHistoryResponse struct {
	ID           string                `json:"id"`
	Participants []string              `json:"participants"`
	Messages     []ChatMessageResponse `json:"messages"`
}

// GetHistory returns the conversation between two users in
// chronological order, resolving (and lazily creating) the session.
// Repeated calls return the same session.
// GET /api/chat/:userID/:targetUserID
func (h *ChatHandlers) GetHistory(c *gin.Context) {
	callerID, _, _, ok := identity(c)
	if !ok {
		return
	}

	userID := c.Param("userID")
	targetUserID := c.Param("targetUserID")
	if userID != callerID {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "cannot read another user's conversations"})
		return
	}

	session, err := h.resolver.Resolve(c.Request.Context(), userID, targetUserID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSelfChat), errors.Is(err, core.ErrEmptyUserID):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		default:
			h.log.Error().Err(err).Msg("failed to resolve chat session")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch chat history"})
		}
		return
	}

	messages, err := h.store.ListMessages(c.Request.Context(), session.ID)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", session.ID).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch chat history"})
		return
	}

	participants := session.Participants()
	c.JSON(http.StatusOK, ChatHistoryResponse{
		ID:           session.ID,
		Participants: participants[:],
		Messages: lo.Map(messages, func(m *store.ChatMessage, _ int) ChatMessageResponse {
			return ChatMessageResponse{
				SenderID:   m.SenderID,
				SenderName: m.SenderName,
				Text:       m.Text,
				Timestamp:  m.CreatedAt.Unix(),
			}
		}),
	})
}
