package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/teamdocs/teamdocs-server/internal/ai"
)

// AIHandlers provides HTTP handlers for document AI helpers.
type AIHandlers struct {
	ai  *ai.Service
	log *zerolog.Logger
}

// NewAIHandlers creates a new AI handlers instance.
func NewAIHandlers(aiService *ai.Service, logger *zerolog.Logger) *AIHandlers {
	return &AIHandlers{
		ai:  aiService,
		log: logger,
	}
}

// AIRequest represents an AI helper request body.
type AIRequest struct {
	Content string `json:"content" binding:"required"`
}

// Summarize produces a short summary of the content.
// POST /api/ai/summarize
func (h *AIHandlers) Summarize(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing content"})
		return
	}

	summary, err := h.ai.Summarize(c.Request.Context(), req.Content)
	if err != nil {
		h.respondError(c, err, "summarize")
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GenerateTags extracts tags from the content.
// POST /api/ai/tags
func (h *AIHandlers) GenerateTags(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing content"})
		return
	}

	tags, err := h.ai.GenerateTags(c.Request.Context(), req.Content)
	if err != nil {
		h.respondError(c, err, "generate tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// ImproveWriting rewrites the content.
// POST /api/ai/improve
func (h *AIHandlers) ImproveWriting(c *gin.Context) {
	var req AIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing content"})
		return
	}

	improved, err := h.ai.ImproveWriting(c.Request.Context(), req.Content)
	if err != nil {
		h.respondError(c, err, "improve writing")
		return
	}

	c.JSON(http.StatusOK, gin.H{"improved": improved})
}

func (h *AIHandlers) respondError(c *gin.Context, err error, op string) {
	if errors.Is(err, ai.ErrEmptyContent) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing content"})
		return
	}
	h.log.Error().Err(err).Str("op", op).Msg("ai provider call failed")
	c.JSON(http.StatusBadGateway, ErrorResponse{Error: "text generation failed"})
}
