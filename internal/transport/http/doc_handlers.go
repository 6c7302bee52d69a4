package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

// DocHandlers provides HTTP handlers for document endpoints.
type DocHandlers struct {
	store store.DocumentStore
	log   *zerolog.Logger
}

// NewDocHandlers creates a new document handlers instance.
func NewDocHandlers(st store.DocumentStore, logger *zerolog.Logger) *DocHandlers {
	return &DocHandlers{
		store: st,
		log:   logger,
	}
}

// DocumentRequest represents create/update request bodies.
type DocumentRequest struct {
	Title   string   `json:"title" binding:"required,max=100"`
	Content string   `json:"content" binding:"required,max=5000"`
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
	Starred bool     `json:"starred"`
}

// DocumentResponse represents a document in API responses.
type DocumentResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	CreatedBy  string   `json:"createdBy"`
	TeamID     string   `json:"teamId"`
	AuthorName string   `json:"authorName"`
	Starred    bool     `json:"starred"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

func documentResponse(d *store.Document) DocumentResponse {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return DocumentResponse{
		ID:         d.ID,
		Title:      d.Title,
		Content:    d.Content,
		Summary:    d.Summary,
		Tags:       tags,
		CreatedBy:  d.CreatedBy,
		TeamID:     d.TeamID,
		AuthorName: d.AuthorName,
		Starred:    d.Starred,
		CreatedAt:  d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  d.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateDocument handles document creation. The author snapshot and
// team are taken from the authenticated identity, not the body.
// POST /api/docs
func (h *DocHandlers) CreateDocument(c *gin.Context) {
	userID, fullName, teamCode, ok := identity(c)
	if !ok {
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create document request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title and content are required"})
		return
	}

	doc := &store.Document{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Content:    req.Content,
		Summary:    req.Summary,
		Tags:       req.Tags,
		CreatedBy:  userID,
		TeamID:     teamCode,
		AuthorName: fullName,
		Starred:    req.Starred,
	}
	if err := h.store.CreateDocument(c.Request.Context(), doc); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to create document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	created, err := h.store.GetDocument(c.Request.Context(), doc.ID)
	if err != nil {
		h.log.Error().Err(err).Str("doc_id", doc.ID).Msg("failed to reload document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("doc_id", doc.ID).Str("user_id", userID).Msg("document created")
	c.JSON(http.StatusCreated, documentResponse(created))
}

// ListOwnDocuments lists documents created by the caller.
// GET /api/docs
func (h *DocHandlers) ListOwnDocuments(c *gin.Context) {
	userID, _, _, ok := identity(c)
	if !ok {
		return
	}

	docs, err := h.store.ListDocumentsByCreator(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to list documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(docs, func(d *store.Document, _ int) DocumentResponse {
		return documentResponse(d)
	}))
}

// ListTeamDocuments lists all documents in the caller's team.
// GET /api/docs/team
func (h *DocHandlers) ListTeamDocuments(c *gin.Context) {
	_, _, teamCode, ok := identity(c)
	if !ok {
		return
	}

	docs, err := h.store.ListDocumentsByTeam(c.Request.Context(), teamCode)
	if err != nil {
		h.log.Error().Err(err).Str("team_code", teamCode).Msg("failed to list team documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(docs, func(d *store.Document, _ int) DocumentResponse {
		return documentResponse(d)
	}))
}

// GetDocument retrieves a single document.
// GET /api/docs/:docID
func (h *DocHandlers) GetDocument(c *gin.Context) {
	if _, _, _, ok := identity(c); !ok {
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), c.Param("docID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to fetch document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, documentResponse(doc))
}

// UpdateDocument edits a document; the previous content is kept as a version.
// PUT /api/docs/:docID
func (h *DocHandlers) UpdateDocument(c *gin.Context) {
	if _, _, _, ok := identity(c); !ok {
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid update document request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "title and content are required"})
		return
	}

	docID := c.Param("docID")
	doc, err := h.store.GetDocument(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found"})
			return
		}
		h.log.Error().Err(err).Str("doc_id", docID).Msg("failed to fetch document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	doc.Title = req.Title
	doc.Content = req.Content
	doc.Summary = req.Summary
	doc.Tags = req.Tags
	doc.Starred = req.Starred
	if err := h.store.UpdateDocument(c.Request.Context(), doc); err != nil {
		h.log.Error().Err(err).Str("doc_id", docID).Msg("failed to update document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	updated, err := h.store.GetDocument(c.Request.Context(), docID)
	if err != nil {
		h.log.Error().Err(err).Str("doc_id", docID).Msg("failed to reload document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, documentResponse(updated))
}

// ToggleStar flips the starred flag.
// PUT /api/docs/:docID/star
func (h *DocHandlers) ToggleStar(c *gin.Context) {
	if _, _, _, ok := identity(c); !ok {
		return
	}

	docID := c.Param("docID")
	doc, err := h.store.GetDocument(c.Request.Context(), docID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "document not found"})
			return
		}
		h.log.Error().Err(err).Str("doc_id", docID).Msg("failed to fetch document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	updated, err := h.store.SetDocumentStarred(c.Request.Context(), docID, !doc.Starred)
	if err != nil {
		h.log.Error().Err(err).Str("doc_id", docID).Msg("failed to toggle star")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, documentResponse(updated))
}

// VersionResponse represents a document version snapshot.
type VersionResponse struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt"`
}

// ListVersions lists a document's prior content snapshots.
// GET /api/docs/:docID/versions
func (h *DocHandlers) ListVersions(c *gin.Context) {
	if _, _, _, ok := identity(c); !ok {
		return
	}

	versions, err := h.store.ListVersions(c.Request.Context(), c.Param("docID"))
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list versions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(versions, func(v *store.DocumentVersion, _ int) VersionResponse {
		return VersionResponse{
			ID:        v.ID,
			Content:   v.Content,
			UpdatedAt: v.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}))
}
