package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/teamdocs/teamdocs-server/internal/store"
)

// TeamHandlers provides HTTP handlers for profile and team lookups.
type TeamHandlers struct {
	store store.UserStore
	log   *zerolog.Logger
}

// NewTeamHandlers creates a new team handlers instance.
func NewTeamHandlers(st store.UserStore, logger *zerolog.Logger) *TeamHandlers {
	return &TeamHandlers{
		store: st,
		log:   logger,
	}
}

// UserResponse represents a user in API responses. Password hashes
// never leave the store layer through this type.
type UserResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	TeamCode  string `json:"teamCode"`
	CreatedAt string `json:"createdAt"`
}

func userResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		TeamCode:  u.TeamCode,
		CreatedAt: u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Profile returns the authenticated user's profile.
// GET /api/profile
func (h *TeamHandlers) Profile(c *gin.Context) {
	userID, _, _, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}

// ListTeamMembers returns all users sharing the caller's team code.
// GET /api/team
func (h *TeamHandlers) ListTeamMembers(c *gin.Context) {
	_, _, teamCode, ok := identity(c)
	if !ok {
		return
	}

	users, err := h.store.ListUsersByTeam(c.Request.Context(), teamCode)
	if err != nil {
		h.log.Error().Err(err).Str("team_code", teamCode).Msg("failed to list team members")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, lo.Map(users, func(u *store.User, _ int) UserResponse {
		return userResponse(u)
	}))
}

// GetUser returns the display profile of a chat target.
// GET /api/users/:userID
func (h *TeamHandlers) GetUser(c *gin.Context) {
	if _, _, _, ok := identity(c); !ok {
		return
	}

	user, err := h.store.GetUserByID(c.Request.Context(), c.Param("userID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Msg("failed to fetch user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, userResponse(user))
}
