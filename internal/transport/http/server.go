package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/teamdocs/teamdocs-server/internal/ai"
	"github.com/teamdocs/teamdocs-server/internal/auth"
	"github.com/teamdocs/teamdocs-server/internal/config"
	"github.com/teamdocs/teamdocs-server/internal/core"
	"github.com/teamdocs/teamdocs-server/internal/metrics"
	"github.com/teamdocs/teamdocs-server/internal/store"
)

// NewServer builds the HTTP server with all API routes.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, aiService *ai.Service, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authHandlers := NewAuthHandlers(authService, logger)
	router.POST("/api/signup", authHandlers.Signup)
	router.POST("/api/login", authHandlers.Login)

	authorized := router.Group("/api")
	authorized.Use(AuthMiddleware(authService, logger))

	docHandlers := NewDocHandlers(st, logger)
	authorized.POST("/docs", docHandlers.CreateDocument)
	authorized.GET("/docs", docHandlers.ListOwnDocuments)
	authorized.GET("/docs/team", docHandlers.ListTeamDocuments)
	authorized.GET("/docs/:docID", docHandlers.GetDocument)
	authorized.PUT("/docs/:docID", docHandlers.UpdateDocument)
	authorized.PUT("/docs/:docID/star", docHandlers.ToggleStar)
	authorized.GET("/docs/:docID/versions", docHandlers.ListVersions)

	teamHandlers := NewTeamHandlers(st, logger)
	authorized.GET("/profile", teamHandlers.Profile)
	authorized.GET("/team", teamHandlers.ListTeamMembers)
	authorized.GET("/users/:userID", teamHandlers.GetUser)

	chatHandlers := NewChatHandlers(hub.Resolver(), st, logger)
	authorized.GET("/chat/:userID/:targetUserID", chatHandlers.GetHistory)

	aiHandlers := NewAIHandlers(aiService, logger)
	authorized.POST("/ai/summarize", aiHandlers.Summarize)
	authorized.POST("/ai/tags", aiHandlers.GenerateTags)
	authorized.POST("/ai/improve", aiHandlers.ImproveWriting)

	router.GET("/ws", gin.WrapF(NewWSHandler(hub, authService, logger).Handle))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
