package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"counsel/internal/auth"
	"counsel/internal/config"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client, svc *Services) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/counsel" or any custom path, always starts with '/'
	sessions := auth.NewSessionStore(rdb)

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, sessions))
		group.POST("/auth/logout", auth.Middleware(cfg, sessions, false), LogoutHandler(sessions))
		group.GET("/auth/me", auth.Middleware(cfg, sessions, false), MeHandler())

		authed := group.Group("", auth.Middleware(cfg, sessions, false))

		// --- Conversations ---
		authed.GET("/conversations/:kind", GetConversationHandler(svc))
		authed.POST("/conversations/:kind/messages", SendTurnHandler(svc))
		authed.POST("/conversations/:kind/confirm", ConfirmHandler(svc))
		authed.POST("/conversations/:kind/reset", ResetHandler(svc))

		// --- Entries ---
		authed.GET("/entries", ListEntriesHandler(svc))
		authed.GET("/entries/:id", GetEntryHandler(svc))
		authed.PUT("/entries/:id", UpdateEntryHandler(svc))
		authed.DELETE("/entries/:id", DeleteEntryHandler(svc))
		authed.GET("/entries/:id/versions", EntryVersionsHandler(svc))
		authed.GET("/entries/:id/similar", SimilarEntriesHandler(svc))

		// --- Profile ---
		authed.GET("/profile", GetProfileHandler(svc))
		authed.POST("/profile/refresh", RefreshProfileHandler(svc))
	}
	return r
}
