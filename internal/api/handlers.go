package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"counsel/internal/dialogue"
	"counsel/internal/embedding"
	"counsel/internal/entry"
	"counsel/internal/profile"
)

// ConversationStore is the session persistence needed by the conversation
// handlers. Satisfied by dialogue.SessionStore.
type ConversationStore interface {
	Load(ctx context.Context, userID uint, kind dialogue.Kind) (*dialogue.ConversationSession, error)
	Save(ctx context.Context, userID uint, s *dialogue.ConversationSession) error
	Clear(ctx context.Context, userID uint, kind dialogue.Kind) error
}

// Services bundles the explicitly injected core components. Constructed once
// in main, passed into the router.
type Services struct {
	Engine     *dialogue.Engine
	Sessions   ConversationStore
	Guard      *dialogue.TurnGuard
	Embeddings *embedding.Service
	Entries    *entry.Store
	Profiles   *profile.Synthesizer
}

// Helper to extract user ID from context
func getUserIDFromContext(c *gin.Context) (uint, bool) {
	idVal, exists := c.Get("userId")
	if !exists {
		return 0, false
	}
	switch v := idVal.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
