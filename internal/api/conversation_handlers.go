package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"counsel/internal/dialogue"
	"counsel/internal/entry"
)

// SendTurnHandler processes one conversation turn. Turns for the same user
// and kind are strictly sequential: a message arriving while another is in
// flight gets a 409.
func SendTurnHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		kind, err := dialogue.ParseKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown conversation kind"})
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing content"})
			return
		}

		if !svc.Guard.TryAcquire(userID, kind) {
			c.JSON(http.StatusConflict, gin.H{"error": "a turn is already in progress"})
			return
		}
		defer svc.Guard.Release(userID, kind)

		ctx := c.Request.Context()
		sess, err := svc.Sessions.Load(ctx, userID, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
			return
		}
		// Pin the session before the provider call. A brand-new session only
		// exists in memory until saved; without this the post-call identity
		// check below could never match it.
		if err := svc.Sessions.Save(ctx, userID, sess); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save conversation"})
			return
		}
		turnID := sess.TurnID

		res := svc.Engine.Step(ctx, kind, req.Content, sess.History)
		if res.Failed {
			// The failed turn is not recorded; the user just resends.
			c.JSON(http.StatusOK, gin.H{"reply": res.Reply, "complete": false})
			return
		}

		// Apply the result only if the session was not reset while the
		// provider call was outstanding.
		current, err := svc.Sessions.Load(ctx, userID, kind)
		if err != nil || current.TurnID != turnID {
			c.JSON(http.StatusConflict, gin.H{"error": "conversation was reset"})
			return
		}

		current.AppendTurn(req.Content, res.Reply)
		if res.Complete {
			current.Pending = &dialogue.PendingCompletion{
				FullText:    res.Reply,
				ShortLabel:  res.Label,
				RawResponse: res.Transcript,
			}
		}
		if err := svc.Sessions.Save(ctx, userID, current); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save conversation"})
			return
		}

		resp := gin.H{"reply": res.Reply, "complete": res.Complete}
		if res.Complete {
			resp["label"] = res.Label
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetConversationHandler returns the session's visible state.
func GetConversationHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		kind, err := dialogue.ParseKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown conversation kind"})
			return
		}
		sess, err := svc.Sessions.Load(c.Request.Context(), userID, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"kind":    sess.Kind,
			"history": sess.History,
			"pending": sess.Pending,
		})
	}
}

// ConfirmHandler commits a pending completion as a new entry.
func ConfirmHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		kind, err := dialogue.ParseKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown conversation kind"})
			return
		}

		// Confirmation serializes with turns for the same session.
		if !svc.Guard.TryAcquire(userID, kind) {
			c.JSON(http.StatusConflict, gin.H{"error": "a turn is already in progress"})
			return
		}
		defer svc.Guard.Release(userID, kind)

		ctx := c.Request.Context()
		sess, err := svc.Sessions.Load(ctx, userID, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
			return
		}
		if sess.Pending == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "nothing to confirm"})
			return
		}

		title := sess.Pending.ShortLabel
		if title == "" {
			title = kind.Config().FallbackLabel
		}
		e := &entry.Entry{
			Kind:        entry.Kind(kind),
			UserID:      userID,
			Title:       title,
			Description: sess.Pending.FullText,
			RawResponse: sess.Pending.RawResponse,
		}
		// Embedding failure must not block the commit.
		vec := svc.Embeddings.EmbedOrNil(ctx, title+" "+e.Description)
		e.Embedding = entry.EncodeEmbedding(vec)

		if err := svc.Entries.Create(e); err != nil {
			// Pending completion stays intact so the user can retry.
			log.Printf("[API] confirm failed for user %d: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entry"})
			return
		}

		// Entry is durable; now the conversation can be cleared. If the
		// delete fails, overwrite with an empty session instead so the
		// confirmed completion cannot reappear as pending on the next load.
		if err := svc.Sessions.Clear(ctx, userID, kind); err != nil {
			log.Printf("[API] session clear failed for user %d: %v", userID, err)
			if err := svc.Sessions.Save(ctx, userID, dialogue.NewSession(kind)); err != nil {
				log.Printf("[API] session overwrite failed for user %d: %v", userID, err)
			}
		}

		// Best-effort: profile regeneration must never fail the commit.
		go svc.Profiles.RefreshIfStale(context.Background(), userID)

		c.JSON(http.StatusCreated, e)
	}
}

// ResetHandler discards the conversation state.
func ResetHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		kind, err := dialogue.ParseKind(c.Param("kind"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown conversation kind"})
			return
		}
		if err := svc.Sessions.Clear(c.Request.Context(), userID, kind); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset conversation"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reset": true})
	}
}
