package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"counsel/internal/entry"
	"counsel/internal/similarity"
)

func parseEntryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry id"})
		return 0, false
	}
	return uint(id), true
}

// ListEntriesHandler returns the caller's latest entry versions, optionally
// filtered by kind.
func ListEntriesHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		kind := entry.Kind(c.Query("kind"))
		if kind != "" && !kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entry kind"})
			return
		}
		entries, err := svc.Entries.LatestForOwner(userID, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries"})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func GetEntryHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := parseEntryID(c)
		if !ok {
			return
		}
		e, err := svc.Entries.Get(id, userID)
		if errors.Is(err, entry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entry"})
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

// UpdateEntryHandler creates a new version of an entry. Editing anything but
// the latest version is rejected.
func UpdateEntryHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := parseEntryID(c)
		if !ok {
			return
		}
		var req struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
			return
		}

		prev, err := svc.Entries.Get(id, userID)
		if errors.Is(err, entry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entry"})
			return
		}

		// Recompute the embedding only when the content actually changed.
		emb := prev.Embedding
		if req.Title != prev.Title || req.Description != prev.Description {
			vec := svc.Embeddings.EmbedOrNil(c.Request.Context(), req.Title+" "+req.Description)
			emb = entry.EncodeEmbedding(vec)
		}

		next, err := svc.Entries.Edit(id, userID, req.Title, req.Description, emb)
		if errors.Is(err, entry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		if errors.Is(err, entry.ErrNotLatest) {
			c.JSON(http.StatusConflict, gin.H{"error": "only the latest version can be edited"})
			return
		}
		if err != nil {
			log.Printf("[API] edit failed for entry %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update entry"})
			return
		}

		go svc.Profiles.RefreshIfStale(context.Background(), userID)

		c.JSON(http.StatusOK, next)
	}
}

// DeleteEntryHandler removes an entry together with its whole version chain.
func DeleteEntryHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := parseEntryID(c)
		if !ok {
			return
		}
		err := svc.Entries.Delete(id, userID)
		if errors.Is(err, entry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete entry"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

func EntryVersionsHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := parseEntryID(c)
		if !ok {
			return
		}
		versions, err := svc.Entries.Versions(id, userID)
		if errors.Is(err, entry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load versions"})
			return
		}
		c.JSON(http.StatusOK, versions)
	}
}

// SimilarEntriesHandler ranks the caller's other entries of the same kind by
// cosine similarity against the target entry's embedding.
func SimilarEntriesHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		id, ok := parseEntryID(c)
		if !ok {
			return
		}
		target, err := svc.Entries.Get(id, userID)
		if errors.Is(err, entry.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entry"})
			return
		}

		candidates, err := svc.Entries.WithEmbeddingForOwner(userID, target.Kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load candidates"})
			return
		}
		matches := similarity.Rank(target, candidates, similarity.DefaultTopK)
		if matches == nil {
			matches = []similarity.Match{}
		}
		c.JSON(http.StatusOK, gin.H{"matches": matches})
	}
}
