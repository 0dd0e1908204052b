package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProfileHandler returns the current profile, generating one on first
// access so every user always sees a description.
func GetProfileHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		p, err := svc.Profiles.Latest(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			return
		}
		if p == nil {
			p, err = svc.Profiles.Generate(c.Request.Context(), userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate profile"})
				return
			}
		}
		c.JSON(http.StatusOK, p)
	}
}

// RefreshProfileHandler regenerates the profile when entries are newer than
// it; otherwise the stored one is returned untouched.
func RefreshProfileHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		stale, err := svc.Profiles.ShouldUpdate(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check profile"})
			return
		}
		if !stale {
			p, err := svc.Profiles.Latest(userID)
			if err != nil || p == nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"profile": p, "updated": false})
			return
		}
		p, err := svc.Profiles.Generate(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate profile"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"profile": p, "updated": true})
	}
}
