package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"photoselect/internal/models"
	"photoselect/internal/security"
)

func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// RequireRecentAuth gates sensitive endpoints: the user must have
// logged in within the tracker's re-auth window.
func RequireRecentAuth(tracker *security.SessionTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !tracker.RecentlyAuthenticated(user.ID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "reauthentication_required"})
			return
		}

		c.Next()
	}
}
