package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"photoselect/internal/config"
	"photoselect/internal/models"
	"photoselect/internal/repository"
	"photoselect/internal/security"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextUser   = "current_user"
	ContextClaims = "access_claims"
)

// Auth validates the bearer token, checks the backing session row, and
// enforces the in-memory idle timeout via the tracker.
func Auth(cfg *config.AppConfig, users *repository.UserRepository, sessions *repository.SessionRepository, tracker *security.SessionTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseAccessToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		session, err := sessions.GetByID(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}
		if session.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}

		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		if !tracker.Touch(user.ID) {
			_ = sessions.DeleteByID(c.Request.Context(), session.ID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_idle_timeout"})
			return
		}

		_ = sessions.Touch(c.Request.Context(), session.ID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(ContextClaims, *claims)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the gin context.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userVal, exists := c.Get(ContextUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := userVal.(models.User)
	return user, ok
}

// CurrentClaims pulls the parsed access claims out of the gin context.
func CurrentClaims(c *gin.Context) (security.AccessClaims, bool) {
	claimsVal, exists := c.Get(ContextClaims)
	if !exists {
		return security.AccessClaims{}, false
	}
	claims, ok := claimsVal.(security.AccessClaims)
	return claims, ok
}
