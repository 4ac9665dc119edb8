package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"photoselect/internal/security"
)

const csrfHeader = "X-CSRF-Token"

// CSRF rejects state-changing requests without a valid per-session
// token. Safe methods pass through. Must run after Auth, which puts the
// session id in the claims.
func CSRF(store *security.CSRFStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		claims, ok := CurrentClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := store.Validate(claims.SessionID, c.GetHeader(csrfHeader)); err != nil {
			reason := "csrf_invalid"
			if errors.Is(err, security.ErrCSRFTokenExpired) {
				reason = "csrf_expired"
			} else if errors.Is(err, security.ErrCSRFTokenMissing) {
				reason = "csrf_missing"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": reason})
			return
		}

		c.Next()
	}
}
