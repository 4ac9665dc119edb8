package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"photoselect/internal/ratelimit"
)

// clientKey identifies the caller for rate limiting: a prefix of the
// bearer token when present, the client IP otherwise.
func clientKey(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if len(token) > 16 {
			token = token[:16]
		}
		return "tok:" + token
	}
	return "ip:" + c.ClientIP()
}

// RateLimit rejects requests over the named rule's threshold with 429
// and a Retry-After hint.
func RateLimit(limiter *ratelimit.Limiter, rule string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := limiter.Allow(rule, clientKey(c))
		if !allowed {
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}
