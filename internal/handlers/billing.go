package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const webhookBodyLimit = 1 << 20 // 1 MiB

// StripeWebhook receives billing events. The caller is authenticated
// by the HMAC signature over the raw body, so this endpoint bypasses
// the session and CSRF chain.
func (h HandlerSet) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "unreadable body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		signature = c.GetHeader("X-Webhook-Signature")
	}

	if err := h.billingService.HandleWebhook(c.Request.Context(), body, signature); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
