package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"photoselect/internal/models"
	"photoselect/internal/realtime"
	"photoselect/internal/security"
)

// ServeWS upgrades the connection and joins the caller to their
// workspace room. Browsers cannot set an Authorization header on a
// websocket handshake, so the access token rides the query string.
func (h HandlerSet) ServeWS(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
		return
	}

	claims, err := security.ParseAccessToken(tokenStr, h.cfg.Security.JWTAccessSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		return
	}

	if _, err := h.sessions.GetByID(c.Request.Context(), claims.SessionID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil || user.Status != models.UserStatusActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
		return
	}
	if user.WorkspaceID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no_workspace"})
		return
	}
	if !h.tracker.Touch(user.ID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session_idle_timeout"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWSOrigin,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", user.ID).Msg("websocket upgrade failed")
		return
	}

	client := realtime.NewClient(conn, user.ID, user.Name, user.Color, *user.WorkspaceID)
	h.hub.Join(client)

	go client.WritePump()
	client.ReadPump(c.Request.Context(), h.hub)
}

func (h HandlerSet) checkWSOrigin(r *http.Request) bool {
	if !h.cfg.IsProduction() {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowCORSOrigins {
		if allowed == origin || allowed == "*" {
			return true
		}
	}
	return false
}
