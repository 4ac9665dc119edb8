package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"photoselect/internal/middleware"
	"photoselect/internal/models"
	"photoselect/internal/service"
)

type createInvitationRequest struct {
	WorkspaceID string `json:"workspaceId"`
	Email       string `json:"email" binding:"required,email"`
	Role        string `json:"role" binding:"required"`
}

type invitationResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	WorkspaceID string    `json:"workspaceId"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toInvitationResponse(inv models.Invitation) invitationResponse {
	return invitationResponse{
		ID:          inv.ID,
		Email:       inv.Email,
		Role:        string(inv.Role),
		WorkspaceID: inv.WorkspaceID,
		Status:      string(inv.Status),
		ExpiresAt:   inv.ExpiresAt,
		CreatedAt:   inv.CreatedAt,
	}
}

func (h HandlerSet) CreateInvitation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}

	workspaceID := req.WorkspaceID
	if workspaceID == "" && user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "workspaceId required"})
		return
	}

	invitation, err := h.invitationService.Create(c.Request.Context(), service.CreateInvitationInput{
		Inviter:     user,
		WorkspaceID: workspaceID,
		Email:       req.Email,
		Role:        models.UserRole(req.Role),
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invitation": toInvitationResponse(invitation)})
}

func (h HandlerSet) ListInvitations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	workspaceID := c.Query("workspaceId")
	if workspaceID == "" && user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "workspaceId required"})
		return
	}

	invitations, err := h.invitationService.List(c.Request.Context(), user, workspaceID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]invitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		resp = append(resp, toInvitationResponse(inv))
	}

	c.JSON(http.StatusOK, gin.H{"invitations": resp})
}

func (h HandlerSet) RevokeInvitation(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.invitationService.Revoke(c.Request.Context(), user, c.Param("invitationId")); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LookupInvitation serves the public accept page; only the fields the
// invitee needs are exposed, never the inviter or internal ids.
func (h HandlerSet) LookupInvitation(c *gin.Context) {
	invitation, err := h.invitationService.Lookup(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":     invitation.Email,
		"role":      string(invitation.Role),
		"status":    string(invitation.Status),
		"expiresAt": invitation.ExpiresAt,
	})
}
