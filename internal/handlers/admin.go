package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"photoselect/internal/models"
	"photoselect/internal/repository"
)

func pagination(c *gin.Context) (limit, offset int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "50"))
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	return perPage, (page - 1) * perPage
}

func (h HandlerSet) AdminListWorkspaces(c *gin.Context) {
	limit, offset := pagination(c)

	workspaces, err := h.workspaces.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]workspaceResponse, 0, len(workspaces))
	for _, ws := range workspaces {
		resp = append(resp, toWorkspaceResponse(ws))
	}

	c.JSON(http.StatusOK, gin.H{"workspaces": resp})
}

// AdminSuspendWorkspace toggles a workspace between suspended and
// active. Suspension blocks invitations and keeps the workspace out of
// member-facing flows until lifted.
func (h HandlerSet) AdminSuspendWorkspace(c *gin.Context) {
	workspaceID := c.Param("workspaceId")

	ws, err := h.workspaces.GetByID(c.Request.Context(), workspaceID)
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "workspace not found"})
			return
		}
		h.fail(c, err)
		return
	}

	status := models.WorkspaceStatusSuspended
	if ws.Status == models.WorkspaceStatusSuspended {
		status = models.WorkspaceStatusActive
	}

	if err := h.workspaces.UpdateStatus(c.Request.Context(), workspaceID, status); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspaceId": workspaceID, "status": string(status)})
}

func (h HandlerSet) AdminListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, userResponse{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Role:        string(user.Role),
			Status:      string(user.Status),
			WorkspaceID: user.WorkspaceID,
			Color:       user.Color,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": resp})
}
