package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"

	"photoselect/internal/ids"
	"photoselect/internal/middleware"
	"photoselect/internal/models"
	"photoselect/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type createWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	Slug string `json:"slug" binding:"required,min=2,max=63"`
}

type workspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toWorkspaceResponse(ws models.Workspace) workspaceResponse {
	return workspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		Slug:      ws.Slug,
		Status:    string(ws.Status),
		OwnerID:   ws.OwnerID,
		CreatedAt: ws.CreatedAt,
	}
}

// CreateWorkspace provisions a workspace for a business owner that does
// not have one yet and binds the owner to it.
func (h HandlerSet) CreateWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "slug must be lowercase letters, digits and hyphens"})
		return
	}

	if user.Role != models.UserRoleBusinessOwner {
		c.JSON(http.StatusForbidden, gin.H{"error": "authorization", "message": "only business owners create workspaces"})
		return
	}
	if user.WorkspaceID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "user already belongs to a workspace"})
		return
	}

	ws := models.Workspace{
		ID:      ids.New(),
		Name:    req.Name,
		Slug:    req.Slug,
		Status:  models.WorkspaceStatusActive,
		OwnerID: user.ID,
	}

	if err := h.workspaces.Create(c.Request.Context(), ws); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "slug already in use"})
			return
		}
		h.fail(c, err)
		return
	}

	if err := h.users.AssignWorkspace(c.Request.Context(), user.ID, ws.ID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"workspace": toWorkspaceResponse(ws)})
}

func (h HandlerSet) GetWorkspace(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.workspaces.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "workspace not found"})
			return
		}
		h.fail(c, err)
		return
	}

	if !user.MemberOf(ws.ID) {
		// Hide existence from outsiders.
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "workspace not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"workspace": toWorkspaceResponse(ws)})
}

func (h HandlerSet) ListWorkspaceMembers(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ws, err := h.workspaces.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "workspace not found"})
			return
		}
		h.fail(c, err)
		return
	}
	if !user.MemberOf(ws.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "workspace not found"})
		return
	}

	members, err := h.users.ListByWorkspace(c.Request.Context(), ws.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]userResponse, 0, len(members))
	for _, member := range members {
		resp = append(resp, userResponse{
			ID:          member.ID,
			Email:       member.Email,
			Name:        member.Name,
			Role:        string(member.Role),
			Status:      string(member.Status),
			WorkspaceID: member.WorkspaceID,
			Color:       member.Color,
		})
	}

	c.JSON(http.StatusOK, gin.H{"members": resp})
}
