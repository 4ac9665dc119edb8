package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"photoselect/internal/middleware"
	"photoselect/internal/realtime"
	"photoselect/internal/service"
)

type photoResponse struct {
	ID           string    `json:"id"`
	WorkspaceID  string    `json:"workspaceId"`
	UploaderID   string    `json:"uploaderId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	URL          string    `json:"url"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	CreatedAt    time.Time `json:"createdAt"`
	SelectedBy   []string  `json:"selectedBy,omitempty"`
}

func (h HandlerSet) UploadPhoto(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	workspaceID := c.PostForm("workspaceId")
	if workspaceID == "" && user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}
	if workspaceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "workspaceId required"})
		return
	}
	if !user.MemberOf(workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "authorization", "message": "not a member of this workspace"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": "file required"})
		return
	}
	defer file.Close()

	photo, err := h.photoService.Upload(c.Request.Context(), service.UploadInput{
		User:        user,
		WorkspaceID: workspaceID,
		File:        file,
		Header:      header,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.hub.Broadcast(workspaceID, realtime.NewEnvelope(realtime.EventPhotoUploaded, realtime.PhotoUploadedPayload{
		Message:  photo.OriginalName,
		UserID:   user.ID,
		UserName: user.Name,
	}), nil)

	c.JSON(http.StatusOK, gin.H{"photo": photoResponse{
		ID:           photo.ID,
		WorkspaceID:  photo.WorkspaceID,
		UploaderID:   photo.UploaderID,
		Filename:     photo.Filename,
		OriginalName: photo.OriginalName,
		URL:          photo.URL,
		MimeType:     photo.MimeType,
		SizeBytes:    photo.SizeBytes,
		CreatedAt:    photo.CreatedAt,
	}})
}

func (h HandlerSet) ListPhotos(c *gin.Context) {
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
	if !user.MemberOf(workspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "authorization", "message": "not a member of this workspace"})
		return
	}

	limit := 50
	offset := 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	photos, err := h.photos.ListByWorkspace(c.Request.Context(), workspaceID, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	items := make([]photoResponse, 0, len(photos))
	for _, photo := range photos {
		items = append(items, photoResponse{
			ID:           photo.ID,
			WorkspaceID:  photo.WorkspaceID,
			UploaderID:   photo.UploaderID,
			Filename:     photo.Filename,
			OriginalName: photo.OriginalName,
			URL:          photo.URL,
			MimeType:     photo.MimeType,
			SizeBytes:    photo.SizeBytes,
			CreatedAt:    photo.CreatedAt,
			SelectedBy:   photo.SelectedBy,
		})
	}

	c.JSON(http.StatusOK, gin.H{"photos": items})
}

// ToggleSelection is the REST fallback for the websocket selectPhoto
// event: same toggle, same broadcast to the rest of the room.
func (h HandlerSet) ToggleSelection(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	photoID := c.Param("photoId")
	photo, err := h.photos.GetByID(c.Request.Context(), photoID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "photo not found"})
		return
	}
	if !user.MemberOf(photo.WorkspaceID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "authorization", "message": "not a member of this workspace"})
		return
	}

	selected, err := h.selections.Toggle(c.Request.Context(), photoID, user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.hub.Broadcast(photo.WorkspaceID, realtime.NewEnvelope(realtime.EventPhotoSelected, realtime.PhotoSelectedPayload{
		PhotoID:  photoID,
		Selected: selected,
		UserID:   user.ID,
		UserName: user.Name,
		Color:    user.Color,
	}), nil)

	c.JSON(http.StatusOK, gin.H{"photoId": photoID, "selected": selected})
}

func (h HandlerSet) DeletePhoto(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.photoService.Delete(c.Request.Context(), user, c.Param("photoId")); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	WorkspaceID string   `json:"workspaceId"`
	PhotoIDs    []string `json:"photoIds" binding:"required,min=1"`
}

func (h HandlerSet) BulkDeletePhotos(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "message": err.Error()})
		return
	}

	workspaceID := req.WorkspaceID
	if workspaceID == "" && user.WorkspaceID != nil {
		workspaceID = *user.WorkspaceID
	}

	deleted, err := h.photoService.DeleteBulk(c.Request.Context(), user, workspaceID, req.PhotoIDs)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
