package handler

import (
	mediaapp "github.com/catalogadmin/backend/internal/application/media"
	"github.com/gin-gonic/gin"
)

// MediaHandler handles the legacy media gallery
type MediaHandler struct {
	BaseHandler
	service *mediaapp.Service
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(service *mediaapp.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

// DeleteMediaResponse reports how many media rows were removed
type DeleteMediaResponse struct {
	Deleted int64 `json:"deleted"`
}

// List godoc
// @ID           listMedia
// @Summary      List media items
// @Description  Every legacy media item, newest first
// @Tags         media
// @Produce      json
// @Success      200 {object} dto.Response{data=[]mediaapp.ItemResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /media [get]
func (h *MediaHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Delete godoc
// @ID           deleteMedia
// @Summary      Delete media items
// @Description  Removes the media rows and blobs named by a JSON array of URLs
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        urls body []string true "Media URLs"
// @Success      200 {object} dto.Response{data=DeleteMediaResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BasicAuth
// @Router       /delete-images [post]
func (h *MediaHandler) Delete(c *gin.Context) {
	var urls []string
	if err := c.ShouldBindJSON(&urls); err != nil {
		h.BadRequest(c, "request body must be a JSON array of URLs")
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), urls)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DeleteMediaResponse{Deleted: deleted})
}
