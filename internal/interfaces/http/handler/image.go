package handler

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"path"

	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	"github.com/catalogadmin/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// DefaultImageCacheControl is sent with every served image
const DefaultImageCacheControl = "public, max-age=86400"

// ImageHandler serves product and legacy images for any path that no
// other route claims
type ImageHandler struct {
	BaseHandler
	resolver     *catalogapp.ImageResolver
	cacheControl string
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(resolver *catalogapp.ImageResolver, cacheControl string) *ImageHandler {
	if cacheControl == "" {
		cacheControl = DefaultImageCacheControl
	}
	return &ImageHandler{
		resolver:     resolver,
		cacheControl: cacheControl,
	}
}

// Serve resolves the request path to a stored image.
// GET|HEAD /{path}
func (h *ImageHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		h.HandleError(c, shared.NewNotFoundError("route not found"))
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), c.Request.URL.Path)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	etag := res.ETag
	if etag == "" {
		sum := md5.Sum(res.Data)
		etag = `"` + hex.EncodeToString(sum[:]) + `"`
	}

	header := c.Writer.Header()
	if res.ContentType != "" {
		header.Set("Content-Type", res.ContentType)
	} else {
		header.Set("Content-Type", http.DetectContentType(res.Data))
	}
	header.Set("ETag", etag)
	header.Set("Content-Disposition", "inline")
	header.Set("Cache-Control", h.cacheControl)

	// ServeContent answers If-None-Match, If-Modified-Since, Range and HEAD
	http.ServeContent(c.Writer, c.Request, path.Base(res.Key), res.LastModified, bytes.NewReader(res.Data))
}
