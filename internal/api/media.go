package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/service"
)

const presignTTL = 15 * time.Minute

// MediaHandler serves uploaded images by key.
type MediaHandler struct {
	imageService service.IImageService
}

func NewMediaHandler(imageService service.IImageService) *MediaHandler {
	return &MediaHandler{imageService: imageService}
}

func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/media/*key", middleware.RequireAuth(), h.Serve)
}

// Serve redirects to a presigned URL when the store offers one and streams
// the stored bytes otherwise.
func (h *MediaHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	ctx := c.Request.Context()

	url, ok, err := h.imageService.URL(ctx, key, presignTTL)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if ok {
		c.Redirect(http.StatusFound, url)
		return
	}

	data, contentType, err := h.imageService.Open(ctx, key)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Cache-Control", "private, max-age=86400")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, contentType, data)
}
