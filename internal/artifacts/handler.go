package artifacts

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pixology-backend/internal/shared/server/respond"
	"pixology-backend/internal/shared/storage/object"
)

// Handler streams stored artifacts over HTTP. It backs the public URLs the
// local object store hands out; S3 objects are served by S3 directly.
type Handler struct {
	Objects object.ObjectStore
}

// NewHandler constructs a Handler.
func NewHandler(objects object.ObjectStore) *Handler {
	return &Handler{Objects: objects}
}

// RegisterRoutes attaches the artifact route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/artifacts/*key", h.getArtifact)
}

func (h *Handler) getArtifact(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "artifact key is required", nil)
		return
	}

	body, err := h.Objects.Open(c.Request.Context(), key)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "artifact not found", nil)
		return
	}
	defer body.Close()

	var sniff [512]byte
	n, readErr := io.ReadFull(body, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read artifact", nil)
		return
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", http.DetectContentType(sniff[:n]))
	c.Header("Cache-Control", "public, max-age=86400")
	if n > 0 {
		_, _ = c.Writer.Write(sniff[:n])
	}
	_, _ = io.Copy(c.Writer, body)
}
