package quota

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pixology-backend/internal/shared/server/middleware"
	"pixology-backend/internal/shared/server/respond"
)

// Handler exposes the caller's quota status.
type Handler struct {
	Gate *Gate
}

// NewHandler constructs a Handler.
func NewHandler(gate *Gate) *Handler {
	return &Handler{Gate: gate}
}

// RegisterRoutes attaches the quota route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quota", h.getQuota)
}

func (h *Handler) getQuota(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing identity", nil)
		return
	}

	status, err := h.Gate.Snapshot(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read quota", nil)
		return
	}
	respond.OK(c, status)
}
