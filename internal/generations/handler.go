package generations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pixology-backend/internal/shared/server/middleware"
	"pixology-backend/internal/shared/server/respond"
)

const (
	maxPromptLength = 2000
	minDimension    = 64
	maxDimension    = 4096
	maxModifiers    = 20
)

// Handler wires HTTP handlers to the generations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generations", h.createGeneration)
	rg.GET("/generations", h.listGenerations)
	rg.GET("/generations/:id", h.getGeneration)
}

type generateRequest struct {
	Prompt string           `json:"prompt"`
	Style  *StyleParameters `json:"styleParameters"`
}

func (h *Handler) createGeneration(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.Prompt = strings.TrimSpace(req.Prompt)
	if details := validateRequest(req); details != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid generation request", details)
		return
	}

	result, err := h.Svc.Generate(c.Request.Context(), userID, req.Prompt, req.Style)
	if err != nil {
		switch {
		case errors.Is(err, ErrQuotaExceeded):
			respond.Error(c, http.StatusTooManyRequests, "quota_exceeded", "Daily generation limit reached. Try again tomorrow.", nil)
		case errors.Is(err, ErrUpstreamGeneration):
			respond.Error(c, http.StatusBadGateway, "generation_failed", "Image generation failed. Please try again.", nil)
		case errors.Is(err, ErrStorage):
			respond.Error(c, http.StatusInternalServerError, "storage_failed", "Failed to store the generated image.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to complete generation.", nil)
		}
		return
	}

	c.Set("generationId", result.ID)
	respond.JSON(c, http.StatusCreated, gin.H{
		"id":              result.ID,
		"artifactUrl":     result.ArtifactURL,
		"prompt":          result.Prompt,
		"styleParameters": result.Style,
		"dimensions":      gin.H{"width": result.Width, "height": result.Height},
		"sizeBytes":       result.SizeBytes,
		"createdAt":       result.CreatedAt,
	})
}

func (h *Handler) getGeneration(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	generationID := c.Param("id")
	if generationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "generation id is required", nil)
		return
	}

	gen, err := h.Svc.Get(c.Request.Context(), userID, generationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "generation not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch generation", nil)
		}
		return
	}

	respond.OK(c, gen)
}

func (h *Handler) listGenerations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	records, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations", nil)
		return
	}

	respond.OK(c, records)
}

func validateRequest(req generateRequest) []map[string]string {
	var details []map[string]string
	if req.Prompt == "" {
		details = append(details, map[string]string{"field": "prompt", "issue": "required"})
	} else if len(req.Prompt) > maxPromptLength {
		details = append(details, map[string]string{"field": "prompt", "issue": "too_long"})
	}

	if req.Style != nil {
		if !ValidQuality(req.Style.Quality) {
			details = append(details, map[string]string{"field": "styleParameters.quality", "issue": "unknown_quality"})
		}
		if bad := dimensionIssue(req.Style.Width); bad != "" {
			details = append(details, map[string]string{"field": "styleParameters.width", "issue": bad})
		}
		if bad := dimensionIssue(req.Style.Height); bad != "" {
			details = append(details, map[string]string{"field": "styleParameters.height", "issue": bad})
		}
		if len(req.Style.Modifiers) > maxModifiers {
			details = append(details, map[string]string{"field": "styleParameters.modifiers", "issue": "too_many"})
		}
	}
	return details
}

func dimensionIssue(v int) string {
	if v == 0 {
		return ""
	}
	if v < minDimension || v > maxDimension {
		return "out_of_range"
	}
	return ""
}
