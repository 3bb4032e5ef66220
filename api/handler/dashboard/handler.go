package dashboard

import (
	"net/http"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/internal/dashboard"
	"github.com/gin-gonic/gin"
)

// Handler serves the admin dashboard statistics.
type Handler struct {
	svc *dashboard.Service
}

// NewHandler creates the dashboard handler.
func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{
		svc: svc,
	}
}

// GetStats returns the gallery-wide counters.
// GET /api/v1/dashboard/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context())
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get dashboard stats")
		return
	}

	common.RespondSuccess(c, stats)
}

// RefreshStats recomputes the counters immediately.
// POST /api/v1/dashboard/stats/refresh
func (h *Handler) RefreshStats(c *gin.Context) {
	if err := h.svc.RefreshCache(c.Request.Context()); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to refresh stats")
		return
	}

	common.RespondSuccessMessage(c, "Stats refreshed successfully", nil)
}
