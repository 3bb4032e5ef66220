package artworks

import (
	"errors"
	"net/http"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/gin-gonic/gin"
)

// Approve marks a pending artwork as approved.
func (h *Handler) Approve(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	artwork, err := h.service.Approve(c.Request.Context(), identifier, actor)
	if err != nil {
		h.respondModerationError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork approved", h.toArtworkDTO(artwork))
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Reject marks a pending artwork as rejected with a reason.
func (h *Handler) Reject(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	artwork, err := h.service.Reject(c.Request.Context(), identifier, actor, req.Reason)
	if err != nil {
		h.respondModerationError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork rejected", h.toArtworkDTO(artwork))
}

func (h *Handler) respondModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, artworks.ErrArtworkNotFound):
		common.RespondError(c, http.StatusNotFound, "Artwork not found")
	case errors.Is(err, artworks.ErrPermissionDenied):
		common.RespondError(c, http.StatusForbidden, "Permission denied")
	case errors.Is(err, artworkrepo.ErrAlreadyModerated):
		common.RespondError(c, http.StatusConflict, "Artwork has already been moderated")
	default:
		common.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
