package artworks

import (
	"errors"
	"net/http"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/gin-gonic/gin"
)

type updateMetaRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
	Medium      string `json:"medium"`
}

// Update revises an artwork's curatorial metadata.
func (h *Handler) Update(c *gin.Context) {
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

	var req updateMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	artwork, err := h.service.UpdateMeta(c.Request.Context(), identifier, actor, artworks.UploadMeta{
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Medium:      req.Medium,
	})
	if err != nil {
		h.respondMutationError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork updated", h.toArtworkDTO(artwork))
}

// Delete removes an artwork together with its files, placements and
// comments.
func (h *Handler) Delete(c *gin.Context) {
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

	if err := h.service.Delete(c.Request.Context(), identifier, actor); err != nil {
		h.respondMutationError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork deleted", nil)
}

func (h *Handler) respondMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, artworks.ErrArtworkNotFound):
		common.RespondError(c, http.StatusNotFound, "Artwork not found")
	case errors.Is(err, artworks.ErrPermissionDenied):
		common.RespondError(c, http.StatusForbidden, "Permission denied")
	default:
		common.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
