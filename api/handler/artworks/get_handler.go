package artworks

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/gin-gonic/gin"
)

// canView reports whether the caller may see an unapproved artwork.
func canView(artwork *models.Artwork, actor *models.User) bool {
	if artwork.Status == models.ArtworkStatusApproved {
		return true
	}
	if actor == nil {
		return false
	}
	return artwork.UserID == actor.ID || actor.CanModerate()
}

// Info returns an artwork's metadata.
func (h *Handler) Info(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	artwork, err := h.service.GetByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	actor, _ := middleware.CurrentUser(c)
	if !canView(artwork, actor) {
		common.RespondError(c, http.StatusForbidden, "This artwork is awaiting moderation")
		return
	}

	common.RespondSuccess(c, h.toArtworkDTO(artwork))
}

// GetData streams the artwork binary. Unapproved artworks are only served
// to their owner and moderators.
func (h *Handler) GetData(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	artwork, err := h.service.GetByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	actor, _ := middleware.CurrentUser(c)
	if !canView(artwork, actor) {
		common.RespondError(c, http.StatusForbidden, "This artwork is awaiting moderation")
		return
	}

	data, mimeType, err := h.service.GetData(c.Request.Context(), identifier)
	if err != nil {
		common.RespondError(c, http.StatusNotFound, "Artwork file not found")
		return
	}

	h.serveBinary(c, artwork, data, mimeType)
}

// GetThumbnail streams the artwork thumbnail with the same visibility rules
// as the original.
func (h *Handler) GetThumbnail(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	artwork, err := h.service.GetByIdentifier(c.Request.Context(), identifier)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}

	actor, _ := middleware.CurrentUser(c)
	if !canView(artwork, actor) {
		common.RespondError(c, http.StatusForbidden, "This artwork is awaiting moderation")
		return
	}

	data, mimeType, err := h.service.GetThumbnail(c.Request.Context(), identifier)
	if err != nil {
		common.RespondError(c, http.StatusNotFound, "Thumbnail not found")
		return
	}

	h.serveBinary(c, artwork, data, mimeType)
}

func (h *Handler) serveBinary(c *gin.Context, artwork *models.Artwork, data []byte, mimeType string) {
	etag := fmt.Sprintf("%q", artwork.FileHash)
	if match := c.GetHeader("If-None-Match"); match == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, mimeType, data)
}

func (h *Handler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, artworks.ErrArtworkNotFound) {
		common.RespondError(c, http.StatusNotFound, "Artwork not found")
		return
	}
	common.RespondError(c, http.StatusInternalServerError, "Failed to get artwork")
}
