package artworks

import (
	"math"
	"net/http"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	"github.com/gin-gonic/gin"
)

type artworkListRequest struct {
	Status   string `json:"status"`
	ArtistID uint   `json:"artist_id"`
	Search   string `json:"search"`
	Mine     bool   `json:"mine"`

	Page  int `json:"page" binding:"required"`
	Limit int `json:"limit" binding:"required"`
}

type artworkListResponse struct {
	Artworks   []*ArtworkDTO `json:"artworks"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// List returns a page of artworks. Visitors and artists see approved work
// plus their own submissions; curators and admins see everything.
func (h *Handler) List(c *gin.Context) {
	var body artworkListRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, limit := body.Page, body.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	const maxLimit = 100
	if limit > maxLimit {
		limit = maxLimit
	}

	actor, _ := middleware.CurrentUser(c)

	filter := artworkrepo.ListFilter{
		Status: models.ArtworkStatus(body.Status),
		UserID: body.ArtistID,
		Query:  body.Search,
		Page:   page,
		Limit:  limit,
	}
	if body.Mine && actor != nil {
		filter.UserID = actor.ID
	}

	// Non-moderators may only browse moderation states of their own work.
	if actor == nil || !actor.CanModerate() {
		ownOnly := actor != nil && filter.UserID == actor.ID
		if !ownOnly {
			filter.Status = models.ArtworkStatusApproved
		}
	}

	artworkList, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get artwork list")
		return
	}

	common.RespondSuccess(c, artworkListResponse{
		Artworks:   h.toArtworkDTOs(artworkList),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	})
}
