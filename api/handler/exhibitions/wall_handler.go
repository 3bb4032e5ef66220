package exhibitions

import (
	"math"
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	"github.com/gin-gonic/gin"
)

type wallRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Position int    `json:"position" binding:"required,min=1"`
}

// AddWall appends a wall to the exhibition.
func (h *Handler) AddWall(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req wallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	wall, err := h.service.AddWall(c.Request.Context(), exhibitionID, actor, req.Name, req.Position)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Wall added", h.toWallDTO(wall))
}

// ListWalls returns an exhibition's walls with their placements.
func (h *Handler) ListWalls(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.CurrentUser(c)
	walls, err := h.service.Walls(c.Request.Context(), exhibitionID, actor)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	dtos := make([]*WallDTO, 0, len(walls))
	for _, wall := range walls {
		dtos = append(dtos, h.toWallDTO(wall))
	}
	common.RespondSuccess(c, gin.H{"walls": dtos})
}

type wallUpdateRequest struct {
	Name     string `json:"name" binding:"max=100"`
	Position int    `json:"position"`
}

// UpdateWall renames or repositions a wall.
func (h *Handler) UpdateWall(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	wallID, ok := parseID(c, "wallId")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req wallUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	wall, err := h.service.RenameWall(c.Request.Context(), exhibitionID, wallID, actor, req.Name, req.Position)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Wall updated", h.toWallDTO(wall))
}

// DeleteWall removes a wall and everything hanging on it.
func (h *Handler) DeleteWall(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	wallID, ok := parseID(c, "wallId")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.service.RemoveWall(c.Request.Context(), exhibitionID, wallID, actor); err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Wall deleted", nil)
}

type placeRequest struct {
	ArtworkIdentifier string `json:"artwork_identifier" binding:"required"`
}

// PlaceArtwork hangs an approved artwork on a wall slot.
func (h *Handler) PlaceArtwork(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	wallID, ok := parseID(c, "wallId")
	if !ok {
		return
	}
	slot := models.WallSlot(c.Param("slot"))

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	placement, err := h.service.PlaceArtwork(c.Request.Context(), exhibitionID, wallID, slot, req.ArtworkIdentifier, actor)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Artwork placed", gin.H{
		"wall_id": placement.WallID,
		"slot":    placement.Slot,
		"artwork": h.toPlacedArtworkDTO(&placement.Artwork),
	})
}

// ClearSlot takes down the artwork hanging on a wall slot.
func (h *Handler) ClearSlot(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	wallID, ok := parseID(c, "wallId")
	if !ok {
		return
	}
	slot := models.WallSlot(c.Param("slot"))

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.service.ClearSlot(c.Request.Context(), exhibitionID, wallID, slot, actor); err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Slot cleared", nil)
}

// Stockpile lists approved artworks not yet placed in the exhibition.
func (h *Handler) Stockpile(c *gin.Context) {
	exhibitionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	artworkList, total, err := h.service.Stockpile(c.Request.Context(), exhibitionID, actor, page, limit)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	dtos := make([]*PlacedArtworkDTO, 0, len(artworkList))
	for _, artwork := range artworkList {
		dtos = append(dtos, h.toPlacedArtworkDTO(artwork))
	}

	common.RespondSuccess(c, gin.H{
		"artworks":    dtos,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": int(math.Ceil(float64(total) / float64(limit))),
	})
}
