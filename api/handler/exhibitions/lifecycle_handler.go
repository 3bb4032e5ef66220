package exhibitions

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	exhibitionrepo "github.com/calyxa/galerie/database/repo/exhibitions"
	"github.com/calyxa/galerie/internal/exhibitions"
	"github.com/gin-gonic/gin"
)

type exhibitionDraftRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	StartsAt    int64                  `json:"starts_at"`
	EndsAt      int64                  `json:"ends_at"`
	Environment map[string]interface{} `json:"environment"`
}

func (r *exhibitionDraftRequest) toDraft() exhibitions.Draft {
	draft := exhibitions.Draft{
		Title:       r.Title,
		Description: r.Description,
		Environment: r.Environment,
	}
	if r.StartsAt != 0 {
		draft.StartsAt = time.Unix(r.StartsAt, 0)
	}
	if r.EndsAt != 0 {
		draft.EndsAt = time.Unix(r.EndsAt, 0)
	}
	return draft
}

// Create opens a new draft exhibition.
func (h *Handler) Create(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req exhibitionDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Title == "" {
		common.RespondError(c, http.StatusBadRequest, "Title is required")
		return
	}
	if req.StartsAt == 0 || req.EndsAt == 0 {
		common.RespondError(c, http.StatusBadRequest, "starts_at and ends_at are required")
		return
	}

	exhibition, err := h.service.Create(c.Request.Context(), actor, req.toDraft())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Exhibition created", h.toExhibitionDTO(exhibition, false))
}

// List returns a page of exhibitions. Callers who cannot curate only see
// published ones unless they ask for their own.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	actor, _ := middleware.CurrentUser(c)

	filter := exhibitionrepo.ListFilter{
		State: models.ExhibitionState(c.Query("state")),
		Page:  page,
		Limit: limit,
	}
	if c.Query("mine") == "true" && actor != nil {
		filter.UserID = actor.ID
	}
	if c.Query("running") == "true" {
		now := time.Now()
		filter.RunsAt = &now
	}

	// Drafts and archives of other curators stay private. The same
	// owner-or-admin rule gates Get and ListWalls.
	if filter.UserID == 0 && (actor == nil || actor.Role != models.RoleAdmin) {
		filter.State = models.ExhibitionStatePublished
	}

	exhibitionList, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get exhibition list")
		return
	}

	dtos := make([]*ExhibitionDTO, 0, len(exhibitionList))
	for _, exhibition := range exhibitionList {
		dtos = append(dtos, h.toExhibitionDTO(exhibition, false))
	}

	common.RespondSuccess(c, gin.H{
		"exhibitions": dtos,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": int(math.Ceil(float64(total) / float64(limit))),
	})
}

// Get returns one exhibition with its full wall layout.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, _ := middleware.CurrentUser(c)
	exhibition, err := h.service.Get(c.Request.Context(), id, actor)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccess(c, h.toExhibitionDTO(exhibition, true))
}

// Update revises an exhibition's metadata and environment settings.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req exhibitionDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	exhibition, err := h.service.Update(c.Request.Context(), id, actor, req.toDraft())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Exhibition updated", h.toExhibitionDTO(exhibition, false))
}

// Publish makes a draft exhibition visible to everyone.
func (h *Handler) Publish(c *gin.Context) {
	h.changeState(c, h.service.Publish, "Exhibition published")
}

// Archive retires a published exhibition.
func (h *Handler) Archive(c *gin.Context) {
	h.changeState(c, h.service.Archive, "Exhibition archived")
}

func (h *Handler) changeState(
	c *gin.Context,
	transition func(ctx context.Context, id uint, actor *models.User) (*models.Exhibition, error),
	message string,
) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	exhibition, err := transition(c.Request.Context(), id, actor)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, message, h.toExhibitionDTO(exhibition, false))
}

// Delete removes an exhibition together with its walls and placements.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Exhibition deleted", nil)
}
