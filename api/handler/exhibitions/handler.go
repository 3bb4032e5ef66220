package exhibitions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/internal/exhibitions"
	"github.com/calyxa/galerie/utils"
	"github.com/gin-gonic/gin"
)

// Handler serves exhibition curation endpoints.
type Handler struct {
	service *exhibitions.Service
	baseURL string
}

// NewHandler creates the exhibitions handler.
func NewHandler(service *exhibitions.Service, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		baseURL: cfg.BaseURL(),
	}
}

// PlacedArtworkDTO is the compact artwork view embedded in a wall slot.
type PlacedArtworkDTO struct {
	ID           uint   `json:"id"`
	Identifier   string `json:"identifier"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	ArtistID     uint   `json:"artist_id"`
}

// WallDTO is the JSON view of a wall with its three slots.
type WallDTO struct {
	ID       uint                         `json:"id"`
	Name     string                       `json:"name"`
	Position int                          `json:"position"`
	Slots    map[string]*PlacedArtworkDTO `json:"slots"`
}

// ExhibitionDTO is the JSON view of an exhibition.
type ExhibitionDTO struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	StartsAt    int64                  `json:"starts_at"`
	EndsAt      int64                  `json:"ends_at"`
	State       string                 `json:"state"`
	Environment map[string]interface{} `json:"environment,omitempty"`
	CuratorID   uint                   `json:"curator_id"`
	CuratorName string                 `json:"curator_name,omitempty"`
	CreatedAt   int64                  `json:"created_at"`
	Walls       []*WallDTO             `json:"walls,omitempty"`
}

func (h *Handler) toPlacedArtworkDTO(artwork *models.Artwork) *PlacedArtworkDTO {
	return &PlacedArtworkDTO{
		ID:           artwork.ID,
		Identifier:   artwork.Identifier,
		Title:        artwork.Title,
		URL:          utils.BuildArtworkURL(h.baseURL, artwork.Identifier),
		ThumbnailURL: utils.BuildThumbnailURL(h.baseURL, artwork.Identifier),
		Width:        artwork.Width,
		Height:       artwork.Height,
		ArtistID:     artwork.UserID,
	}
}

func (h *Handler) toWallDTO(wall *models.Wall) *WallDTO {
	slots := map[string]*PlacedArtworkDTO{
		string(models.SlotLeft):   nil,
		string(models.SlotCenter): nil,
		string(models.SlotRight):  nil,
	}
	for i := range wall.Placements {
		placement := &wall.Placements[i]
		slots[string(placement.Slot)] = h.toPlacedArtworkDTO(&placement.Artwork)
	}

	return &WallDTO{
		ID:       wall.ID,
		Name:     wall.Name,
		Position: wall.Position,
		Slots:    slots,
	}
}

func (h *Handler) toExhibitionDTO(exhibition *models.Exhibition, includeWalls bool) *ExhibitionDTO {
	dto := &ExhibitionDTO{
		ID:          exhibition.ID,
		Title:       exhibition.Title,
		Description: exhibition.Description,
		StartsAt:    exhibition.StartsAt.Unix(),
		EndsAt:      exhibition.EndsAt.Unix(),
		State:       string(exhibition.State),
		CuratorID:   exhibition.UserID,
		CuratorName: exhibition.User.Username,
		CreatedAt:   exhibition.CreatedAt.Unix(),
	}

	if exhibition.Environment != "" {
		var env map[string]interface{}
		if err := json.Unmarshal([]byte(exhibition.Environment), &env); err == nil {
			dto.Environment = env
		}
	}

	if includeWalls {
		dto.Walls = make([]*WallDTO, 0, len(exhibition.Walls))
		for i := range exhibition.Walls {
			dto.Walls = append(dto.Walls, h.toWallDTO(&exhibition.Walls[i]))
		}
	}

	return dto
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		common.RespondError(c, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, exhibitions.ErrExhibitionNotFound):
		common.RespondError(c, http.StatusNotFound, "Exhibition not found")
	case errors.Is(err, exhibitions.ErrWallNotFound):
		common.RespondError(c, http.StatusNotFound, "Wall not found")
	case errors.Is(err, exhibitions.ErrPermissionDenied):
		common.RespondError(c, http.StatusForbidden, "Permission denied")
	case errors.Is(err, exhibitions.ErrInvalidDateRange):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, exhibitions.ErrInvalidSlot):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, exhibitions.ErrInvalidStateChange):
		common.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, exhibitions.ErrSlotOccupied):
		common.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, exhibitions.ErrArtworkAlreadyPlaced):
		common.RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, exhibitions.ErrArtworkNotApproved):
		common.RespondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, exhibitions.ErrSlotEmpty):
		common.RespondError(c, http.StatusNotFound, err.Error())
	default:
		common.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
