package artworks

import (
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/utils"
)

// Handler serves artwork upload, browsing, moderation and deletion.
type Handler struct {
	service *artworks.Service
	config  *config.Config
	baseURL string
}

// NewHandler creates the artworks handler.
func NewHandler(service *artworks.Service, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		config:  cfg,
		baseURL: cfg.BaseURL(),
	}
}

// ArtworkDTO is the JSON view of an artwork.
type ArtworkDTO struct {
	ID           uint   `json:"id"`
	Identifier   string `json:"identifier"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Year         int    `json:"year,omitempty"`
	Medium       string `json:"medium,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	OriginalName string `json:"original_name"`
	FileSize     int64  `json:"file_size"`
	MimeType     string `json:"mime_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason,omitempty"`
	ArtistID     uint   `json:"artist_id"`
	ArtistName   string `json:"artist_name,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

func (h *Handler) toArtworkDTO(artwork *models.Artwork) *ArtworkDTO {
	if artwork == nil {
		return nil
	}

	return &ArtworkDTO{
		ID:           artwork.ID,
		Identifier:   artwork.Identifier,
		Title:        artwork.Title,
		Description:  artwork.Description,
		Year:         artwork.Year,
		Medium:       artwork.Medium,
		URL:          utils.BuildArtworkURL(h.baseURL, artwork.Identifier),
		ThumbnailURL: utils.BuildThumbnailURL(h.baseURL, artwork.Identifier),
		OriginalName: artwork.OriginalName,
		FileSize:     artwork.FileSize,
		MimeType:     artwork.MimeType,
		Width:        artwork.Width,
		Height:       artwork.Height,
		Status:       string(artwork.Status),
		RejectReason: artwork.RejectReason,
		ArtistID:     artwork.UserID,
		ArtistName:   artwork.User.Username,
		CreatedAt:    artwork.CreatedAt.Unix(),
	}
}

func (h *Handler) toArtworkDTOs(artworkList []*models.Artwork) []*ArtworkDTO {
	dtos := make([]*ArtworkDTO, 0, len(artworkList))
	for _, artwork := range artworkList {
		dtos = append(dtos, h.toArtworkDTO(artwork))
	}
	return dtos
}
