package exhibitions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/calyxa/galerie/database/models"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	exhibitionrepo "github.com/calyxa/galerie/database/repo/exhibitions"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/mitchellh/mapstructure"
	"gorm.io/gorm"
)

var (
	// ErrExhibitionNotFound is returned when no exhibition matches the lookup.
	ErrExhibitionNotFound = errors.New("exhibition not found")

	// ErrWallNotFound is returned when the wall does not belong to the
	// exhibition or does not exist.
	ErrWallNotFound = errors.New("wall not found")

	// ErrPermissionDenied is returned when the actor does not own the
	// exhibition and is not an admin.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidDateRange is returned when an exhibition would end before
	// it starts.
	ErrInvalidDateRange = errors.New("exhibition end date must be after its start date")

	// ErrInvalidStateChange is returned on a publication transition the
	// lifecycle does not allow.
	ErrInvalidStateChange = errors.New("invalid exhibition state change")

	// ErrInvalidSlot is returned when the slot is not left, center or right.
	ErrInvalidSlot = errors.New("slot must be one of left, center, right")

	// ErrSlotOccupied is returned when the target wall slot already holds
	// an artwork.
	ErrSlotOccupied = errors.New("wall slot is already occupied")

	// ErrArtworkAlreadyPlaced is returned when the artwork already hangs
	// elsewhere in the same exhibition.
	ErrArtworkAlreadyPlaced = errors.New("artwork is already placed in this exhibition")

	// ErrArtworkNotApproved is returned when placing an artwork that has
	// not passed moderation.
	ErrArtworkNotApproved = errors.New("only approved artworks can be placed")

	// ErrSlotEmpty is returned when clearing a slot that holds nothing.
	ErrSlotEmpty = errors.New("wall slot is empty")
)

// Environment holds the 3D scene settings a curator can tune for an
// exhibition. It is stored as JSON and passed through to the viewer.
type Environment struct {
	RoomTemplate   string  `json:"room_template" mapstructure:"room_template"`
	Skybox         string  `json:"skybox" mapstructure:"skybox"`
	WallColor      string  `json:"wall_color" mapstructure:"wall_color"`
	FloorTexture   string  `json:"floor_texture" mapstructure:"floor_texture"`
	LightColor     string  `json:"light_color" mapstructure:"light_color"`
	LightIntensity float64 `json:"light_intensity" mapstructure:"light_intensity"`
	AmbientVolume  float64 `json:"ambient_volume" mapstructure:"ambient_volume"`
}

// DecodeEnvironment validates a loosely-typed settings map into an
// Environment. Unknown keys are rejected so typos do not silently vanish.
func DecodeEnvironment(settings map[string]interface{}) (*Environment, error) {
	var env Environment
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &env,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("invalid environment settings: %w", err)
	}
	return &env, nil
}

// Draft carries the fields a curator submits when creating or updating an
// exhibition.
type Draft struct {
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	Environment map[string]interface{}
}

// Service implements exhibition curation: lifecycle, walls, placements and
// the stockpile.
type Service struct {
	repo     *exhibitionrepo.Repository
	artworks *artworkrepo.Repository
	notifier *notify.Service
}

// NewService creates an exhibition service.
func NewService(
	repo *exhibitionrepo.Repository,
	artworks *artworkrepo.Repository,
	notifier *notify.Service,
) *Service {
	return &Service{
		repo:     repo,
		artworks: artworks,
		notifier: notifier,
	}
}

// Create opens a new draft exhibition owned by the curator.
func (s *Service) Create(ctx context.Context, curator *models.User, draft Draft) (*models.Exhibition, error) {
	if !draft.EndsAt.After(draft.StartsAt) {
		return nil, ErrInvalidDateRange
	}

	envJSON, err := encodeEnvironment(draft.Environment)
	if err != nil {
		return nil, err
	}

	exhibition := &models.Exhibition{
		UserID:      curator.ID,
		Title:       draft.Title,
		Description: draft.Description,
		StartsAt:    draft.StartsAt,
		EndsAt:      draft.EndsAt,
		State:       models.ExhibitionStateDraft,
		Environment: envJSON,
	}
	if err := s.repo.Create(ctx, exhibition); err != nil {
		return nil, fmt.Errorf("failed to create exhibition: %w", err)
	}
	return exhibition, nil
}

// Get loads an exhibition with its walls and placements. Unpublished
// exhibitions are hidden from everyone but their curator and admins.
func (s *Service) Get(ctx context.Context, id uint, actor *models.User) (*models.Exhibition, error) {
	exhibition, err := s.repo.GetByIDWithWalls(ctx, id)
	if err != nil {
		return nil, err
	}
	if exhibition == nil || !visibleTo(exhibition, actor) {
		return nil, ErrExhibitionNotFound
	}
	return exhibition, nil
}

// visibleTo reports whether the actor may see the exhibition. Published
// exhibitions are visible to all; drafts and archives only to their
// curator and admins.
func visibleTo(exhibition *models.Exhibition, actor *models.User) bool {
	if exhibition.State == models.ExhibitionStatePublished {
		return true
	}
	return actor != nil && (exhibition.UserID == actor.ID || actor.Role == models.RoleAdmin)
}

// List returns a page of exhibitions matching the filter.
func (s *Service) List(ctx context.Context, filter exhibitionrepo.ListFilter) ([]*models.Exhibition, int64, error) {
	return s.repo.List(ctx, filter)
}

// Update revises a draft's metadata. Owners and admins may update.
func (s *Service) Update(ctx context.Context, id uint, actor *models.User, draft Draft) (*models.Exhibition, error) {
	exhibition, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	startsAt := exhibition.StartsAt
	endsAt := exhibition.EndsAt
	if !draft.StartsAt.IsZero() {
		startsAt = draft.StartsAt
	}
	if !draft.EndsAt.IsZero() {
		endsAt = draft.EndsAt
	}
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidDateRange
	}

	if draft.Title != "" {
		exhibition.Title = draft.Title
	}
	exhibition.Description = draft.Description
	exhibition.StartsAt = startsAt
	exhibition.EndsAt = endsAt

	if draft.Environment != nil {
		envJSON, err := encodeEnvironment(draft.Environment)
		if err != nil {
			return nil, err
		}
		exhibition.Environment = envJSON
	}

	if err := s.repo.Update(ctx, exhibition); err != nil {
		return nil, err
	}
	return exhibition, nil
}

// Publish moves a draft to the published state.
func (s *Service) Publish(ctx context.Context, id uint, actor *models.User) (*models.Exhibition, error) {
	return s.transition(ctx, id, actor, models.ExhibitionStateDraft, models.ExhibitionStatePublished)
}

// Archive moves a published exhibition to the archived state.
func (s *Service) Archive(ctx context.Context, id uint, actor *models.User) (*models.Exhibition, error) {
	return s.transition(ctx, id, actor, models.ExhibitionStatePublished, models.ExhibitionStateArchived)
}

func (s *Service) transition(
	ctx context.Context,
	id uint,
	actor *models.User,
	from, to models.ExhibitionState,
) (*models.Exhibition, error) {
	exhibition, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if exhibition.State != from {
		return nil, ErrInvalidStateChange
	}
	exhibition.State = to
	if err := s.repo.Update(ctx, exhibition); err != nil {
		return nil, err
	}
	return exhibition, nil
}

// Delete removes an exhibition with its walls and placements.
func (s *Service) Delete(ctx context.Context, id uint, actor *models.User) error {
	exhibition, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, exhibition.ID)
}

// AddWall appends a wall to the exhibition at the given display position.
func (s *Service) AddWall(ctx context.Context, exhibitionID uint, actor *models.User, name string, position int) (*models.Wall, error) {
	exhibition, err := s.getOwned(ctx, exhibitionID, actor)
	if err != nil {
		return nil, err
	}

	wall := &models.Wall{
		ExhibitionID: exhibition.ID,
		Name:         name,
		Position:     position,
	}
	if err := s.repo.CreateWall(ctx, wall); err != nil {
		return nil, fmt.Errorf("failed to create wall: %w", err)
	}
	return wall, nil
}

// Walls returns the exhibition's walls in display order, under the same
// visibility rule as Get.
func (s *Service) Walls(ctx context.Context, exhibitionID uint, actor *models.User) ([]*models.Wall, error) {
	exhibition, err := s.repo.GetByID(ctx, exhibitionID)
	if err != nil {
		return nil, err
	}
	if exhibition == nil || !visibleTo(exhibition, actor) {
		return nil, ErrExhibitionNotFound
	}
	return s.repo.GetWalls(ctx, exhibitionID)
}

// RenameWall updates a wall's name and position.
func (s *Service) RenameWall(ctx context.Context, exhibitionID, wallID uint, actor *models.User, name string, position int) (*models.Wall, error) {
	if _, err := s.getOwned(ctx, exhibitionID, actor); err != nil {
		return nil, err
	}

	wall, err := s.repo.GetWall(ctx, exhibitionID, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}

	if name != "" {
		wall.Name = name
	}
	if position != 0 {
		wall.Position = position
	}
	if err := s.repo.UpdateWall(ctx, wall); err != nil {
		return nil, err
	}
	return wall, nil
}

// RemoveWall deletes a wall and whatever hangs on it.
func (s *Service) RemoveWall(ctx context.Context, exhibitionID, wallID uint, actor *models.User) error {
	if _, err := s.getOwned(ctx, exhibitionID, actor); err != nil {
		return err
	}

	wall, err := s.repo.GetWall(ctx, exhibitionID, wallID)
	if err != nil {
		return err
	}
	if wall == nil {
		return ErrWallNotFound
	}
	return s.repo.DeleteWall(ctx, wall.ID)
}

// PlaceArtwork hangs an approved artwork on a wall slot. Each slot holds at
// most one artwork and an artwork hangs at most once per exhibition.
func (s *Service) PlaceArtwork(
	ctx context.Context,
	exhibitionID, wallID uint,
	slot models.WallSlot,
	artworkIdentifier string,
	actor *models.User,
) (*models.ArtworkPlacement, error) {
	if !models.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}

	exhibition, err := s.getOwned(ctx, exhibitionID, actor)
	if err != nil {
		return nil, err
	}

	wall, err := s.repo.GetWall(ctx, exhibitionID, wallID)
	if err != nil {
		return nil, err
	}
	if wall == nil {
		return nil, ErrWallNotFound
	}

	artwork, err := s.artworks.GetByIdentifier(ctx, artworkIdentifier)
	if err != nil {
		return nil, err
	}
	if artwork == nil {
		return nil, fmt.Errorf("artwork %s not found", artworkIdentifier)
	}
	if artwork.Status != models.ArtworkStatusApproved {
		return nil, ErrArtworkNotApproved
	}

	occupied, err := s.repo.GetPlacementBySlot(ctx, wall.ID, slot)
	if err != nil {
		return nil, err
	}
	if occupied != nil {
		return nil, ErrSlotOccupied
	}

	duplicate, err := s.repo.GetPlacementByArtwork(ctx, exhibition.ID, artwork.ID)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, ErrArtworkAlreadyPlaced
	}

	placement := &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         slot,
		ArtworkID:    artwork.ID,
	}
	if err := s.repo.CreatePlacement(ctx, placement); err != nil {
		return nil, fmt.Errorf("failed to place artwork: %w", err)
	}
	placement.Artwork = *artwork

	if s.notifier != nil && artwork.UserID != actor.ID {
		message := fmt.Sprintf("Your artwork %q was placed in exhibition %q", artwork.Title, exhibition.Title)
		if err := s.notifier.Notify(ctx, artwork.UserID, actor.ID, models.NotificationArtworkPlaced, "exhibition", exhibition.ID, message); err != nil {
			log.Printf("Failed to notify user %d about placement: %v", artwork.UserID, err)
		}
	}

	return placement, nil
}

// ClearSlot takes down whatever hangs on a wall slot.
func (s *Service) ClearSlot(ctx context.Context, exhibitionID, wallID uint, slot models.WallSlot, actor *models.User) error {
	if !models.ValidSlot(slot) {
		return ErrInvalidSlot
	}

	if _, err := s.getOwned(ctx, exhibitionID, actor); err != nil {
		return err
	}

	wall, err := s.repo.GetWall(ctx, exhibitionID, wallID)
	if err != nil {
		return err
	}
	if wall == nil {
		return ErrWallNotFound
	}

	if err := s.repo.DeletePlacement(ctx, wall.ID, slot); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotEmpty
		}
		return err
	}
	return nil
}

// Stockpile lists approved artworks not yet placed in the exhibition.
func (s *Service) Stockpile(ctx context.Context, exhibitionID uint, actor *models.User, page, limit int) ([]*models.Artwork, int64, error) {
	if _, err := s.getOwned(ctx, exhibitionID, actor); err != nil {
		return nil, 0, err
	}
	return s.repo.GetStockpile(ctx, exhibitionID, page, limit)
}

// EnvironmentSettings decodes the exhibition's stored scene settings.
func (s *Service) EnvironmentSettings(exhibition *models.Exhibition) (*Environment, error) {
	if exhibition.Environment == "" {
		return &Environment{}, nil
	}
	var env Environment
	if err := json.Unmarshal([]byte(exhibition.Environment), &env); err != nil {
		return nil, fmt.Errorf("corrupt environment settings: %w", err)
	}
	return &env, nil
}

// Count returns the total number of exhibitions.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) getOwned(ctx context.Context, id uint, actor *models.User) (*models.Exhibition, error) {
	exhibition, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exhibition == nil {
		return nil, ErrExhibitionNotFound
	}
	if exhibition.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, ErrPermissionDenied
	}
	return exhibition, nil
}

func encodeEnvironment(settings map[string]interface{}) (string, error) {
	if settings == nil {
		return "", nil
	}
	env, err := DecodeEnvironment(settings)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
