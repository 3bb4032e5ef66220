package exhibitions

import (
	"context"
	"errors"
	"time"

	"github.com/calyxa/galerie/database/models"
	"gorm.io/gorm"
)

// Repository wraps all exhibition, wall and placement database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new exhibition repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database handle.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Create inserts an exhibition.
func (r *Repository) Create(ctx context.Context, exhibition *models.Exhibition) error {
	return r.db.WithContext(ctx).Create(exhibition).Error
}

// GetByID fetches an exhibition, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Exhibition, error) {
	var exhibition models.Exhibition
	err := r.db.WithContext(ctx).First(&exhibition, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exhibition, nil
}

// GetByIDWithWalls fetches an exhibition with walls and placements preloaded.
func (r *Repository) GetByIDWithWalls(ctx context.Context, id uint) (*models.Exhibition, error) {
	var exhibition models.Exhibition
	err := r.db.WithContext(ctx).
		Preload("Walls", func(db *gorm.DB) *gorm.DB {
			return db.Order("walls.position asc")
		}).
		Preload("Walls.Placements.Artwork").
		First(&exhibition, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exhibition, nil
}

// ListFilter narrows exhibition listings.
type ListFilter struct {
	State  models.ExhibitionState // empty = any
	UserID uint                   // 0 = any curator
	RunsAt *time.Time             // only exhibitions whose date range covers this instant
	Page   int
	Limit  int
}

// List returns exhibitions matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*models.Exhibition, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Exhibition{})

	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.UserID != 0 {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.RunsAt != nil {
		db = db.Where("starts_at <= ? AND ends_at >= ?", *filter.RunsAt, *filter.RunsAt)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var exhibitions []*models.Exhibition
	offset := (filter.Page - 1) * filter.Limit
	err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&exhibitions).Error
	return exhibitions, total, err
}

// Update saves an exhibition.
func (r *Repository) Update(ctx context.Context, exhibition *models.Exhibition) error {
	return r.db.WithContext(ctx).Save(exhibition).Error
}

// Delete removes an exhibition with its walls and placements.
func (r *Repository) Delete(ctx context.Context, exhibitionID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exhibition_id = ?", exhibitionID).Delete(&models.ArtworkPlacement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("exhibition_id = ?", exhibitionID).Delete(&models.Wall{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Exhibition{}, exhibitionID).Error
	})
}

// Count returns the total number of exhibitions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Exhibition{}).Count(&count).Error
	return count, err
}

// --- Walls ---

// CreateWall inserts a wall.
func (r *Repository) CreateWall(ctx context.Context, wall *models.Wall) error {
	return r.db.WithContext(ctx).Create(wall).Error
}

// GetWall fetches a wall belonging to an exhibition, nil when absent.
func (r *Repository) GetWall(ctx context.Context, exhibitionID, wallID uint) (*models.Wall, error) {
	var wall models.Wall
	err := r.db.WithContext(ctx).Where("id = ? AND exhibition_id = ?", wallID, exhibitionID).First(&wall).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &wall, nil
}

// GetWalls returns an exhibition's walls in display order with placements.
func (r *Repository) GetWalls(ctx context.Context, exhibitionID uint) ([]*models.Wall, error) {
	var walls []*models.Wall
	err := r.db.WithContext(ctx).
		Where("exhibition_id = ?", exhibitionID).
		Preload("Placements.Artwork").
		Order("position asc").
		Find(&walls).Error
	return walls, err
}

// UpdateWall saves a wall.
func (r *Repository) UpdateWall(ctx context.Context, wall *models.Wall) error {
	return r.db.WithContext(ctx).Save(wall).Error
}

// DeleteWall removes a wall and its placements.
func (r *Repository) DeleteWall(ctx context.Context, wallID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wall_id = ?", wallID).Delete(&models.ArtworkPlacement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Wall{}, wallID).Error
	})
}

// CountWalls returns the number of walls in an exhibition.
func (r *Repository) CountWalls(ctx context.Context, exhibitionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Wall{}).Where("exhibition_id = ?", exhibitionID).Count(&count).Error
	return count, err
}

// --- Placements ---

// GetPlacementBySlot fetches the placement occupying a wall slot, nil when empty.
func (r *Repository) GetPlacementBySlot(ctx context.Context, wallID uint, slot models.WallSlot) (*models.ArtworkPlacement, error) {
	var placement models.ArtworkPlacement
	err := r.db.WithContext(ctx).Where("wall_id = ? AND slot = ?", wallID, slot).First(&placement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &placement, nil
}

// GetPlacementByArtwork fetches an artwork's placement within an exhibition,
// nil when the artwork is not placed there.
func (r *Repository) GetPlacementByArtwork(ctx context.Context, exhibitionID, artworkID uint) (*models.ArtworkPlacement, error) {
	var placement models.ArtworkPlacement
	err := r.db.WithContext(ctx).Where("exhibition_id = ? AND artwork_id = ?", exhibitionID, artworkID).First(&placement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &placement, nil
}

// CreatePlacement inserts a placement.
func (r *Repository) CreatePlacement(ctx context.Context, placement *models.ArtworkPlacement) error {
	return r.db.WithContext(ctx).Create(placement).Error
}

// DeletePlacement clears a wall slot. Returns gorm.ErrRecordNotFound when
// the slot was already empty.
func (r *Repository) DeletePlacement(ctx context.Context, wallID uint, slot models.WallSlot) error {
	result := r.db.WithContext(ctx).Where("wall_id = ? AND slot = ?", wallID, slot).Delete(&models.ArtworkPlacement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetStockpile returns approved artworks not placed anywhere in the given
// exhibition, newest first.
func (r *Repository) GetStockpile(ctx context.Context, exhibitionID uint, page, limit int) ([]*models.Artwork, int64, error) {
	placed := r.db.Model(&models.ArtworkPlacement{}).
		Select("artwork_id").
		Where("exhibition_id = ?", exhibitionID)

	db := r.db.WithContext(ctx).Model(&models.Artwork{}).
		Where("status = ?", models.ArtworkStatusApproved).
		Where("id NOT IN (?)", placed)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var artworks []*models.Artwork
	offset := (page - 1) * limit
	err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&artworks).Error
	return artworks, total, err
}
