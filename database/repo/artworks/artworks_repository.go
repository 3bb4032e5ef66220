package artworks

import (
	"context"
	"errors"
	"time"

	"github.com/calyxa/galerie/database/models"
	"gorm.io/gorm"
)

// ErrAlreadyModerated is returned when approving or rejecting an artwork
// that has already been reviewed.
var ErrAlreadyModerated = errors.New("artwork already moderated")

// ListFilter narrows artwork listings.
type ListFilter struct {
	Status models.ArtworkStatus // empty = any
	UserID uint                 // 0 = any artist
	Query  string               // title substring match
	Page   int
	Limit  int
}

// Repository wraps all artwork database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new artwork repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database handle.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Create inserts an artwork.
func (r *Repository) Create(ctx context.Context, artwork *models.Artwork) error {
	return r.db.WithContext(ctx).Create(artwork).Error
}

// GetByIdentifier fetches an artwork by its public identifier, nil when absent.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.WithContext(ctx).Where("identifier = ?", identifier).First(&artwork).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artwork, nil
}

// GetByID fetches an artwork by primary key, nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uint) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.WithContext(ctx).First(&artwork, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artwork, nil
}

// GetByUserAndHash finds a user's artwork with the given file hash; used for
// per-user upload deduplication.
func (r *Repository) GetByUserAndHash(ctx context.Context, userID uint, fileHash string) (*models.Artwork, error) {
	var artwork models.Artwork
	err := r.db.WithContext(ctx).Where("user_id = ? AND file_hash = ?", userID, fileHash).First(&artwork).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &artwork, nil
}

// List returns artworks matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]*models.Artwork, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.Artwork{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Query != "" {
		db = db.Where("title LIKE ?", "%"+filter.Query+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var artworks []*models.Artwork
	offset := (filter.Page - 1) * filter.Limit
	err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&artworks).Error
	return artworks, total, err
}

// Update saves an artwork.
func (r *Repository) Update(ctx context.Context, artwork *models.Artwork) error {
	return r.db.WithContext(ctx).Save(artwork).Error
}

// SetStatus transitions a pending artwork to approved or rejected. The
// guard on the previous status makes concurrent moderation safe.
func (r *Repository) SetStatus(ctx context.Context, artworkID uint, status models.ArtworkStatus, moderatorID uint, reason string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Artwork{}).
		Where("id = ? AND status = ?", artworkID, models.ArtworkStatusPending).
		Updates(map[string]interface{}{
			"status":        status,
			"moderated_by":  moderatorID,
			"moderated_at":  now,
			"reject_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyModerated
	}
	return nil
}

// Delete removes an artwork together with its placements and comments.
func (r *Repository) Delete(ctx context.Context, artworkID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artwork_id = ?", artworkID).Delete(&models.ArtworkPlacement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("artwork_id = ?", artworkID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Artwork{}, artworkID).Error
	})
}

// CountByStatus returns the number of artworks with the given status.
func (r *Repository) CountByStatus(ctx context.Context, status models.ArtworkStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Artwork{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// Count returns the total number of artworks.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Artwork{}).Count(&count).Error
	return count, err
}
