package comments

import (
	"context"
	"errors"

	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/base"
	"gorm.io/gorm"
)

// Repository wraps all comment database operations.
type Repository struct {
	*base.Repository[models.Comment]
}

// NewRepository creates a new comment repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Comment](db)}
}

// GetWithArtwork fetches a comment with its artwork preloaded, nil when
// absent.
func (r *Repository) GetWithArtwork(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.DB().WithContext(ctx).Preload("Artwork").First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListByArtwork returns a page of comments on an artwork, newest first.
func (r *Repository) ListByArtwork(ctx context.Context, artworkID uint, page, limit int) ([]*models.Comment, int64, error) {
	db := r.DB().WithContext(ctx).Model(&models.Comment{}).Where("artwork_id = ?", artworkID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	offset := (page - 1) * limit
	err := db.Preload("User").Order("created_at desc").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, total, err
}

// DeleteByArtwork removes all comments on an artwork.
func (r *Repository) DeleteByArtwork(ctx context.Context, artworkID uint) error {
	return r.DB().WithContext(ctx).Where("artwork_id = ?", artworkID).Delete(&models.Comment{}).Error
}
