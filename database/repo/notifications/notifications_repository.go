package notifications

import (
	"context"
	"time"

	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/base"
	"gorm.io/gorm"
)

// Repository wraps all notification database operations.
type Repository struct {
	*base.Repository[models.Notification]
}

// NewRepository creates a new notification repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Repository: base.NewRepository[models.Notification](db)}
}

// ListByRecipient returns a page of a user's notifications, newest first.
// When unreadOnly is set, read notifications are skipped.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool, page, limit int) ([]*models.Notification, int64, error) {
	db := r.DB().WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		db = db.Where("is_read = ?", false)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*models.Notification
	offset := (page - 1) * limit
	err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&notifications).Error
	return notifications, total, err
}

// CountUnread returns the number of unread notifications for a user.
func (r *Repository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.DB().WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks one notification read. Returns gorm.ErrRecordNotFound when
// the notification does not belong to the user.
func (r *Repository) MarkRead(ctx context.Context, notificationID, recipientID uint) error {
	now := time.Now()
	result := r.DB().WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllRead marks all of a user's notifications read and returns how many
// were affected.
func (r *Repository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	now := time.Now()
	result := r.DB().WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected, result.Error
}
