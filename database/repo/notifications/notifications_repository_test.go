package notifications

import (
	"context"
	"testing"

	"github.com/calyxa/galerie/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func seedNotification(t *testing.T, repo *Repository, recipientID uint, read bool) *models.Notification {
	t.Helper()
	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     99,
		Type:        models.NotificationArtworkApproved,
		TargetType:  "artwork",
		TargetID:    1,
		Message:     "Your artwork was approved",
		IsRead:      read,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	return notification
}

func TestListByRecipient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedNotification(t, repo, 1, false)
	seedNotification(t, repo, 1, true)
	seedNotification(t, repo, 2, false)

	list, total, err := repo.ListByRecipient(context.Background(), 1, false, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	unread, total, err := repo.ListByRecipient(context.Background(), 1, true, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, unread, 1)
	assert.False(t, unread[0].IsRead)
}

func TestCountUnread(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedNotification(t, repo, 1, false)
	seedNotification(t, repo, 1, false)
	seedNotification(t, repo, 1, true)

	count, err := repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	notification := seedNotification(t, repo, 1, false)

	require.NoError(t, repo.MarkRead(context.Background(), notification.ID, 1))

	var got models.Notification
	require.NoError(t, db.First(&got, notification.ID).Error)
	assert.True(t, got.IsRead)
	assert.NotNil(t, got.ReadAt)
}

func TestMarkRead_WrongRecipient(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	notification := seedNotification(t, repo, 1, false)

	// Another user cannot mark someone else's notification.
	err := repo.MarkRead(context.Background(), notification.ID, 2)
	assert.Error(t, err)

	var got models.Notification
	require.NoError(t, db.First(&got, notification.ID).Error)
	assert.False(t, got.IsRead)
}

func TestMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seedNotification(t, repo, 1, false)
	seedNotification(t, repo, 1, false)
	seedNotification(t, repo, 2, false)

	updated, err := repo.MarkAllRead(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// User 2's notifications are untouched.
	count, err = repo.CountUnread(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
