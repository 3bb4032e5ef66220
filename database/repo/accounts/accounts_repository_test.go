package accounts

import (
	"testing"
	"time"

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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Device{}))
	return db
}

func TestCreateDefaultAdminUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	password, err := repo.CreateDefaultAdminUser()
	require.NoError(t, err)
	assert.NotEmpty(t, password)

	admin, err := repo.GetUserByUsername("admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	// Second call is a no-op once the admin exists.
	password, err = repo.CreateDefaultAdminUser()
	require.NoError(t, err)
	assert.Empty(t, password)
}

func TestUserExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateUser(&models.User{Username: "alice", Password: "x", Role: models.RoleArtist}))

	exists, err := repo.UserExists("alice")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UserExists("bob")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetUserByUsername_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	user, err := repo.GetUserByUsername("ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetAllUsers_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateUser(&models.User{Username: name, Password: "x", Role: models.RoleVisitor}))
	}

	users, total, err := repo.GetAllUsers(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)
}

func TestDeviceLifecycle(t *testing.T) {
	db := setupTestDB(t)
	devices := NewDeviceRepository(db)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, devices.CreateLoginDevice(1, "device-1", "refresh-token", expiry))

	// Tokens are stored hashed, never verbatim.
	var stored models.Device
	require.NoError(t, db.First(&stored).Error)
	assert.NotEqual(t, "refresh-token", stored.RefreshToken)

	device, err := devices.GetDeviceByRefreshTokenAndDeviceID("refresh-token", "device-1")
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, uint(1), device.UserID)

	device, err = devices.GetDeviceByRefreshTokenAndDeviceID("wrong-token", "device-1")
	require.NoError(t, err)
	assert.Nil(t, device)
}

func TestRotateRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	devices := NewDeviceRepository(db)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, devices.CreateLoginDevice(1, "device-1", "old-token", expiry))

	require.NoError(t, devices.RotateRefreshToken(1, "device-1", "new-token", time.Now().Add(2*time.Hour)))

	// The old token is dead after rotation.
	device, err := devices.GetDeviceByRefreshTokenAndDeviceID("old-token", "device-1")
	require.NoError(t, err)
	assert.Nil(t, device)

	device, err = devices.GetDeviceByRefreshTokenAndDeviceID("new-token", "device-1")
	require.NoError(t, err)
	assert.NotNil(t, device)
}

func TestDeleteExpiredDevices(t *testing.T) {
	db := setupTestDB(t)
	devices := NewDeviceRepository(db)

	require.NoError(t, devices.CreateLoginDevice(1, "live", "live-token", time.Now().Add(time.Hour)))
	require.NoError(t, devices.CreateLoginDevice(1, "stale", "stale-token", time.Now().Add(-time.Hour)))

	deleted, err := devices.DeleteExpiredDevices()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	device, err := devices.GetDeviceByRefreshTokenAndDeviceID("live-token", "live")
	require.NoError(t, err)
	assert.NotNil(t, device)
}

func TestDeleteDevicesByUser(t *testing.T) {
	db := setupTestDB(t)
	devices := NewDeviceRepository(db)

	expiry := time.Now().Add(time.Hour)
	require.NoError(t, devices.CreateLoginDevice(1, "d1", "t1", expiry))
	require.NoError(t, devices.CreateLoginDevice(1, "d2", "t2", expiry))
	require.NoError(t, devices.CreateLoginDevice(2, "d3", "t3", expiry))

	require.NoError(t, devices.DeleteDevicesByUser(1))

	device, err := devices.GetDeviceByRefreshTokenAndDeviceID("t1", "d1")
	require.NoError(t, err)
	assert.Nil(t, device)

	device, err = devices.GetDeviceByRefreshTokenAndDeviceID("t3", "d3")
	require.NoError(t, err)
	assert.NotNil(t, device)
}
