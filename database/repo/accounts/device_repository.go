package accounts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/calyxa/galerie/database/models"
	"gorm.io/gorm"
)

// DeviceRepository wraps all device/refresh-token database operations.
// Refresh tokens are stored hashed; the plaintext only ever lives in the
// client cookie.
type DeviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func hashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CreateLoginDevice records a fresh login session.
func (r *DeviceRepository) CreateLoginDevice(userID uint, deviceID string, refreshToken string, refreshTokenExpiry time.Time) error {
	device := &models.Device{
		UserID:       userID,
		RefreshToken: hashToken(refreshToken),
		Expiry:       refreshTokenExpiry,
		DeviceID:     deviceID,
	}
	return r.db.Create(device).Error
}

// GetDeviceByRefreshTokenAndDeviceID looks up an unexpired session by
// refresh token and device ID. Returns nil when absent.
func (r *DeviceRepository) GetDeviceByRefreshTokenAndDeviceID(refreshToken string, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("refresh_token = ? AND device_id = ? AND expiry > ?", hashToken(refreshToken), deviceID, time.Now()).First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// RotateRefreshToken replaces the stored token for a device.
func (r *DeviceRepository) RotateRefreshToken(userID uint, deviceID, newRefreshToken string, newRefreshTokenExpiry time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("device_id = ?", deviceID).Delete(&models.Device{}).Error; err != nil {
			return err
		}

		newDevice := &models.Device{
			UserID:       userID,
			RefreshToken: hashToken(newRefreshToken),
			Expiry:       newRefreshTokenExpiry,
			DeviceID:     deviceID,
		}
		return tx.Create(newDevice).Error
	})
}

// DeleteDeviceByDeviceID removes a session.
func (r *DeviceRepository) DeleteDeviceByDeviceID(deviceID string) error {
	return r.db.Where("device_id = ?", deviceID).Delete(&models.Device{}).Error
}

// DeleteDevicesByUser removes all sessions of a user.
func (r *DeviceRepository) DeleteDevicesByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Device{}).Error
}

// DeleteExpiredDevices drops sessions whose refresh token has expired.
func (r *DeviceRepository) DeleteExpiredDevices() (int64, error) {
	result := r.db.Where("expiry < ?", time.Now()).Delete(&models.Device{})
	return result.RowsAffected, result.Error
}

// WithContext returns a repository bound to ctx.
func (r *DeviceRepository) WithContext(ctx context.Context) *DeviceRepository {
	return &DeviceRepository{db: r.db.WithContext(ctx)}
}
