package keys

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/utils"
	"gorm.io/gorm"
)

// Repository wraps all static API token database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new token repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByApiToken resolves an active API token to its owning user.
func (r *Repository) GetUserByApiToken(token string) (*models.User, error) {
	if token == "" {
		return nil, errors.New("invalid or non-existent API token")
	}

	hasher := sha256.New()
	hasher.Write([]byte(token))
	hashedToken := hex.EncodeToString(hasher.Sum(nil))

	var apiToken models.ApiToken
	result := r.db.Preload("User").Where("token = ? AND is_active = ?", hashedToken, true).First(&apiToken)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid or non-existent API token")
		}
		return nil, result.Error
	}

	if apiToken.User.ID == 0 {
		return nil, errors.New("invalid or non-existent API token")
	}

	utils.SafeGo(func() {
		r.updateTokenLastUsed(apiToken.ID)
	})
	return &apiToken.User, nil
}

func (r *Repository) updateTokenLastUsed(tokenID uint) {
	ctx := context.Background()
	err := r.db.WithContext(ctx).Model(&models.ApiToken{}).Where("id = ?", tokenID).Update("last_used_at", time.Now()).Error
	if err != nil {
		log.Printf("Failed to update last_used_at for token ID %d: %v", tokenID, err)
	}
}

// CreateKey stores a token record. Token must already be hashed.
func (r *Repository) CreateKey(key *models.ApiToken) error {
	return r.db.Create(&key).Error
}

// HashToken hashes a plaintext token for storage.
func HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}

// GetAllApiTokensByUser lists a user's tokens, newest first.
func (r *Repository) GetAllApiTokensByUser(userID uint) ([]models.ApiToken, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var apiTokens []models.ApiToken
	result := r.db.Where("user_id = ?", userID).Order("created_at desc").Find(&apiTokens)
	return apiTokens, result.Error
}

// SetApiTokenActive enables or disables a token owned by userID.
func (r *Repository) SetApiTokenActive(tokenID, userID uint, active bool) error {
	if tokenID == 0 || userID == 0 {
		return errors.New("invalid token ID or user ID")
	}

	result := r.db.Model(&models.ApiToken{}).Where("id = ? AND user_id = ?", tokenID, userID).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteApiToken removes a token owned by userID.
func (r *Repository) DeleteApiToken(tokenID, userID uint) error {
	if tokenID == 0 || userID == 0 {
		return errors.New("invalid token ID or user ID")
	}

	result := r.db.Where("id = ? AND user_id = ?", tokenID, userID).Delete(&models.ApiToken{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
