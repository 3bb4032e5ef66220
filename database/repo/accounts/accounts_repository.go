package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/utils"
	cryptopackage "github.com/calyxa/galerie/utils/crypto"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = errors.New("user not found")

// Repository is the accounts repository.
type Repository struct {
	db        *gorm.DB
	userGroup singleflight.Group
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database handle.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateDefaultAdminUser creates the admin user on first start. Returns the
// generated plaintext password when a user was created, "" otherwise.
func (r *Repository) CreateDefaultAdminUser() (string, error) {
	var count int64

	if err := r.db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to check admin user existence: %w", err)
	}

	if count == 0 {
		randomPassword, err := utils.GenerateRandomToken(16)
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}

		hashedPassword, err := cryptopackage.GenerateFromPassword(randomPassword)
		if err != nil {
			return "", fmt.Errorf("failed to hash default password: %w", err)
		}

		user := &models.User{
			Username: "admin",
			Password: hashedPassword,
			Role:     models.RoleAdmin,
		}

		if err := r.db.Create(user).Error; err != nil {
			return "", fmt.Errorf("failed to create default admin user: %w", err)
		}

		return randomPassword, nil
	}

	return "", nil
}

// GetUserByUsername fetches a user by username.
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID fetches a user by ID. Concurrent lookups for the same ID are
// collapsed through singleflight.
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	v, err, _ := r.userGroup.Do(fmt.Sprintf("user:%d", id), func() (interface{}, error) {
		var user models.User
		err := r.db.Where("id = ?", id).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &user, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.User), nil
}

// CreateUser creates a user.
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateUser saves a user.
func (r *Repository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// DeleteUser removes a user.
func (r *Repository) DeleteUser(userID uint) error {
	return r.db.Delete(&models.User{}, userID).Error
}

// UserExists reports whether a username is taken.
func (r *Repository) UserExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// GetAllUsers returns a page of users, newest first.
func (r *Repository) GetAllUsers(page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	db := r.db.Model(&models.User{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := db.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&users).Error
	return users, total, err
}

// CountUsers returns the number of users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// WithContext returns a repository bound to ctx.
func (r *Repository) WithContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx)}
}
