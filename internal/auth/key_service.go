package auth

import (
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/keys"
)

// KeyService manages static API tokens.
type KeyService struct {
	repo       *keys.Repository
	jwtService *JWTService
}

// NewKeyService creates an API token service.
func NewKeyService(repo *keys.Repository, jwtService *JWTService) *KeyService {
	return &KeyService{repo: repo, jwtService: jwtService}
}

// CreateToken issues a new static token for a user. The plaintext token is
// returned once; only its hash is stored.
func (s *KeyService) CreateToken(userID uint, description string) (string, *models.ApiToken, error) {
	plaintext, err := s.jwtService.GenerateStaticToken()
	if err != nil {
		return "", nil, err
	}

	token := &models.ApiToken{
		UserID:      userID,
		IsActive:    true,
		Token:       keys.HashToken(plaintext),
		Description: description,
	}
	if err := s.repo.CreateKey(token); err != nil {
		return "", nil, err
	}

	return plaintext, token, nil
}

// GetAllApiTokensByUser lists a user's static tokens.
func (s *KeyService) GetAllApiTokensByUser(userID uint) ([]models.ApiToken, error) {
	return s.repo.GetAllApiTokensByUser(userID)
}

// SetApiTokenActive enables or disables a token owned by userID.
func (s *KeyService) SetApiTokenActive(tokenID, userID uint, active bool) error {
	return s.repo.SetApiTokenActive(tokenID, userID, active)
}

// DeleteApiToken revokes a token owned by userID.
func (s *KeyService) DeleteApiToken(tokenID, userID uint) error {
	return s.repo.DeleteApiToken(tokenID, userID)
}
