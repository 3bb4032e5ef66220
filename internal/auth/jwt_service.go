package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/repo/keys"
	"github.com/calyxa/galerie/utils"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair bundles an access token with its paired refresh token.
type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// TokenClaims is the decoded claim set of an access token.
type TokenClaims struct {
	Username string
	UserID   uint
	Role     string
	Type     string
	Exp      int64
	Iat      int64
}

// TokenConfig holds the signing secret and token lifetimes.
type TokenConfig struct {
	Secret           []byte
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
}

// JWTService issues and validates access tokens, and resolves static API
// tokens through the keys repository.
type JWTService struct {
	keysRepo *keys.Repository
	config   TokenConfig
	mutex    sync.RWMutex
}

// NewJWTService creates a JWT service from the application configuration.
func NewJWTService(cfg *config.Config, keysRepo *keys.Repository) (*JWTService, error) {
	svc := &JWTService{
		keysRepo: keysRepo,
	}

	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters long, got %d", len(cfg.JWTSecret))
	}

	expiresIn, err := time.ParseDuration(cfg.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access token TTL: %s", cfg.JWTExpiresIn)
	}

	refreshExpiresIn, err := time.ParseDuration(cfg.JWTRefreshExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh token TTL: %s", cfg.JWTRefreshExpiresIn)
	}

	svc.config = TokenConfig{
		Secret:           []byte(cfg.JWTSecret),
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}

	return svc, nil
}

// GetConfig returns a copy of the current token configuration.
func (s *JWTService) GetConfig() TokenConfig {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return TokenConfig{
		Secret:           append([]byte{}, s.config.Secret...),
		ExpiresIn:        s.config.ExpiresIn,
		RefreshExpiresIn: s.config.RefreshExpiresIn,
	}
}

// SetConfig replaces the token configuration. Intended for tests.
func (s *JWTService) SetConfig(config TokenConfig) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.config = config
}

// GenerateTokens issues an access token and a fresh refresh token.
func (s *JWTService) GenerateTokens(username string, userID uint, role string) (*TokenPair, error) {
	accessToken, accessTokenExpiry, err := s.GenerateAccessToken(username, userID, role)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshTokenExpiry, err := s.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:        accessToken,
		AccessTokenExpiry:  accessTokenExpiry,
		RefreshToken:       refreshToken,
		RefreshTokenExpiry: refreshTokenExpiry,
	}, nil
}

// GenerateAccessToken issues a signed access token only.
func (s *JWTService) GenerateAccessToken(username string, userID uint, role string) (string, time.Time, error) {
	config := s.GetConfig()

	if len(config.Secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not initialized")
	}

	accessTokenExpiry := time.Now().Add(config.ExpiresIn)
	accessClaims := jwt.MapClaims{
		"username": username,
		"user_id":  userID,
		"role":     role,
		"type":     "access",
		"exp":      accessTokenExpiry.Unix(),
		"iat":      time.Now().Unix(),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessToken, accessTokenExpiry, nil
}

// GenerateRefreshToken issues an opaque refresh token.
func (s *JWTService) GenerateRefreshToken() (string, time.Time, error) {
	config := s.GetConfig()

	refreshToken, err := utils.GenerateRandomToken(64)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	refreshTokenExpiry := time.Now().Add(config.RefreshExpiresIn)
	return refreshToken, refreshTokenExpiry, nil
}

// GenerateStaticToken issues an opaque static API token.
func (s *JWTService) GenerateStaticToken() (string, error) {
	return utils.GenerateRandomToken(64)
}

// ParseToken parses and validates a signed access token.
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	config := s.GetConfig()

	if len(config.Secret) == 0 {
		return nil, errors.New("JWT secret is not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return config.Secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ExtractClaims decodes the claim set of a token into TokenClaims.
func (s *JWTService) ExtractClaims(tokenString string) (*TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	tokenType, _ := claims["type"].(string)

	userIDFloat, _ := claims["user_id"].(float64)
	expFloat, _ := claims["exp"].(float64)
	iatFloat, _ := claims["iat"].(float64)

	return &TokenClaims{
		Username: username,
		UserID:   uint(userIDFloat),
		Role:     role,
		Type:     tokenType,
		Exp:      int64(expFloat),
		Iat:      int64(iatFloat),
	}, nil
}

// IsAccessToken reports whether the token carries the access type claim.
func (s *JWTService) IsAccessToken(tokenString string) (bool, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return false, err
	}

	tokenType, _ := claims["type"].(string)
	return tokenType == "access", nil
}

// StaticTokenUser is the resolved owner of a static API token.
type StaticTokenUser struct {
	ID       uint
	Username string
	Role     string
}

// ValidateStaticToken resolves a static API token to its owning user.
func (s *JWTService) ValidateStaticToken(token string) (*StaticTokenUser, error) {
	if s.keysRepo == nil {
		return nil, errors.New("keys repository not initialized")
	}

	user, err := s.keysRepo.GetUserByApiToken(token)
	if err != nil {
		return nil, err
	}

	return &StaticTokenUser{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}
