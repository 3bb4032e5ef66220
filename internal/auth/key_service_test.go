package auth

import (
	"testing"

	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestKeyService(t *testing.T) (*KeyService, *JWTService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.ApiToken{}))

	keysRepo := keys.NewRepository(db)
	jwtService, err := NewJWTService(testConfig(), keysRepo)
	require.NoError(t, err)

	return NewKeyService(keysRepo, jwtService), jwtService, db
}

func TestCreateToken_StoredHashed(t *testing.T) {
	svc, jwtService, db := newTestKeyService(t)

	user := &models.User{Username: "scripter", Password: "x", Role: models.RoleArtist}
	require.NoError(t, db.Create(user).Error)

	plaintext, token, err := svc.CreateToken(user.ID, "upload script")
	require.NoError(t, err)
	assert.NotEmpty(t, plaintext)
	assert.NotEqual(t, plaintext, token.Token)
	assert.True(t, token.IsActive)
	assert.Equal(t, "upload script", token.Description)

	// The plaintext resolves back to its owner.
	resolved, err := jwtService.ValidateStaticToken(plaintext)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, "scripter", resolved.Username)
	assert.Equal(t, models.RoleArtist, resolved.Role)
}

func TestValidateStaticToken_DisabledToken(t *testing.T) {
	svc, jwtService, db := newTestKeyService(t)

	user := &models.User{Username: "scripter", Password: "x", Role: models.RoleArtist}
	require.NoError(t, db.Create(user).Error)

	plaintext, token, err := svc.CreateToken(user.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.SetApiTokenActive(token.ID, user.ID, false))

	_, err = jwtService.ValidateStaticToken(plaintext)
	assert.Error(t, err)

	require.NoError(t, svc.SetApiTokenActive(token.ID, user.ID, true))

	_, err = jwtService.ValidateStaticToken(plaintext)
	assert.NoError(t, err)
}

func TestSetApiTokenActive_WrongOwner(t *testing.T) {
	svc, _, db := newTestKeyService(t)

	user := &models.User{Username: "scripter", Password: "x", Role: models.RoleArtist}
	require.NoError(t, db.Create(user).Error)

	_, token, err := svc.CreateToken(user.ID, "")
	require.NoError(t, err)

	err = svc.SetApiTokenActive(token.ID, user.ID+1, false)
	assert.Error(t, err)
}

func TestDeleteApiToken(t *testing.T) {
	svc, jwtService, db := newTestKeyService(t)

	user := &models.User{Username: "scripter", Password: "x", Role: models.RoleArtist}
	require.NoError(t, db.Create(user).Error)

	plaintext, token, err := svc.CreateToken(user.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteApiToken(token.ID, user.ID))

	_, err = jwtService.ValidateStaticToken(plaintext)
	assert.Error(t, err)

	tokens, err := svc.GetAllApiTokensByUser(user.ID)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
