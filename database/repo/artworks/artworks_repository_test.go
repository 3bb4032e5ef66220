package artworks

import (
	"context"
	"fmt"
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

	err = db.AutoMigrate(&models.User{}, &models.Artwork{}, &models.ArtworkPlacement{}, &models.Comment{})
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedArtwork(t *testing.T, repo *Repository, userID uint, identifier string, status models.ArtworkStatus) *models.Artwork {
	t.Helper()
	artwork := &models.Artwork{
		Identifier:   identifier,
		Title:        "Untitled " + identifier,
		OriginalName: identifier + ".png",
		FileSize:     1024,
		MimeType:     "image/png",
		FileHash:     "hash-" + identifier,
		StorageName:  "local",
		Status:       status,
		UserID:       userID,
	}
	require.NoError(t, repo.Create(context.Background(), artwork))
	return artwork
}

func TestGetByIdentifier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)

	created := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusPending)

	got, err := repo.GetByIdentifier(context.Background(), "piece-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, models.ArtworkStatusPending, got.Status)
}

func TestGetByIdentifier_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	got, err := repo.GetByIdentifier(context.Background(), "no-such-piece")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetByUserAndHash_Dedupe(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)
	other := seedUser(t, db, "other", models.RoleArtist)

	created := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusPending)

	got, err := repo.GetByUserAndHash(context.Background(), artist.ID, created.FileHash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	// The same file uploaded by a different artist is not a duplicate.
	got, err = repo.GetByUserAndHash(context.Background(), other.ID, created.FileHash)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetStatus_Approve(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)
	curator := seedUser(t, db, "curator", models.RoleCurator)

	artwork := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusPending)

	err := repo.SetStatus(context.Background(), artwork.ID, models.ArtworkStatusApproved, curator.ID, "")
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), artwork.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusApproved, got.Status)
	require.NotNil(t, got.ModeratedBy)
	assert.Equal(t, curator.ID, *got.ModeratedBy)
	assert.NotNil(t, got.ModeratedAt)
}

func TestSetStatus_AlreadyModerated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)
	curator := seedUser(t, db, "curator", models.RoleCurator)

	artwork := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusPending)

	require.NoError(t, repo.SetStatus(context.Background(), artwork.ID, models.ArtworkStatusApproved, curator.ID, ""))

	// Second review of the same artwork must fail, whichever verdict.
	err := repo.SetStatus(context.Background(), artwork.ID, models.ArtworkStatusRejected, curator.ID, "too late")
	assert.ErrorIs(t, err, ErrAlreadyModerated)
}

func TestSetStatus_RejectKeepsReason(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)
	curator := seedUser(t, db, "curator", models.RoleCurator)

	artwork := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusPending)

	err := repo.SetStatus(context.Background(), artwork.ID, models.ArtworkStatusRejected, curator.ID, "out of scope")
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), artwork.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusRejected, got.Status)
	assert.Equal(t, "out of scope", got.RejectReason)
}

func TestList_FilterByStatusAndUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist1 := seedUser(t, db, "artist1", models.RoleArtist)
	artist2 := seedUser(t, db, "artist2", models.RoleArtist)

	seedArtwork(t, repo, artist1.ID, "a1", models.ArtworkStatusApproved)
	seedArtwork(t, repo, artist1.ID, "a2", models.ArtworkStatusPending)
	seedArtwork(t, repo, artist2.ID, "b1", models.ArtworkStatusApproved)

	list, total, err := repo.List(context.Background(), ListFilter{
		Status: models.ArtworkStatusApproved,
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	list, total, err = repo.List(context.Background(), ListFilter{
		Status: models.ArtworkStatusApproved,
		UserID: artist1.ID,
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].Identifier)
}

func TestList_TitleSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)

	blue := seedArtwork(t, repo, artist.ID, "blue", models.ArtworkStatusApproved)
	blue.Title = "Blue Nocturne"
	require.NoError(t, repo.Update(context.Background(), blue))
	seedArtwork(t, repo, artist.ID, "red", models.ArtworkStatusApproved)

	list, total, err := repo.List(context.Background(), ListFilter{
		Query: "Nocturne",
		Page:  1,
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "blue", list[0].Identifier)
}

func TestList_Pagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)

	for i := 0; i < 5; i++ {
		seedArtwork(t, repo, artist.ID, fmt.Sprintf("piece-%d", i), models.ArtworkStatusApproved)
	}

	list, total, err := repo.List(context.Background(), ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, list, 2)
}

func TestDelete_CascadesPlacementsAndComments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)

	artwork := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusApproved)
	require.NoError(t, db.Create(&models.ArtworkPlacement{
		ExhibitionID: 1, WallID: 1, Slot: models.SlotLeft, ArtworkID: artwork.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Comment{
		ArtworkID: artwork.ID, UserID: artist.ID, Body: "nice",
	}).Error)

	require.NoError(t, repo.Delete(context.Background(), artwork.ID))

	got, err := repo.GetByID(context.Background(), artwork.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var placements int64
	require.NoError(t, db.Model(&models.ArtworkPlacement{}).Where("artwork_id = ?", artwork.ID).Count(&placements).Error)
	assert.Zero(t, placements)

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Where("artwork_id = ?", artwork.ID).Count(&comments).Error)
	assert.Zero(t, comments)
}

func TestCountByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)

	seedArtwork(t, repo, artist.ID, "a", models.ArtworkStatusPending)
	seedArtwork(t, repo, artist.ID, "b", models.ArtworkStatusApproved)
	seedArtwork(t, repo, artist.ID, "c", models.ArtworkStatusApproved)

	pending, err := repo.CountByStatus(context.Background(), models.ArtworkStatusPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	approved, err := repo.CountByStatus(context.Background(), models.ArtworkStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(2), approved)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestCreate_ReuploadAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	artist := seedUser(t, db, "artist", models.RoleArtist)

	first := seedArtwork(t, repo, artist.ID, "piece-1", models.ArtworkStatusApproved)
	require.NoError(t, repo.Delete(context.Background(), first.ID))

	// Uploading the same file again after deletion starts a fresh record.
	second := &models.Artwork{
		Identifier:   "piece-1b",
		Title:        "Untitled piece-1b",
		OriginalName: "piece-1.png",
		FileSize:     1024,
		MimeType:     "image/png",
		FileHash:     first.FileHash,
		StorageName:  "local",
		Status:       models.ArtworkStatusPending,
		UserID:       artist.ID,
	}
	require.NoError(t, repo.Create(context.Background(), second))

	got, err := repo.GetByUserAndHash(context.Background(), artist.ID, first.FileHash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}
