package exhibitions

import (
	"context"
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

	err = db.AutoMigrate(
		&models.User{},
		&models.Artwork{},
		&models.Exhibition{},
		&models.Wall{},
		&models.ArtworkPlacement{},
	)
	require.NoError(t, err)

	return db
}

func seedCurator(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{Username: "curator", Password: "x", Role: models.RoleCurator}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedExhibition(t *testing.T, repo *Repository, userID uint) *models.Exhibition {
	t.Helper()
	exhibition := &models.Exhibition{
		UserID:   userID,
		Title:    "Spring Salon",
		StartsAt: time.Now(),
		EndsAt:   time.Now().Add(30 * 24 * time.Hour),
		State:    models.ExhibitionStateDraft,
	}
	require.NoError(t, repo.Create(context.Background(), exhibition))
	return exhibition
}

func seedApprovedArtwork(t *testing.T, db *gorm.DB, userID uint, identifier string) *models.Artwork {
	t.Helper()
	artwork := &models.Artwork{
		Identifier:   identifier,
		Title:        "Untitled " + identifier,
		OriginalName: identifier + ".png",
		FileSize:     1024,
		MimeType:     "image/png",
		FileHash:     "hash-" + identifier,
		StorageName:  "local",
		Status:       models.ArtworkStatusApproved,
		UserID:       userID,
	}
	require.NoError(t, db.Create(artwork).Error)
	return artwork
}

func TestGetByIDWithWalls(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "North Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	artwork := seedApprovedArtwork(t, db, curator.ID, "piece-1")
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotCenter,
		ArtworkID:    artwork.ID,
	}))

	got, err := repo.GetByIDWithWalls(context.Background(), exhibition.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Walls, 1)
	require.Len(t, got.Walls[0].Placements, 1)
	assert.Equal(t, models.SlotCenter, got.Walls[0].Placements[0].Slot)
	assert.Equal(t, artwork.ID, got.Walls[0].Placements[0].Artwork.ID)
}

func TestList_FilterByStateAndOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)

	draft := seedExhibition(t, repo, curator.ID)
	_ = draft

	published := seedExhibition(t, repo, curator.ID)
	published.State = models.ExhibitionStatePublished
	require.NoError(t, repo.Update(context.Background(), published))

	list, total, err := repo.List(context.Background(), ListFilter{
		State: models.ExhibitionStatePublished,
		Page:  1,
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, published.ID, list[0].ID)
}

func TestList_RunningOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)

	current := seedExhibition(t, repo, curator.ID)

	past := &models.Exhibition{
		UserID:   curator.ID,
		Title:    "Closed Show",
		StartsAt: time.Now().Add(-60 * 24 * time.Hour),
		EndsAt:   time.Now().Add(-30 * 24 * time.Hour),
		State:    models.ExhibitionStateDraft,
	}
	require.NoError(t, repo.Create(context.Background(), past))

	now := time.Now()
	list, total, err := repo.List(context.Background(), ListFilter{
		RunsAt: &now,
		Page:   1,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, current.ID, list[0].ID)
}

func TestGetWall_WrongExhibition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition1 := seedExhibition(t, repo, curator.ID)
	exhibition2 := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition1.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	got, err := repo.GetWall(context.Background(), exhibition2.ID, wall.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlacements_SlotLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	artwork := seedApprovedArtwork(t, db, curator.ID, "piece-1")
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    artwork.ID,
	}))

	occupied, err := repo.GetPlacementBySlot(context.Background(), wall.ID, models.SlotLeft)
	require.NoError(t, err)
	assert.NotNil(t, occupied)

	empty, err := repo.GetPlacementBySlot(context.Background(), wall.ID, models.SlotRight)
	require.NoError(t, err)
	assert.Nil(t, empty)

	placed, err := repo.GetPlacementByArtwork(context.Background(), exhibition.ID, artwork.ID)
	require.NoError(t, err)
	assert.NotNil(t, placed)
}

func TestDeletePlacement_EmptySlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	err := repo.DeletePlacement(context.Background(), wall.ID, models.SlotCenter)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetStockpile_ExcludesPlacedAndUnapproved(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	placed := seedApprovedArtwork(t, db, curator.ID, "placed")
	free := seedApprovedArtwork(t, db, curator.ID, "free")

	pending := seedApprovedArtwork(t, db, curator.ID, "pending")
	require.NoError(t, db.Model(pending).Update("status", models.ArtworkStatusPending).Error)

	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    placed.ID,
	}))

	stockpile, total, err := repo.GetStockpile(context.Background(), exhibition.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, stockpile, 1)
	assert.Equal(t, free.ID, stockpile[0].ID)
}

func TestGetStockpile_PlacementScopedToExhibition(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition1 := seedExhibition(t, repo, curator.ID)
	exhibition2 := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition1.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	artwork := seedApprovedArtwork(t, db, curator.ID, "piece-1")
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition1.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    artwork.ID,
	}))

	// Placed in exhibition 1, still available for exhibition 2.
	stockpile, total, err := repo.GetStockpile(context.Background(), exhibition2.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, stockpile, 1)
	assert.Equal(t, artwork.ID, stockpile[0].ID)
}

func TestDeleteWall_RemovesPlacements(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	artwork := seedApprovedArtwork(t, db, curator.ID, "piece-1")
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    artwork.ID,
	}))

	require.NoError(t, repo.DeleteWall(context.Background(), wall.ID))

	var placements int64
	require.NoError(t, db.Model(&models.ArtworkPlacement{}).Where("wall_id = ?", wall.ID).Count(&placements).Error)
	assert.Zero(t, placements)

	got, err := repo.GetWall(context.Background(), exhibition.ID, wall.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteExhibition_RemovesWallsAndPlacements(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	artwork := seedApprovedArtwork(t, db, curator.ID, "piece-1")
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    artwork.ID,
	}))

	require.NoError(t, repo.Delete(context.Background(), exhibition.ID))

	got, err := repo.GetByID(context.Background(), exhibition.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	walls, err := repo.GetWalls(context.Background(), exhibition.ID)
	require.NoError(t, err)
	assert.Empty(t, walls)
}

func TestCreatePlacement_SlotAndArtworkReusableAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))

	artwork := seedApprovedArtwork(t, db, curator.ID, "piece-1")
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    artwork.ID,
	}))

	require.NoError(t, repo.DeletePlacement(context.Background(), wall.ID, models.SlotLeft))

	// The cleared slot accepts the same artwork again.
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotLeft,
		ArtworkID:    artwork.ID,
	}))

	// And the artwork can move to another slot once taken down.
	require.NoError(t, repo.DeletePlacement(context.Background(), wall.ID, models.SlotLeft))
	require.NoError(t, repo.CreatePlacement(context.Background(), &models.ArtworkPlacement{
		ExhibitionID: exhibition.ID,
		WallID:       wall.ID,
		Slot:         models.SlotRight,
		ArtworkID:    artwork.ID,
	}))
}

func TestCreateWall_PositionReusableAfterDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	curator := seedCurator(t, db)
	exhibition := seedExhibition(t, repo, curator.ID)

	wall := &models.Wall{ExhibitionID: exhibition.ID, Name: "Wall", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), wall))
	require.NoError(t, repo.DeleteWall(context.Background(), wall.ID))

	rebuilt := &models.Wall{ExhibitionID: exhibition.ID, Name: "Rebuilt", Position: 1}
	require.NoError(t, repo.CreateWall(context.Background(), rebuilt))
}
