package comments

import (
	"context"
	"strings"
	"testing"

	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	commentrepo "github.com/calyxa/galerie/database/repo/comments"
	"github.com/calyxa/galerie/database/repo/notifications"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/calyxa/galerie/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db            *gorm.DB
	svc           *Service
	notifications *notifications.Repository
	artist        *models.User
	visitor       *models.User
	curator       *models.User
	approved      *models.Artwork
	pending       *models.Artwork
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Artwork{},
		&models.Comment{},
		&models.Notification{},
	))

	cfg := &config.Config{
		StorageType:      "local",
		StorageLocalPath: t.TempDir(),
	}
	storageFactory, err := storage.NewFactory(cfg)
	require.NoError(t, err)

	notificationsRepo := notifications.NewRepository(db)
	notifier := notify.NewService(notificationsRepo, nil)
	artworkService := artworks.NewService(artworkrepo.NewRepository(db), storageFactory, nil, notifier, cfg)

	env := &testEnv{
		db:            db,
		svc:           NewService(commentrepo.NewRepository(db), artworkService, notifier),
		notifications: notificationsRepo,
	}

	env.artist = &models.User{Username: "artist", Password: "x", Role: models.RoleArtist}
	env.visitor = &models.User{Username: "visitor", Password: "x", Role: models.RoleVisitor}
	env.curator = &models.User{Username: "curator", Password: "x", Role: models.RoleCurator}
	for _, u := range []*models.User{env.artist, env.visitor, env.curator} {
		require.NoError(t, db.Create(u).Error)
	}

	env.approved = env.seedArtwork(t, "approved-piece", models.ArtworkStatusApproved)
	env.pending = env.seedArtwork(t, "pending-piece", models.ArtworkStatusPending)

	return env
}

func (e *testEnv) seedArtwork(t *testing.T, identifier string, status models.ArtworkStatus) *models.Artwork {
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
		UserID:       e.artist.ID,
	}
	require.NoError(t, e.db.Create(artwork).Error)
	return artwork
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	comment, err := env.svc.Create(context.Background(), env.approved.Identifier, env.visitor, "  lovely palette  ")
	require.NoError(t, err)
	assert.Equal(t, "lovely palette", comment.Body)
	assert.Equal(t, env.visitor.ID, comment.UserID)

	// The artist is told about the new comment.
	list, _, err := env.notifications.ListByRecipient(context.Background(), env.artist.ID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationCommentCreated, list[0].Type)
}

func TestCreate_SelfCommentNoNotification(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.approved.Identifier, env.artist, "my own note")
	require.NoError(t, err)

	count, err := env.notifications.CountUnread(context.Background(), env.artist.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreate_EmptyBody(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.approved.Identifier, env.visitor, "   ")
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestCreate_BodyTooLong(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.approved.Identifier, env.visitor, strings.Repeat("a", 1001))
	assert.Error(t, err)
}

func TestCreate_PendingArtworkNotCommentable(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.pending.Identifier, env.visitor, "sneak preview")
	assert.ErrorIs(t, err, ErrNotCommentable)
}

func TestCreate_UnknownArtwork(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), "no-such-piece", env.visitor, "hello")
	assert.ErrorIs(t, err, artworks.ErrArtworkNotFound)
}

func TestListByArtwork(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.approved.Identifier, env.visitor, "first")
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, env.approved.Identifier, env.curator, "second")
	require.NoError(t, err)

	list, total, err := env.svc.ListByArtwork(ctx, env.approved.Identifier, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

func TestDelete_AuthorOwnerOrModerator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stranger := &models.User{Username: "stranger", Password: "x", Role: models.RoleArtist}
	require.NoError(t, env.db.Create(stranger).Error)

	comment, err := env.svc.Create(ctx, env.approved.Identifier, env.visitor, "delete me")
	require.NoError(t, err)

	// An unrelated artist may not delete.
	err = env.svc.Delete(ctx, comment.ID, stranger)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// The author may delete.
	require.NoError(t, env.svc.Delete(ctx, comment.ID, env.visitor))

	// The artwork's owner may remove comments on their own piece.
	comment, err = env.svc.Create(ctx, env.approved.Identifier, env.visitor, "delete me too")
	require.NoError(t, err)
	require.NoError(t, env.svc.Delete(ctx, comment.ID, env.artist))

	// Moderators may delete someone else's comment.
	comment, err = env.svc.Create(ctx, env.approved.Identifier, env.visitor, "and me as well")
	require.NoError(t, err)
	require.NoError(t, env.svc.Delete(ctx, comment.ID, env.curator))
}
