package artworks

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"testing"

	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	"github.com/calyxa/galerie/database/repo/notifications"
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
	curator       *models.User
	visitor       *models.User
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
		&models.ArtworkPlacement{},
		&models.Comment{},
		&models.Notification{},
	))

	cfg := &config.Config{
		StorageType:      "local",
		StorageLocalPath: t.TempDir(),
		CacheArtworkTTL:  60,
		CacheMaxSizeMB:   16,
		ThumbnailMaxEdge: 64,
	}

	storageFactory, err := storage.NewFactory(cfg)
	require.NoError(t, err)

	notificationsRepo := notifications.NewRepository(db)
	notifier := notify.NewService(notificationsRepo, nil)

	env := &testEnv{
		db:            db,
		svc:           NewService(artworkrepo.NewRepository(db), storageFactory, nil, notifier, cfg),
		notifications: notificationsRepo,
	}

	env.artist = &models.User{Username: "artist", Password: "x", Role: models.RoleArtist}
	env.curator = &models.User{Username: "curator", Password: "x", Role: models.RoleCurator}
	env.visitor = &models.User{Username: "visitor", Password: "x", Role: models.RoleVisitor}
	for _, u := range []*models.User{env.artist, env.curator, env.visitor} {
		require.NoError(t, db.Create(u).Error)
	}

	return env
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func makeFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

func TestUploadSingle(t *testing.T) {
	env := newTestEnv(t)

	header := makeFileHeader(t, "sunset.png", testPNG(t, 20, 10))
	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, header, UploadMeta{
		Title:  "Sunset",
		Year:   2024,
		Medium: "oil on canvas",
	}, "")
	require.NoError(t, err)

	assert.False(t, result.IsDuplicate)
	assert.NotEmpty(t, result.Identifier)
	assert.Equal(t, "Sunset", result.Artwork.Title)
	assert.Equal(t, 2024, result.Artwork.Year)
	assert.Equal(t, "image/png", result.Artwork.MimeType)
	assert.Equal(t, 20, result.Artwork.Width)
	assert.Equal(t, 10, result.Artwork.Height)
	assert.Equal(t, models.ArtworkStatusPending, result.Artwork.Status)
}

func TestUploadSingle_TitleDefaultsToFilename(t *testing.T) {
	env := newTestEnv(t)

	header := makeFileHeader(t, "untitled-42.png", testPNG(t, 4, 4))
	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, header, UploadMeta{}, "")
	require.NoError(t, err)
	assert.Equal(t, "untitled-42.png", result.Artwork.Title)
}

func TestUploadSingle_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	content := testPNG(t, 8, 8)

	first, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", content), UploadMeta{}, "")
	require.NoError(t, err)

	second, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "b.png", content), UploadMeta{}, "")
	require.NoError(t, err)
	assert.True(t, second.IsDuplicate)
	assert.Equal(t, first.Identifier, second.Identifier)

	// The same bytes from another artist are a fresh artwork.
	third, err := env.svc.UploadSingle(context.Background(), env.curator.ID, makeFileHeader(t, "c.png", content), UploadMeta{}, "")
	require.NoError(t, err)
	assert.False(t, third.IsDuplicate)
	assert.NotEqual(t, first.Identifier, third.Identifier)
}

func TestUploadSingle_UnsupportedFileType(t *testing.T) {
	env := newTestEnv(t)

	header := makeFileHeader(t, "notes.txt", []byte("just some text, not an image"))
	_, err := env.svc.UploadSingle(context.Background(), env.artist.ID, header, UploadMeta{}, "")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestUploadBatch_PartialFailure(t *testing.T) {
	env := newTestEnv(t)

	files := []*multipart.FileHeader{
		makeFileHeader(t, "good.png", testPNG(t, 4, 4)),
		makeFileHeader(t, "bad.txt", []byte("not an image at all")),
	}

	results, err := env.svc.UploadBatch(context.Background(), env.artist.ID, files, UploadMeta{}, "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[0].Identifier)
	assert.NotEmpty(t, results[1].Error)
}

func TestGetByIdentifier_Missing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GetByIdentifier(context.Background(), "no-such-piece")
	assert.ErrorIs(t, err, ErrArtworkNotFound)
}

func TestGetData(t *testing.T) {
	env := newTestEnv(t)
	content := testPNG(t, 8, 8)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", content), UploadMeta{}, "")
	require.NoError(t, err)

	data, mimeType, err := env.svc.GetData(context.Background(), result.Identifier)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "image/png", mimeType)
}

func TestApprove_NotifiesArtist(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", testPNG(t, 4, 4)), UploadMeta{}, "")
	require.NoError(t, err)

	approved, err := env.svc.Approve(context.Background(), result.Identifier, env.curator)
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusApproved, approved.Status)
	require.NotNil(t, approved.ModeratedBy)
	assert.Equal(t, env.curator.ID, *approved.ModeratedBy)

	list, _, err := env.notifications.ListByRecipient(context.Background(), env.artist.ID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationArtworkApproved, list[0].Type)
}

func TestReject_ReasonInNotification(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", testPNG(t, 4, 4)), UploadMeta{}, "")
	require.NoError(t, err)

	rejected, err := env.svc.Reject(context.Background(), result.Identifier, env.curator, "blurry scan")
	require.NoError(t, err)
	assert.Equal(t, models.ArtworkStatusRejected, rejected.Status)
	assert.Equal(t, "blurry scan", rejected.RejectReason)

	list, _, err := env.notifications.ListByRecipient(context.Background(), env.artist.ID, true, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationArtworkRejected, list[0].Type)
	assert.Contains(t, list[0].Message, "blurry scan")
}

func TestModerate_SecondVerdictConflicts(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", testPNG(t, 4, 4)), UploadMeta{}, "")
	require.NoError(t, err)

	_, err = env.svc.Approve(context.Background(), result.Identifier, env.curator)
	require.NoError(t, err)

	_, err = env.svc.Reject(context.Background(), result.Identifier, env.curator, "changed my mind")
	assert.ErrorIs(t, err, artworkrepo.ErrAlreadyModerated)
}

func TestModerate_VisitorDenied(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", testPNG(t, 4, 4)), UploadMeta{}, "")
	require.NoError(t, err)

	_, err = env.svc.Approve(context.Background(), result.Identifier, env.visitor)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateMeta_OwnerOnly(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", testPNG(t, 4, 4)), UploadMeta{Title: "Old"}, "")
	require.NoError(t, err)

	_, err = env.svc.UpdateMeta(context.Background(), result.Identifier, env.visitor, UploadMeta{Title: "Hijacked"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := env.svc.UpdateMeta(context.Background(), result.Identifier, env.artist, UploadMeta{Title: "New", Medium: "ink"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "ink", updated.Medium)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.UploadSingle(context.Background(), env.artist.ID, makeFileHeader(t, "a.png", testPNG(t, 4, 4)), UploadMeta{}, "")
	require.NoError(t, err)

	err = env.svc.Delete(context.Background(), result.Identifier, env.visitor)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, env.svc.Delete(context.Background(), result.Identifier, env.artist))

	_, err = env.svc.GetByIdentifier(context.Background(), result.Identifier)
	assert.ErrorIs(t, err, ErrArtworkNotFound)
}
