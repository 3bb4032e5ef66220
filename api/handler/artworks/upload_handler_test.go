package artworks

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	"github.com/calyxa/galerie/database/repo/notifications"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/calyxa/galerie/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newUploadRouter mounts the upload routes behind a stub auth middleware
// that injects the given role.
func newUploadRouter(t *testing.T, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Artwork{}, &models.Notification{}))

	cfg := &config.Config{
		StorageType:           "local",
		StorageLocalPath:      t.TempDir(),
		UploadMaxSizeMB:       10,
		UploadMaxBatchTotalMB: 50,
		ThumbnailMaxEdge:      64,
	}
	storageFactory, err := storage.NewFactory(cfg)
	require.NoError(t, err)

	notifier := notify.NewService(notifications.NewRepository(db), nil)
	service := artworks.NewService(artworkrepo.NewRepository(db), storageFactory, nil, notifier, cfg)
	handler := NewHandler(service, cfg)

	stubAuth := func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uint(1))
		c.Set(middleware.ContextUsernameKey, "someone")
		c.Set(middleware.ContextRoleKey, role)
		c.Set(middleware.AuthTypeKey, middleware.AuthTypeJWT)
	}

	router := gin.New()
	router.POST("/upload", stubAuth, handler.Upload)
	router.POST("/uploads", stubAuth, handler.Uploads)
	return router
}

func uploadRequest(t *testing.T, path, fileField string) *http.Request {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var content bytes.Buffer
	require.NoError(t, png.Encode(&content, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fileField, "piece.png")
	require.NoError(t, err)
	_, err = part.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUpload_VisitorForbidden(t *testing.T) {
	router := newUploadRouter(t, models.RoleVisitor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "file"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploads_VisitorForbidden(t *testing.T) {
	router := newUploadRouter(t, models.RoleVisitor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/uploads", "files"))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpload_ArtistAllowed(t *testing.T) {
	router := newUploadRouter(t, models.RoleArtist)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "file"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "identifier")
}

func TestUpload_CuratorAllowed(t *testing.T) {
	router := newUploadRouter(t, models.RoleCurator)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "/upload", "file"))

	assert.Equal(t, http.StatusOK, w.Code)
}
