package artworks

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"sync"
	"time"

	"github.com/calyxa/galerie/cache"
	"github.com/calyxa/galerie/config"
	"github.com/calyxa/galerie/database/models"
	artworkrepo "github.com/calyxa/galerie/database/repo/artworks"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/calyxa/galerie/storage"
	"github.com/calyxa/galerie/utils"
	"github.com/calyxa/galerie/utils/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrArtworkNotFound is returned when no artwork matches the lookup.
	ErrArtworkNotFound = errors.New("artwork not found")

	// ErrPermissionDenied is returned when the actor does not own the
	// artwork and holds no overriding role.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupportedFileType is returned when the upload is not an
	// accepted image format.
	ErrUnsupportedFileType = errors.New("the uploaded file type is not supported")
)

// UploadMeta carries the curatorial metadata submitted with an upload.
type UploadMeta struct {
	Title       string
	Description string
	Year        int
	Medium      string
}

// UploadResult is the outcome of one file in an upload request.
type UploadResult struct {
	Artwork     *models.Artwork
	IsDuplicate bool
	Identifier  string
	FileName    string
	FileSize    int64
	URL         string
	Error       string
}

// Service implements artwork upload, retrieval, moderation and deletion.
type Service struct {
	repo           *artworkrepo.Repository
	storageFactory *storage.Factory
	cacheProvider  cache.Provider
	notifier       *notify.Service
	config         *config.Config
}

// NewService creates an artwork service.
func NewService(
	repo *artworkrepo.Repository,
	storageFactory *storage.Factory,
	cacheProvider cache.Provider,
	notifier *notify.Service,
	cfg *config.Config,
) *Service {
	return &Service{
		repo:           repo,
		storageFactory: storageFactory,
		cacheProvider:  cacheProvider,
		notifier:       notifier,
		config:         cfg,
	}
}

func (s *Service) cacheTTL() time.Duration {
	ttl := s.config.CacheArtworkTTL
	if ttl <= 0 {
		ttl = 3600
	}
	return time.Duration(ttl) * time.Second
}

// UploadSingle stores one artwork. A re-upload of a file the artist already
// submitted returns the existing row flagged as a duplicate.
func (s *Service) UploadSingle(
	ctx context.Context,
	userID uint,
	fileHeader *multipart.FileHeader,
	meta UploadMeta,
	storageName string,
) (*UploadResult, error) {
	storageProvider, err := s.storageFactory.Get(storageName)
	if err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	artwork, isDup, err := s.processAndSave(ctx, userID, fileHeader, meta, storageProvider)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Artwork:     artwork,
		IsDuplicate: isDup,
		Identifier:  artwork.Identifier,
		FileName:    artwork.OriginalName,
		FileSize:    artwork.FileSize,
		URL:         utils.BuildArtworkURL(s.config.BaseURL(), artwork.Identifier),
	}, nil
}

// UploadBatch stores several artworks concurrently. Per-file failures are
// reported in the matching result slot instead of failing the batch.
func (s *Service) UploadBatch(
	ctx context.Context,
	userID uint,
	files []*multipart.FileHeader,
	meta UploadMeta,
	storageName string,
) ([]*UploadResult, error) {
	storageProvider, err := s.storageFactory.Get(storageName)
	if err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}

	results := make([]*UploadResult, len(files))
	var resultsMutex sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Cpus())

	for i, fileHeader := range files {
		i, fileHeader := i, fileHeader
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			artwork, isDup, err := s.processAndSave(ctx, userID, fileHeader, meta, storageProvider)
			result := &UploadResult{
				FileName: fileHeader.Filename,
			}
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Artwork = artwork
				result.IsDuplicate = isDup
				result.Identifier = artwork.Identifier
				result.FileSize = artwork.FileSize
				result.URL = utils.BuildArtworkURL(s.config.BaseURL(), artwork.Identifier)
			}

			resultsMutex.Lock()
			results[i] = result
			resultsMutex.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch upload failed: %w", err)
	}

	return results, nil
}

func (s *Service) processAndSave(
	ctx context.Context,
	userID uint,
	fileHeader *multipart.FileHeader,
	meta UploadMeta,
	storageProvider storage.Provider,
) (*models.Artwork, bool, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, false, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read file: %w", err)
	}

	sum := sha256.Sum256(data)
	fileHash := hex.EncodeToString(sum[:])

	// Re-uploads by the same artist resolve to the existing row.
	existing, err := s.repo.GetByUserAndHash(ctx, userID, fileHash)
	if err != nil {
		return nil, false, fmt.Errorf("database error during hash check: %w", err)
	}
	if existing != nil {
		return existing, true, nil
	}

	reader := bytes.NewReader(data)
	isImage, err := validator.IsImage(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to sniff file type: %w", err)
	}
	if !isImage {
		return nil, false, ErrUnsupportedFileType
	}

	mimeType, err := validator.DetectMimeType(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to detect mime type: %w", err)
	}

	width, height := DecodeDimensions(bytes.NewReader(data))

	identifier := uuid.New().String()

	if err := storageProvider.SaveWithContext(ctx, identifier, bytes.NewReader(data)); err != nil {
		return nil, false, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = fileHeader.Filename
	}

	artwork := &models.Artwork{
		Identifier:   identifier,
		Title:        title,
		Description:  meta.Description,
		Year:         meta.Year,
		Medium:       meta.Medium,
		OriginalName: fileHeader.Filename,
		FileSize:     int64(len(data)),
		MimeType:     mimeType,
		FileHash:     fileHash,
		Width:        width,
		Height:       height,
		StorageName:  storageProvider.Name(),
		Status:       models.ArtworkStatusPending,
		UserID:       userID,
	}

	if err := s.repo.Create(ctx, artwork); err != nil {
		if delErr := storageProvider.DeleteWithContext(ctx, identifier); delErr != nil {
			log.Printf("Failed to clean up stored file %s: %v", identifier, delErr)
		}
		return nil, false, fmt.Errorf("failed to save artwork metadata: %w", err)
	}

	utils.SafeGo(func() {
		s.generateAndStoreThumbnail(context.Background(), artwork, data)
	})

	return artwork, false, nil
}

func (s *Service) generateAndStoreThumbnail(ctx context.Context, artwork *models.Artwork, data []byte) {
	maxEdge := s.config.ThumbnailMaxEdge
	if maxEdge <= 0 {
		maxEdge = 512
	}

	thumb, err := GenerateThumbnail(bytes.NewReader(data), maxEdge)
	if err != nil {
		log.Printf("Failed to generate thumbnail for %s: %v", artwork.Identifier, err)
		return
	}

	provider, err := s.storageFactory.Get(artwork.StorageName)
	if err != nil {
		log.Printf("Storage %s unavailable for thumbnail of %s: %v", artwork.StorageName, artwork.Identifier, err)
		return
	}

	if err := provider.SaveWithContext(ctx, ThumbnailPrefix+artwork.Identifier, bytes.NewReader(thumb)); err != nil {
		log.Printf("Failed to store thumbnail for %s: %v", artwork.Identifier, err)
	}
}

// GetByIdentifier loads an artwork, serving repeated lookups from cache.
func (s *Service) GetByIdentifier(ctx context.Context, identifier string) (*models.Artwork, error) {
	key := cache.ArtworkMeta.Build(identifier)

	var cached models.Artwork
	if s.cacheProvider != nil {
		if err := s.cacheProvider.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !cache.IsCacheMiss(err) {
			log.Printf("Cache lookup failed for %s: %v", identifier, err)
		}
	}

	artwork, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if artwork == nil {
		return nil, ErrArtworkNotFound
	}

	if s.cacheProvider != nil {
		if err := s.cacheProvider.Set(ctx, key, artwork, s.cacheTTL()); err != nil {
			log.Printf("Cache store failed for %s: %v", identifier, err)
		}
	}
	return artwork, nil
}

// List returns a page of artworks matching the filter.
func (s *Service) List(ctx context.Context, filter artworkrepo.ListFilter) ([]*models.Artwork, int64, error) {
	return s.repo.List(ctx, filter)
}

// GetData returns the binary payload and MIME type of an artwork.
func (s *Service) GetData(ctx context.Context, identifier string) ([]byte, string, error) {
	artwork, err := s.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, "", err
	}

	key := cache.ArtworkData.Build(identifier)
	if s.cacheProvider != nil {
		var cached []byte
		if err := s.cacheProvider.Get(ctx, key, &cached); err == nil {
			return cached, artwork.MimeType, nil
		}
	}

	provider, err := s.storageFactory.Get(artwork.StorageName)
	if err != nil {
		return nil, "", err
	}

	reader, err := provider.GetWithContext(ctx, identifier)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read artwork data: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read artwork data: %w", err)
	}

	if s.cacheProvider != nil && int64(len(data)) <= s.config.CacheMaxSizeMB*1024*1024 {
		if err := s.cacheProvider.Set(ctx, key, data, s.cacheTTL()); err != nil {
			log.Printf("Cache store failed for %s: %v", identifier, err)
		}
	}

	return data, artwork.MimeType, nil
}

// GetThumbnail returns the thumbnail payload for an artwork, generating it
// from the original on first access if the stored one is missing.
func (s *Service) GetThumbnail(ctx context.Context, identifier string) ([]byte, string, error) {
	artwork, err := s.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, "", err
	}

	key := cache.ThumbnailData.Build(identifier)
	if s.cacheProvider != nil {
		var cached []byte
		if err := s.cacheProvider.Get(ctx, key, &cached); err == nil {
			return cached, "image/jpeg", nil
		}
	}

	provider, err := s.storageFactory.Get(artwork.StorageName)
	if err != nil {
		return nil, "", err
	}

	thumbID := ThumbnailPrefix + identifier
	var data []byte
	if reader, err := provider.GetWithContext(ctx, thumbID); err == nil {
		data, err = io.ReadAll(reader)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read thumbnail data: %w", err)
		}
	} else {
		original, err := provider.GetWithContext(ctx, identifier)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read artwork data: %w", err)
		}
		maxEdge := s.config.ThumbnailMaxEdge
		if maxEdge <= 0 {
			maxEdge = 512
		}
		data, err = GenerateThumbnail(original, maxEdge)
		if err != nil {
			return nil, "", err
		}
		if err := provider.SaveWithContext(ctx, thumbID, bytes.NewReader(data)); err != nil {
			log.Printf("Failed to store thumbnail for %s: %v", identifier, err)
		}
	}

	if s.cacheProvider != nil {
		if err := s.cacheProvider.Set(ctx, key, data, s.cacheTTL()); err != nil {
			log.Printf("Cache store failed for thumbnail %s: %v", identifier, err)
		}
	}

	return data, "image/jpeg", nil
}

// UpdateMeta lets the owner revise title, description, year and medium.
func (s *Service) UpdateMeta(ctx context.Context, identifier string, actor *models.User, meta UploadMeta) (*models.Artwork, error) {
	artwork, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if artwork == nil {
		return nil, ErrArtworkNotFound
	}
	if artwork.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, ErrPermissionDenied
	}

	if meta.Title != "" {
		artwork.Title = meta.Title
	}
	artwork.Description = meta.Description
	if meta.Year != 0 {
		artwork.Year = meta.Year
	}
	if meta.Medium != "" {
		artwork.Medium = meta.Medium
	}

	if err := s.repo.Update(ctx, artwork); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, identifier)
	return artwork, nil
}

// Approve marks a pending artwork as approved and notifies the artist.
func (s *Service) Approve(ctx context.Context, identifier string, moderator *models.User) (*models.Artwork, error) {
	return s.moderate(ctx, identifier, moderator, models.ArtworkStatusApproved, "")
}

// Reject marks a pending artwork as rejected with a reason and notifies
// the artist.
func (s *Service) Reject(ctx context.Context, identifier string, moderator *models.User, reason string) (*models.Artwork, error) {
	return s.moderate(ctx, identifier, moderator, models.ArtworkStatusRejected, reason)
}

func (s *Service) moderate(
	ctx context.Context,
	identifier string,
	moderator *models.User,
	status models.ArtworkStatus,
	reason string,
) (*models.Artwork, error) {
	if !moderator.CanModerate() {
		return nil, ErrPermissionDenied
	}

	artwork, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if artwork == nil {
		return nil, ErrArtworkNotFound
	}

	if err := s.repo.SetStatus(ctx, artwork.ID, status, moderator.ID, reason); err != nil {
		return nil, err
	}

	now := time.Now()
	artwork.Status = status
	artwork.ModeratedBy = &moderator.ID
	artwork.ModeratedAt = &now
	artwork.RejectReason = reason
	s.invalidateCache(ctx, identifier)

	if s.notifier != nil && artwork.UserID != moderator.ID {
		notifType := models.NotificationArtworkApproved
		message := fmt.Sprintf("Your artwork %q was approved", artwork.Title)
		if status == models.ArtworkStatusRejected {
			notifType = models.NotificationArtworkRejected
			message = fmt.Sprintf("Your artwork %q was rejected", artwork.Title)
			if reason != "" {
				message = fmt.Sprintf("%s: %s", message, reason)
			}
		}
		if err := s.notifier.Notify(ctx, artwork.UserID, moderator.ID, notifType, "artwork", artwork.ID, message); err != nil {
			log.Printf("Failed to notify user %d about artwork %s: %v", artwork.UserID, identifier, err)
		}
	}

	return artwork, nil
}

// Delete removes an artwork, its stored files, its placements and its
// comments. Owners and admins may delete.
func (s *Service) Delete(ctx context.Context, identifier string, actor *models.User) error {
	artwork, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if artwork == nil {
		return ErrArtworkNotFound
	}
	if artwork.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, artwork.ID); err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}

	if provider, err := s.storageFactory.Get(artwork.StorageName); err == nil {
		if err := provider.DeleteWithContext(ctx, identifier); err != nil {
			log.Printf("Failed to delete stored file %s: %v", identifier, err)
		}
		if err := provider.DeleteWithContext(ctx, ThumbnailPrefix+identifier); err != nil {
			log.Printf("Failed to delete thumbnail %s: %v", identifier, err)
		}
	}

	s.invalidateCache(ctx, identifier)
	return nil
}

// CountByStatus returns the number of artworks in the given status.
func (s *Service) CountByStatus(ctx context.Context, status models.ArtworkStatus) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}

// Count returns the total number of artworks.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) invalidateCache(ctx context.Context, identifier string) {
	if s.cacheProvider == nil {
		return
	}
	for _, key := range []string{
		cache.ArtworkMeta.Build(identifier),
		cache.ArtworkData.Build(identifier),
		cache.ThumbnailData.Build(identifier),
	} {
		if err := s.cacheProvider.Delete(ctx, key); err != nil {
			log.Printf("Cache invalidation failed for %s: %v", key, err)
		}
	}
}
