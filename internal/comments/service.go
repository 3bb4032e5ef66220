package comments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/calyxa/galerie/database/models"
	commentrepo "github.com/calyxa/galerie/database/repo/comments"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/internal/notify"
)

var (
	// ErrCommentNotFound is returned when no comment matches the lookup.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrEmptyBody is returned when the comment has no content.
	ErrEmptyBody = errors.New("comment body must not be empty")

	// ErrNotCommentable is returned when commenting on an artwork that is
	// not approved.
	ErrNotCommentable = errors.New("comments are only allowed on approved artworks")

	// ErrPermissionDenied is returned when the actor may not delete the
	// comment.
	ErrPermissionDenied = errors.New("permission denied")
)

// maxBodyLength mirrors the column size of Comment.Body.
const maxBodyLength = 1000

// Service implements commenting on approved artworks.
type Service struct {
	repo     *commentrepo.Repository
	artworks *artworks.Service
	notifier *notify.Service
}

// NewService creates a comment service.
func NewService(repo *commentrepo.Repository, artworkService *artworks.Service, notifier *notify.Service) *Service {
	return &Service{
		repo:     repo,
		artworks: artworkService,
		notifier: notifier,
	}
}

// Create posts a comment on an approved artwork and notifies its owner.
func (s *Service) Create(ctx context.Context, artworkIdentifier string, author *models.User, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if len(body) > maxBodyLength {
		return nil, fmt.Errorf("comment body exceeds %d characters", maxBodyLength)
	}

	artwork, err := s.artworks.GetByIdentifier(ctx, artworkIdentifier)
	if err != nil {
		return nil, err
	}
	if artwork.Status != models.ArtworkStatusApproved {
		return nil, ErrNotCommentable
	}

	comment := &models.Comment{
		ArtworkID: artwork.ID,
		UserID:    author.ID,
		Body:      body,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = *author

	if s.notifier != nil && artwork.UserID != author.ID {
		message := fmt.Sprintf("%s commented on your artwork %q", author.Username, artwork.Title)
		if err := s.notifier.Notify(ctx, artwork.UserID, author.ID, models.NotificationCommentCreated, "comment", comment.ID, message); err != nil {
			log.Printf("Failed to notify user %d about comment %d: %v", artwork.UserID, comment.ID, err)
		}
	}

	return comment, nil
}

// ListByArtwork returns a page of comments on an approved artwork.
func (s *Service) ListByArtwork(ctx context.Context, artworkIdentifier string, page, limit int) ([]*models.Comment, int64, error) {
	artwork, err := s.artworks.GetByIdentifier(ctx, artworkIdentifier)
	if err != nil {
		return nil, 0, err
	}
	if artwork.Status != models.ArtworkStatusApproved {
		return nil, 0, ErrNotCommentable
	}
	return s.repo.ListByArtwork(ctx, artwork.ID, page, limit)
}

// Delete removes a comment. The author, the artwork's owner, moderators
// and admins may delete.
func (s *Service) Delete(ctx context.Context, commentID uint, actor *models.User) error {
	comment, err := s.repo.GetWithArtwork(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	allowed := comment.UserID == actor.ID ||
		comment.Artwork.UserID == actor.ID ||
		actor.CanModerate()
	if !allowed {
		return ErrPermissionDenied
	}
	return s.repo.Delete(ctx, commentID)
}
