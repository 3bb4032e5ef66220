package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/notifications"
)

// Event is the payload pushed over websocket connections. It mirrors the
// stored notification row so offline users see the same data when they
// fetch their list later.
type Event struct {
	ID          uint   `json:"id"`
	RecipientID uint   `json:"recipient_id"`
	ActorID     uint   `json:"actor_id"`
	Type        string `json:"type"`
	TargetType  string `json:"target_type"`
	TargetID    uint   `json:"target_id"`
	Message     string `json:"message"`
	CreatedAt   int64  `json:"created_at"`
}

// Service persists notifications and pushes them to connected recipients.
// Persistence is the source of truth; the websocket push is best-effort.
type Service struct {
	repo *notifications.Repository
	hub  *Hub
}

// NewService creates a notification service.
func NewService(repo *notifications.Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

// Hub returns the websocket hub.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Notify stores a notification row and pushes it to the recipient's open
// connections. The row is written even when the recipient is offline.
func (s *Service) Notify(ctx context.Context, recipientID, actorID uint, notifType, targetType string, targetID uint, message string) error {
	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        notifType,
		TargetType:  targetType,
		TargetID:    targetID,
		Message:     message,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if s.hub != nil {
		payload, err := json.Marshal(Event{
			ID:          notification.ID,
			RecipientID: notification.RecipientID,
			ActorID:     notification.ActorID,
			Type:        notification.Type,
			TargetType:  notification.TargetType,
			TargetID:    notification.TargetID,
			Message:     notification.Message,
			CreatedAt:   notification.CreatedAt.Unix(),
		})
		if err != nil {
			log.Printf("Failed to marshal notification %d: %v", notification.ID, err)
			return nil
		}
		s.hub.Push(recipientID, payload)
	}

	return nil
}

// List returns a page of the recipient's notifications.
func (s *Service) List(ctx context.Context, recipientID uint, unreadOnly bool, page, limit int) ([]*models.Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly, page, limit)
}

// CountUnread returns the recipient's unread notification count.
func (s *Service) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

// MarkRead marks one notification as read. Ownership is enforced by the
// repository.
func (s *Service) MarkRead(ctx context.Context, notificationID, recipientID uint) error {
	return s.repo.MarkRead(ctx, notificationID, recipientID)
}

// MarkAllRead marks every unread notification of the recipient as read and
// returns the number affected.
func (s *Service) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipientID)
}
