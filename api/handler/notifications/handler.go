package notifications

import (
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler serves notification listing, read state and the websocket feed.
type Handler struct {
	service  *notify.Service
	upgrader websocket.Upgrader
}

// NewHandler creates the notifications handler.
func NewHandler(service *notify.Service) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers cannot set Authorization on websocket requests;
			// auth happens via the token query parameter before upgrade.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// NotificationDTO is the JSON view of a stored notification.
type NotificationDTO struct {
	ID         uint   `json:"id"`
	Type       string `json:"type"`
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id"`
	Message    string `json:"message"`
	ActorID    uint   `json:"actor_id"`
	IsRead     bool   `json:"is_read"`
	CreatedAt  int64  `json:"created_at"`
}

func toNotificationDTO(notification *models.Notification) *NotificationDTO {
	return &NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		TargetType: notification.TargetType,
		TargetID:   notification.TargetID,
		Message:    notification.Message,
		ActorID:    notification.ActorID,
		IsRead:     notification.IsRead,
		CreatedAt:  notification.CreatedAt.Unix(),
	}
}

// List returns a page of the caller's notifications.
func (h *Handler) List(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	unreadOnly := c.Query("unread") == "true"

	notificationList, total, err := h.service.List(c.Request.Context(), userID, unreadOnly, page, limit)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	dtos := make([]*NotificationDTO, 0, len(notificationList))
	for _, notification := range notificationList {
		dtos = append(dtos, toNotificationDTO(notification))
	}

	common.RespondSuccess(c, gin.H{
		"notifications": dtos,
		"total":         total,
		"page":          page,
		"limit":         limit,
		"total_pages":   int(math.Ceil(float64(total) / float64(limit))),
	})
}

// UnreadCount returns the caller's unread notification count.
func (h *Handler) UnreadCount(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	count, err := h.service.CountUnread(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to count notifications")
		return
	}

	common.RespondSuccess(c, gin.H{"unread": count})
}

// MarkRead marks one of the caller's notifications as read.
func (h *Handler) MarkRead(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), uint(notificationID), userID); err != nil {
		common.RespondError(c, http.StatusNotFound, "Notification not found")
		return
	}

	common.RespondSuccessMessage(c, "Notification marked as read", nil)
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	affected, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	common.RespondSuccessMessage(c, "Notifications marked as read", gin.H{"marked": affected})
}

// Stream upgrades the connection to a websocket feed of the caller's
// notifications. Past notifications are not replayed; they stay available
// through List.
func (h *Handler) Stream(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	if userID == 0 {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for user %d: %v", userID, err)
		return
	}

	client := h.service.Hub().NewClient(userID, conn)
	client.Run()
}
