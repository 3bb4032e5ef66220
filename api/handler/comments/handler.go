package comments

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/internal/artworks"
	"github.com/calyxa/galerie/internal/comments"
	"github.com/gin-gonic/gin"
)

// Handler serves artwork comment endpoints.
type Handler struct {
	service *comments.Service
}

// NewHandler creates the comments handler.
func NewHandler(service *comments.Service) *Handler {
	return &Handler{service: service}
}

// CommentDTO is the JSON view of a comment.
type CommentDTO struct {
	ID         uint   `json:"id"`
	Body       string `json:"body"`
	AuthorID   uint   `json:"author_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  int64  `json:"created_at"`
}

func toCommentDTO(comment *models.Comment) *CommentDTO {
	return &CommentDTO{
		ID:         comment.ID,
		Body:       comment.Body,
		AuthorID:   comment.UserID,
		AuthorName: comment.User.Username,
		CreatedAt:  comment.CreatedAt.Unix(),
	}
}

type createCommentRequest struct {
	Body string `json:"body" binding:"required,max=1000"`
}

// Create posts a comment on an approved artwork.
func (h *Handler) Create(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.service.Create(c.Request.Context(), identifier, actor, req.Body)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Comment posted", toCommentDTO(comment))
}

// List returns a page of comments on an approved artwork.
func (h *Handler) List(c *gin.Context) {
	identifier := c.Param("identifier")
	if identifier == "" {
		common.RespondError(c, http.StatusBadRequest, "Artwork identifier is required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	commentList, total, err := h.service.ListByArtwork(c.Request.Context(), identifier, page, limit)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	dtos := make([]*CommentDTO, 0, len(commentList))
	for _, comment := range commentList {
		dtos = append(dtos, toCommentDTO(comment))
	}

	common.RespondSuccess(c, gin.H{
		"comments":    dtos,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": int(math.Ceil(float64(total) / float64(limit))),
	})
}

// Delete removes a comment.
func (h *Handler) Delete(c *gin.Context) {
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid comment ID")
		return
	}

	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.service.Delete(c.Request.Context(), uint(commentID), actor); err != nil {
		h.respondServiceError(c, err)
		return
	}

	common.RespondSuccessMessage(c, "Comment deleted", nil)
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, artworks.ErrArtworkNotFound):
		common.RespondError(c, http.StatusNotFound, "Artwork not found")
	case errors.Is(err, comments.ErrCommentNotFound):
		common.RespondError(c, http.StatusNotFound, "Comment not found")
	case errors.Is(err, comments.ErrNotCommentable):
		common.RespondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, comments.ErrEmptyBody):
		common.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, comments.ErrPermissionDenied):
		common.RespondError(c, http.StatusForbidden, "Permission denied")
	default:
		common.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
