package key

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	authsvc "github.com/calyxa/galerie/internal/auth"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves static API token management.
type Handler struct {
	svc *authsvc.KeyService
}

// NewHandler creates the token handler.
func NewHandler(svc *authsvc.KeyService) *Handler {
	return &Handler{svc: svc}
}

type createTokenRequest struct {
	Description string `json:"description"`
}

// CreateStaticToken issues a new static token. The plaintext token is only
// returned in this response.
func (h *Handler) CreateStaticToken(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if err != io.EOF {
			common.RespondError(c, http.StatusBadRequest, "Invalid JSON format: "+err.Error())
			return
		}
	}

	userID := c.GetUint(middleware.ContextUserIDKey)

	plaintext, token, err := h.svc.CreateToken(userID, req.Description)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	common.RespondSuccessMessage(c, "success create static token", gin.H{
		"id":    token.ID,
		"token": "ApiKey " + plaintext,
	})
}

// GetTokens lists the caller's static tokens.
func (h *Handler) GetTokens(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	tokens, err := h.svc.GetAllApiTokensByUser(userID)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list tokens")
		return
	}

	common.RespondSuccess(c, gin.H{"tokens": tokens})
}

// tokenAction mutates one token owned by a user.
type tokenAction func(tokenID, userID uint) error

func parseTokenID(c *gin.Context) (uint, bool) {
	tokenID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid token ID format.")
		return 0, false
	}
	return uint(tokenID64), true
}

func (h *Handler) executeTokenAction(c *gin.Context, action tokenAction, actionVerb, actionPast string) {
	userID := c.GetUint(middleware.ContextUserIDKey)
	if userID == 0 {
		common.RespondError(c, http.StatusUnauthorized, "Invalid user session.")
		return
	}

	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	if err := action(tokenID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.RespondError(c, http.StatusNotFound,
				fmt.Sprintf("API token not found or you do not have permission to %s it.", actionVerb))
			return
		}

		log.Printf("Failed to %s API token %d for user %d: %v", actionVerb, tokenID, userID, err)
		common.RespondError(c, http.StatusInternalServerError,
			fmt.Sprintf("Failed to %s the API token due to an internal error.", actionVerb))
		return
	}

	common.RespondSuccessMessage(c,
		fmt.Sprintf("API token has been successfully %s.", actionPast), nil)
}

// DisableToken temporarily disables a token.
func (h *Handler) DisableToken(c *gin.Context) {
	h.executeTokenAction(c, func(tokenID, userID uint) error {
		return h.svc.SetApiTokenActive(tokenID, userID, false)
	}, "disable", "disabled")
}

// EnableToken re-enables a disabled token.
func (h *Handler) EnableToken(c *gin.Context) {
	h.executeTokenAction(c, func(tokenID, userID uint) error {
		return h.svc.SetApiTokenActive(tokenID, userID, true)
	}, "enable", "enabled")
}

// RevokeToken permanently deletes a token.
func (h *Handler) RevokeToken(c *gin.Context) {
	h.executeTokenAction(c, h.svc.DeleteApiToken, "revoke", "revoked")
}
