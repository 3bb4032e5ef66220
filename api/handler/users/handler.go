package users

import (
	"net/http"
	"strconv"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/api/middleware"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/database/repo/accounts"
	authsvc "github.com/calyxa/galerie/internal/auth"
	cryptopackage "github.com/calyxa/galerie/utils/crypto"
	"github.com/gin-gonic/gin"
)

// Handler serves account profile and administration endpoints.
type Handler struct {
	accountsRepo *accounts.Repository
	loginService *authsvc.LoginService
}

// NewHandler creates the users handler.
func NewHandler(accountsRepo *accounts.Repository, loginService *authsvc.LoginService) *Handler {
	return &Handler{
		accountsRepo: accountsRepo,
		loginService: loginService,
	}
}

type userView struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Role        string `json:"role"`
	CreatedAt   int64  `json:"created_at"`
}

func toUserView(user *models.User) userView {
	return userView{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Bio:         user.Bio,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt.Unix(),
	}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.accountsRepo.GetUserByID(actor.ID)
	if err != nil || user == nil {
		common.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	common.RespondSuccess(c, toUserView(user))
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
}

// UpdateProfile changes the caller's display name and bio. Absent fields
// are left untouched.
func (h *Handler) UpdateProfile(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accountsRepo.GetUserByID(actor.ID)
	if err != nil || user == nil {
		common.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if err := h.accountsRepo.UpdateUser(user); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	common.RespondSuccess(c, toUserView(user))
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

// ChangePassword updates the caller's password and revokes all sessions.
func (h *Handler) ChangePassword(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accountsRepo.GetUserByID(actor.ID)
	if err != nil || user == nil {
		common.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	match, err := cryptopackage.ComparePasswordAndHash(req.OldPassword, user.Password)
	if err != nil || !match {
		common.RespondError(c, http.StatusUnauthorized, "Old password is incorrect")
		return
	}

	hash, err := cryptopackage.GenerateFromPassword(req.NewPassword)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user.Password = hash
	if err := h.accountsRepo.UpdateUser(user); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}

	// Force re-login everywhere with the new password.
	_ = h.loginService.LogoutAll(user.ID)

	common.RespondSuccessMessage(c, "Password updated", nil)
}

// List returns a page of all accounts. Admin only.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	users, total, err := h.accountsRepo.GetAllUsers(page, limit)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list users")
		return
	}

	views := make([]userView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}

	common.RespondSuccess(c, gin.H{
		"users": views,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole changes an account's role. Admin only.
func (h *Handler) SetRole(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !models.ValidRole(req.Role) {
		common.RespondError(c, http.StatusBadRequest, "Unknown role")
		return
	}

	user, err := h.accountsRepo.GetUserByID(uint(userID))
	if err != nil || user == nil {
		common.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	user.Role = req.Role
	if err := h.accountsRepo.UpdateUser(user); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to update role")
		return
	}

	common.RespondSuccessMessage(c, "Role updated", toUserView(user))
}

// Delete removes an account. Admin only; admins cannot delete themselves.
func (h *Handler) Delete(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		common.RespondError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if uint(userID) == actor.ID {
		common.RespondError(c, http.StatusConflict, "Cannot delete your own account")
		return
	}

	user, err := h.accountsRepo.GetUserByID(uint(userID))
	if err != nil || user == nil {
		common.RespondError(c, http.StatusNotFound, "User not found")
		return
	}

	if err := h.accountsRepo.DeleteUser(user.ID); err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	_ = h.loginService.LogoutAll(user.ID)

	common.RespondSuccessMessage(c, "User deleted", nil)
}
