package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/config"
	authsvc "github.com/calyxa/galerie/internal/auth"
	"github.com/gin-gonic/gin"
)

// Handler serves registration, login, token refresh and logout.
type Handler struct {
	loginService *authsvc.LoginService
	config       *config.Config
}

// NewHandler creates the auth handler.
func NewHandler(loginService *authsvc.LoginService, cfg *config.Config) *Handler {
	return &Handler{
		loginService: loginService,
		config:       cfg,
	}
}

type userAuthRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequestBody struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
	Role              string `json:"role"`
}

type registerResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Register creates a new visitor or artist account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.loginService.Register(req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, authsvc.ErrUsernameTaken) {
			common.RespondError(c, http.StatusConflict, "Username already taken")
			return
		}
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	common.RespondSuccessMessage(c, "Registration successful", registerResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

// Login authenticates a user and sets the refresh cookies.
func (h *Handler) Login(c *gin.Context) {
	var req userAuthRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	refreshTokenMaxAge := int(time.Until(result.RefreshTokenExpiry).Seconds())
	h.setAuthCookies(c, result.RefreshToken, result.DeviceID, refreshTokenMaxAge)

	common.RespondSuccessMessage(c, "Login successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
		Role:              result.User.Role,
	})
}

// Refresh rotates the refresh token and issues a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	deviceID, err := c.Cookie("device_id")
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Device ID not found")
		return
	}

	result, err := h.loginService.RefreshToken(refreshToken, deviceID)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	newRefreshTokenMaxAge := int(time.Until(result.RefreshTokenExpiry).Seconds())
	h.setAuthCookies(c, result.RefreshToken, deviceID, newRefreshTokenMaxAge)

	common.RespondSuccessMessage(c, "Refresh token successful", loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
	})
}

// Logout discards the session device and clears the cookies.
func (h *Handler) Logout(c *gin.Context) {
	deviceID, err := c.Cookie("device_id")
	if err != nil {
		common.RespondSuccessMessage(c, "Already logged out or session invalid", nil)
		return
	}

	_ = h.loginService.Logout(deviceID)

	h.clearAuthCookies(c)

	common.RespondSuccessMessage(c, "Logout successful", nil)
}

// setAuthCookies stores the refresh token and device id as HttpOnly cookies
// scoped to the auth endpoints.
func (h *Handler) setAuthCookies(c *gin.Context, refreshToken, deviceID string, maxAge int) {
	path := "/api/auth/"
	secure := config.IsProduction()

	refreshTokenCookie := http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	deviceIDCookie := http.Cookie{
		Name:     "device_id",
		Value:    deviceID,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(c.Writer, &refreshTokenCookie)
	http.SetCookie(c.Writer, &deviceIDCookie)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	path := "/api/auth/"

	c.SetCookie("refresh_token", "", -1, path, "", false, true)
	c.SetCookie("device_id", "", -1, path, "", false, true)
}
