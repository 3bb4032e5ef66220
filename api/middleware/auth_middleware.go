package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/calyxa/galerie/api/common"
	"github.com/calyxa/galerie/database/models"
	"github.com/calyxa/galerie/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
	AuthTypeKey        = "auth_type"

	AuthTypeJWT         = "jwt"
	AuthTypeStaticToken = "static_token"
)

// CombinedAuth authenticates a request by either a Bearer JWT or a static
// ApiKey token and stores the caller's identity in the context.
func CombinedAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondError(c, http.StatusUnauthorized, "No Authorization request header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 {
			common.RespondError(c, http.StatusBadRequest, "Authorization field format error")
			c.Abort()
			return
		}

		scheme := parts[0]
		token := parts[1]
		var err error

		switch scheme {
		case "Bearer":
			err = handleJwtAuth(c, jwtService, token)
		case "ApiKey":
			err = handleStaticTokenAuth(c, jwtService, token)
		default:
			common.RespondError(c, http.StatusUnauthorized, "Unsupported authentication scheme")
			c.Abort()
			return
		}

		if err != nil {
			common.RespondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		c.Next()
	}
}

func handleJwtAuth(c *gin.Context, jwtService *auth.JWTService, token string) error {
	if jwtService == nil {
		return errors.New("JWT service not initialized")
	}
	claims, err := jwtService.ParseToken(token)
	if err != nil {
		return errors.New("invalid or expired token")
	}

	userIDValue, ok := claims["user_id"]
	if !ok {
		return errors.New("user_id not found in token claims")
	}
	userID, ok := userIDValue.(float64)
	if !ok {
		return errors.New("user_id in token is not a valid number")
	}

	usernameValue, ok := claims["username"]
	if !ok {
		return errors.New("username not found in token claims")
	}
	username, ok := usernameValue.(string)
	if !ok {
		return errors.New("username in token is not a valid string")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleVisitor
	}

	c.Set(ContextUserIDKey, uint(userID))
	c.Set(ContextUsernameKey, username)
	c.Set(ContextRoleKey, role)
	c.Set(AuthTypeKey, AuthTypeJWT)

	return nil
}

func handleStaticTokenAuth(c *gin.Context, jwtService *auth.JWTService, token string) error {
	if jwtService == nil {
		return errors.New("JWT service not initialized")
	}
	user, err := jwtService.ValidateStaticToken(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	role := user.Role
	if role == "" {
		role = models.RoleVisitor
	}

	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextUsernameKey, user.Username)
	c.Set(ContextRoleKey, role)
	c.Set(AuthTypeKey, AuthTypeStaticToken)

	return nil
}

// CurrentUser reconstructs the authenticated user from the context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	userIDVal, exists := c.Get(ContextUserIDKey)
	if !exists {
		return nil, false
	}
	userID, ok := userIDVal.(uint)
	if !ok {
		return nil, false
	}

	username, _ := c.Get(ContextUsernameKey)
	role, _ := c.Get(ContextRoleKey)

	user := &models.User{
		Username: fmt.Sprintf("%v", username),
		Role:     fmt.Sprintf("%v", role),
	}
	user.ID = userID
	return user, true
}
