package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performRequest(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/jwt-only", func(c *gin.Context) {
		c.Set(AuthTypeKey, AuthTypeJWT)
	}, Authorize("jwt"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/static", func(c *gin.Context) {
		c.Set(AuthTypeKey, AuthTypeStaticToken)
	}, Authorize("jwt"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/anonymous", Authorize("jwt"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, performRequest(router, "/jwt-only").Code)
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/static").Code)
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/anonymous").Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(ContextRoleKey, role)
		}
	}

	router := gin.New()
	router.GET("/curator", withRole("curator"), RequireRole("curator", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/admin", withRole("admin"), RequireRole("curator", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/visitor", withRole("visitor"), RequireRole("curator", "admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/no-role", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, performRequest(router, "/curator").Code)
	assert.Equal(t, http.StatusOK, performRequest(router, "/admin").Code)
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/visitor").Code)
	assert.Equal(t, http.StatusForbidden, performRequest(router, "/no-role").Code)
}
