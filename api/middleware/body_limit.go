package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBytesReader caps the request body size. Oversized bodies fail the
// first read with a 413 from the http layer.
func MaxBytesReader(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
