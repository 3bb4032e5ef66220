package middleware

import "github.com/gin-gonic/gin"

// WebsocketTokenShim copies an access token passed as a query parameter
// into the Authorization header. Browser websocket clients cannot set
// request headers, so the feed endpoint accepts ?token=<jwt> instead.
func WebsocketTokenShim() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}
