package middleware

import "github.com/gin-gonic/gin"

const (
	ClientIDCtx    = "client_id"
	ClientEmailCtx = "client_email"
	RequestIDCtx   = "request_id"
)

// ClientID returns the uid set by AuthMiddleware.
func ClientID(c *gin.Context) (string, bool) {
	id := c.GetString(ClientIDCtx)
	return id, id != ""
}
