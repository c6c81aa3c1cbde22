package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserRole returns the role recorded in the token, or empty string.
// Handlers that gate on role should re-check against the live user record.
func GetUserRole(c *gin.Context) string {
	return c.GetString(ctxUserRole)
}
