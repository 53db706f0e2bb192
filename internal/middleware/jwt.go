package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vidforge/gateway/internal/auth"
	"github.com/vidforge/gateway/pkg/response"
)

const (
	// ContextUserID is the key for the authenticated user's id in gin context.
	ContextUserID = "user_id"
	// ContextUsername is the key for the authenticated username in gin context.
	ContextUsername = "username"
)

// JWT returns a middleware that validates the bearer token and sets the
// authenticated user's identity in context. Every route behind it can rely on
// a non-zero user id.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Next()
	}
}
