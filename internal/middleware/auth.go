package middleware

import (
	"context"
	"net/http"

	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/config"
	"github.com/GNARC0TICS/Degentalk-Preview-sub018/internal/model"
	"github.com/gin-gonic/gin"
)

const ContextUserKey = "user"

// UserLookup resolves a session token to a user. Session management itself
// lives in the forum service; this is only the lookup edge.
type UserLookup interface {
	GetBySessionToken(ctx context.Context, token string) (*model.User, error)
}

func AuthMiddleware(cfg *config.Config, users UserLookup) gin.HandlerFunc {
	header := cfg.Auth.SessionHeader
	return func(c *gin.Context) {
		token := c.GetHeader(header)
		if token == "" {
			c.JSON(http.StatusUnauthorized, failureBody("missing session token", "AUTH_FAILED"))
			c.Abort()
			return
		}

		user, err := users.GetBySessionToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, failureBody("invalid session token", "AUTH_FAILED"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// AdminMiddleware requires an authenticated admin. Must run after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := UserFromContext(c)
		if user == nil || !user.IsAdmin() {
			c.JSON(http.StatusForbidden, failureBody("admin access required", "FORBIDDEN"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserFromContext returns the authenticated user, or nil outside the auth
// chain.
func UserFromContext(c *gin.Context) *model.User {
	val, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := val.(*model.User)
	return user
}

func failureBody(message, errType string) gin.H {
	return gin.H{
		"success": false,
		"message": message,
		"error":   gin.H{"type": errType},
	}
}
