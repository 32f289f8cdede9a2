package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tasknest/internal/app"
	"tasknest/internal/model"
	"tasknest/internal/transport/http/response"
)

const (
	ContextUserKey  = "auth_user"
	ContextTokenKey = "auth_token"
)

// Auth validates the bearer token against persisted session state and loads
// the user into the request context. Revoked tokens fail here even when their
// signature is still valid.
func Auth(authService *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		user, err := authService.Authenticate(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "please authenticate")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// UserFrom returns the authenticated user placed by Auth.
func UserFrom(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// TokenFrom returns the bearer token the current request authenticated with.
func TokenFrom(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextTokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
