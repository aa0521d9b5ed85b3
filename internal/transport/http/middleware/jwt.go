package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"accel-catalog/internal/pkg/jwtutil"
	"accel-catalog/internal/transport/http/response"
)

const (
	ContextEmailKey = "email"
	ContextNameKey  = "name"
)

// AuthJWT validates the bearer token the identity provider issued and puts
// the authenticated principal on the request context.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Err(c, 401, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Err(c, 401, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Err(c, 401, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextNameKey, claims.Name)
		c.Next()
	}
}
