package middleware

import (
	"cactus_village_backend/internal/config"
	"cactus_village_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware accepts the access token from the Authorization header or
// the access_token cookie set at login. The secret is read per request so a
// config reload takes effect without a restart.
func AuthMiddleware(cfg *config.Hot) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString, _ = c.Cookie("access_token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.Load().JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("member", claims)
		c.Next()
	}
}
