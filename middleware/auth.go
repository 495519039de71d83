package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"stylora/models"
	"stylora/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const actorContextKey = "actor"

// JWTAuthMiddleware validates the bearer token, rejects revoked tokens, and
// places the resolved actor (id + role) on the request context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		if role != models.RoleUser && role != models.RoleStylist {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		// Revocation check; an unreachable cache degrades to signature-only
		// validation rather than locking everyone out.
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		key := utils.AuthCachePrefix + utils.HashToken(tokenString)
		if _, err := utils.GetAuthCacheClient().Get(ctx, key).Result(); err == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token revoked"})
			return
		} else if err != redis.Nil {
			zap.L().Warn("auth cache unavailable, skipping revocation check", zap.Error(err))
		}

		c.Set(actorContextKey, models.Actor{ID: subject, Role: role})
		c.Next()
	}
}

// ActorFrom returns the authenticated actor placed on the context by
// JWTAuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}
