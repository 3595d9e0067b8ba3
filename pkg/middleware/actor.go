package middleware

import (
	"strings"

	"inventory-ledger-service/internal/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActorContextKey is the gin context key holding the caller's actor id.
const ActorContextKey = "actor_id"

// ActorMiddleware extracts the actor identity from a bearer token, when one
// is present, and stores it in the request context. Requests without a token
// proceed with an empty actor; authorization is the upstream gateway's job.
func ActorMiddleware(jwtManager *auth.JWTManager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			logger.Debug("Ignoring invalid bearer token", zap.Error(err))
			c.Next()
			return
		}

		c.Set(ActorContextKey, claims.Subject)
		c.Next()
	}
}

// Actor returns the actor id stored by ActorMiddleware, or "".
func Actor(c *gin.Context) string {
	return c.GetString(ActorContextKey)
}
