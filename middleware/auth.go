package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servify-server/apperrors"
	"servify-server/models"
	"servify-server/services"
)

const (
	actorKey  = "actor"
	userIDKey = "user_id"
)

// AuthMiddleware validates the bearer token and stores the calling Actor in
// the context.
func AuthMiddleware(jwt *services.JWTService, identity *services.IdentityService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token must be in format: Bearer <token>"})
			return
		}

		claims, err := jwt.ValidateAccessToken(tokenString)
		if err != nil {
			log.Debugw("rejected token", "path", c.FullPath(), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is invalid or expired"})
			return
		}

		actor, err := identity.ResolveActor(c.Request.Context(), claims.UserID)
		if err != nil {
			status := apperrors.KindOf(err).HTTPStatus()
			if status == http.StatusInternalServerError {
				log.Errorw("failed to resolve actor", "user_id", claims.UserID, "error", err)
				c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(actorKey, actor)
		c.Set(userIDKey, actor.UserID)
		c.Next()
	}
}

// RequireRole lets the request through only when the actor has one of roles.
// It must run after AuthMiddleware.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// CurrentActor returns the actor stored by AuthMiddleware.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(actorKey)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}
