package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/rosterly-api/internal/auth"
	"github.com/gravadigital/rosterly-api/internal/logger"
	"github.com/gravadigital/rosterly-api/internal/response"
)

// actorKey is the gin context key holding the authenticated admin id
const actorKey = "actor_id"

// RequireAdmin verifies the Bearer token and records the acting admin's
// id on the request context. Handlers thread that id explicitly into the
// coordinators; nothing downstream reads ambient auth state.
func RequireAdmin(authService *auth.Service) gin.HandlerFunc {
	log := logger.Handler("auth_middleware")

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.UnauthorizedError(c, "missing authorization header")
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.UnauthorizedError(c, "authorization header must be a bearer token")
			c.Abort()
			return
		}

		claims, err := authService.VerifyToken(tokenString)
		if err != nil {
			log.Warn("token verification failed", "error", err)
			response.UnauthorizedError(c, "invalid or expired token")
			c.Abort()
			return
		}

		actorID, err := uuid.Parse(claims.AdminID)
		if err != nil {
			log.Error("token carries malformed admin id", "admin_id", claims.AdminID, "error", err)
			response.UnauthorizedError(c, "invalid token subject")
			c.Abort()
			return
		}

		c.Set(actorKey, actorID)
		c.Next()
	}
}

// ActorID returns the authenticated admin id set by RequireAdmin
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
