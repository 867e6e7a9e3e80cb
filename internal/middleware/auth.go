package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/logger"
	"shipment-tracker/pkg/utils"
)

const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
	ContextUnitIDKey = "unitID"
)

// UserResolver turns a user bearer token into the live user it names.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (*domainUser.User, error)
}

// ControlUnitResolver verifies a control-unit bearer token and returns its unit id.
type ControlUnitResolver interface {
	ResolveControlUnit(token string) (string, error)
}

// AuthMiddleware requires a valid user token.
func AuthMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			logger.WithRequestID(GetRequestID(c)).Debug("User token rejected", zap.Error(err))
			unauthorized(c, "Could not validate credentials")
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves a user token when one is sent and lets
// anonymous requests through. A token that does not verify is still rejected.
func OptionalAuthMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			unauthorized(c, "Could not validate credentials")
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// ControlUnitAuthMiddleware requires a valid control-unit token and stores
// the unit id it carries, unparsed.
func ControlUnitAuthMiddleware(resolver ControlUnitResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		unitID, err := resolver.ResolveControlUnit(token)
		if err != nil {
			logger.WithRequestID(GetRequestID(c)).Warn("Control unit token rejected",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			unauthorized(c, "Invalid control unit token")
			return
		}

		c.Set(ContextUnitIDKey, unitID)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware or OptionalAuthMiddleware.
func CurrentUser(c *gin.Context) (*domainUser.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domainUser.User)
	return user, ok
}

// ControlUnitID returns the unit id set by ControlUnitAuthMiddleware.
func ControlUnitID(c *gin.Context) string {
	return c.GetString(ContextUnitIDKey)
}

func setUser(c *gin.Context, user *domainUser.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
	c.Set(ContextRoleKey, user.Role)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	utils.ErrorResponse(c, http.StatusUnauthorized, message)
	c.Abort()
}
