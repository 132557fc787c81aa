package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/openjob/pkg/jwt"
	"github.com/weiawesome/openjob/pkg/log"
	"github.com/weiawesome/openjob/pkg/response"
)

const (
	SubjectKey    = log.FieldSubject
	RolesKey      = "roles"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
	RoleAdmin     = "admin"
)

// RequireRole returns a Gin middleware that accepts only bearer tokens
// signed by manager and carrying role. A nil manager disables the check.
func RequireRole(manager *jwt.Manager, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Unauthorized(c, "invalid authorization format")
			return
		}

		claims, err := manager.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		if !claims.HasRole(role) {
			response.Forbidden(c, "missing role "+role)
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(RolesKey, claims.Roles)

		c.Next()
	}
}

// GetSubject extracts the token subject from Gin context.
func GetSubject(c *gin.Context) string {
	if s, ok := c.Get(SubjectKey); ok {
		if subject, ok := s.(string); ok {
			return subject
		}
	}
	return ""
}
