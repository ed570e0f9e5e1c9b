package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"attribution-console/pkg/jwtutil"
	"attribution-console/pkg/logger"
)

// JWTAuthMiddleware creates a middleware that validates bearer tokens
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Store the claims in the context for later use
			c.Set("user", claims)
			log.Debug("JWT token validated",
				zap.Uint("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// RequireTenantContext verifies the X-Tenant-ID header and checks it against
// the tenant recorded in the token claims. Every /v1 resource is tenant
// scoped, so requests without a resolvable tenant are rejected outright.
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		header := c.Request().Header.Get("X-Tenant-ID")
		if header == "" {
			log.Warn("Missing X-Tenant-ID header")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing X-Tenant-ID header"})
		}

		tenantID, err := strconv.ParseUint(header, 10, 32)
		if err != nil {
			log.Warn("Invalid X-Tenant-ID header", zap.String("value", header))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
		}

		claims, ok := c.Get("user").(*jwtutil.UserClaims)
		if ok && claims.TenantID != 0 && claims.TenantID != uint(tenantID) {
			log.Warn("Tenant mismatch between header and token",
				zap.Uint64("header_tenant", tenantID),
				zap.Uint("token_tenant", claims.TenantID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to the specified tenant"})
		}

		c.Set("tenant_id", uint(tenantID))
		return next(c)
	}
}

// TenantID returns the tenant resolved by RequireTenantContext
func TenantID(c echo.Context) uint {
	id, _ := c.Get("tenant_id").(uint)
	return id
}
