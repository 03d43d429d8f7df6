package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/crockshine/backend-erp/pkg/jwtutil"
	"github.com/crockshine/backend-erp/pkg/logger"
	"github.com/crockshine/backend-erp/prometheus"
)

const (
	employeeIDKey = "employee_id"
	roleKey       = "role"
	claimsKey     = "claims"
)

// TokenValidator checks a bearer token
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwtutil.EmployeeClaims, error)
}

// JWTAuthMiddleware validates the bearer token and stores the employee in
// the echo context
func JWTAuthMiddleware(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("bad_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			c.Set(employeeIDKey, claims.EmployeeID)
			c.Set(roleKey, claims.Role)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireRole rejects authenticated employees whose role is not listed.
// It must run after JWTAuthMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(roleKey).(string)
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			logger.FromEcho(c).Warn("Role not permitted",
				zap.String("role", role),
				zap.Strings("required", roles))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
		}
	}
}

// EmployeeID returns the authenticated employee's id
func EmployeeID(c echo.Context) (string, bool) {
	id, ok := c.Get(employeeIDKey).(string)
	return id, ok && id != ""
}

// Claims returns the validated token claims
func Claims(c echo.Context) (*jwtutil.EmployeeClaims, bool) {
	claims, ok := c.Get(claimsKey).(*jwtutil.EmployeeClaims)
	return claims, ok
}
