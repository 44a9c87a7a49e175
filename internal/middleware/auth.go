package middleware // reusable HTTP middleware for the request guard pipeline

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/marwand/hr-auth/internal/model"
	"github.com/marwand/hr-auth/internal/repository"
	"github.com/marwand/hr-auth/internal/utils"
)

// Context keys set by Authenticate.  Handlers read the attached
// identity with Identity(c); the raw keys stay exported-by-name for the
// role middleware and logging.
const (
	ctxIdentity = "identity"
	ctxUserID   = "user_id"
	ctxRole     = "role"
)

// Identity returns the authenticated user attached to the request
// context, or false when the route was reached without Authenticate.
func Identity(c echo.Context) (model.User, bool) {
	u, ok := c.Get(ctxIdentity).(model.User)
	return u, ok
}

// Authenticate returns an Echo middleware that validates a Bearer
// access token and attaches the live user record to the request
// context.  Verification is two-step: the token's signature and expiry
// are checked against the access secret, then the account is re-loaded
// so that a deactivated user is rejected on their very next request
// even while their access token is still formally valid.
func Authenticate(secret string, users repository.UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid or expired token"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, claims.UserID)
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "unknown account"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal", "message": "load user failed"})
			}
			if u.Status != model.StatusActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "account is not active"})
			}

			c.Set(ctxIdentity, u)
			c.Set(ctxUserID, u.ID)
			c.Set(ctxRole, u.Role)
			return next(c)
		}
	}
}
