package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/metrics"
	"github.com/Skotchmaster/food_api/internal/models"
)

const (
	HeaderAccessToken = "x-access-token"

	userKey = "auth.user"

	msgInvalidToken = "Invalid token"
	msgForbidden    = "Unauthorized operation"
)

// Policy decides whether an authenticated user may continue.
type Policy func(c echo.Context, u *models.User) bool

type Gate struct {
	Validator *Validator
}

func NewGate(v *Validator) *Gate {
	return &Gate{Validator: v}
}

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, nil)
}

func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, func(_ echo.Context, u *models.User) bool {
		return u.Admin
	})
}

// RequireSelfOrAdmin lets admins through, and any user whose public id is
// the value of the named path parameter.
func (g *Gate) RequireSelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return g.require(next, func(c echo.Context, u *models.User) bool {
			return u.Admin || c.Param(param) == u.PublicID
		})
	}
}

func (g *Gate) require(next echo.HandlerFunc, policy Policy) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth")

		u := CurrentUser(c)
		if u == nil {
			raw := c.Request().Header.Get(HeaderAccessToken)
			if raw == "" {
				return reject(c, "missing")
			}

			res, err := g.Validator.Validate(ctx, raw)
			if err != nil {
				l.Error("auth_failed", "status", 500, "reason", "cannot resolve token subject", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}
			if !res.OK() {
				return reject(c, res.Reason.String())
			}
			u = res.Identity
			c.Set(userKey, u)
		}

		if policy != nil && !policy(c, u) {
			metrics.IncAuthRejection("forbidden")
			l.Warn("auth_forbidden", "status", 403, "user", u.PublicID, "path", c.Path())
			return echo.NewHTTPError(http.StatusForbidden, msgForbidden)
		}
		return next(c)
	}
}

func reject(c echo.Context, reason string) error {
	metrics.IncAuthRejection(reason)
	logging.FromContext(c.Request().Context()).Warn("auth_rejected", "status", 401, "reason", reason)
	return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
}

// CurrentUser returns the user bound by the gate, or nil on public routes.
func CurrentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}
