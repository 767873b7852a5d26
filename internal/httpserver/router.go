package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/food_api/internal/auth"
	"github.com/Skotchmaster/food_api/internal/metrics"
	loggingmw "github.com/Skotchmaster/food_api/internal/middleware/logging"
)

type Deps struct {
	AuthHandler *AuthHTTP
	UserHandler *UserHTTP
	FoodHandler *FoodHTTP
	Gate        *auth.Gate
	// Ready reports whether dependencies are reachable. Nil means always ready.
	Ready func() error
}

func New(d *Deps, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(metrics.Middleware())
	e.Use(loggingmw.RequestLogger(logger))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	e.POST("/login", d.AuthHandler.Login)

	users := e.Group("/user")
	users.GET("", d.UserHandler.List, d.Gate.RequireAdmin)
	users.POST("", d.UserHandler.Create, d.Gate.RequireAdmin)
	users.GET("/:public_id", d.UserHandler.Get, d.Gate.RequireSelfOrAdmin("public_id"))
	users.PUT("/:public_id", d.UserHandler.Promote, d.Gate.RequireAdmin)
	users.DELETE("/:public_id", d.UserHandler.Delete, d.Gate.RequireAdmin)

	food := e.Group("/food", d.Gate.RequireAuth)
	food.GET("", d.FoodHandler.List)
	food.POST("", d.FoodHandler.Create)
	food.GET("/search", d.FoodHandler.Search)
	food.GET("/:zipcode", d.FoodHandler.ByZipcode)
	food.PATCH("/item/:id", d.FoodHandler.Patch, d.Gate.RequireAdmin)
	food.DELETE("/item/:id", d.FoodHandler.Delete, d.Gate.RequireAdmin)
}
