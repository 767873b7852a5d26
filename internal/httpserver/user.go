package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_api/internal/auth"
	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/service"
	"github.com/Skotchmaster/food_api/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		return serviceError(l, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserList(users))
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	u, err := h.Svc.Get(ctx, c.Param("public_id"))
	if err != nil {
		return serviceError(l, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create")

	var req transport.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_user_failed", "status", 400, "error", err)
		return err
	}

	u, err := h.Svc.Create(ctx, actor(c), req.Username, req.Password, req.Admin)
	if err != nil {
		return serviceError(l, "create_user_failed", err)
	}

	l.Info("user_created", "public_id", u.PublicID, "admin", u.Admin)
	return c.JSON(http.StatusCreated, transport.NewUserResponse(u))
}

func (h *UserHTTP) Promote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.promote")

	u, err := h.Svc.Promote(ctx, actor(c), c.Param("public_id"))
	if err != nil {
		return serviceError(l, "promote_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	if err := h.Svc.Delete(ctx, actor(c), c.Param("public_id")); err != nil {
		return serviceError(l, "delete_user_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func actor(c echo.Context) string {
	if u := auth.CurrentUser(c); u != nil {
		return u.PublicID
	}
	return ""
}
