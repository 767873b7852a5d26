package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/service"
	"github.com/Skotchmaster/food_api/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return serviceError(l, "login_failed", err)
	}

	return c.JSON(http.StatusOK, transport.LoginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}
