package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/food_api/internal/logging"
	"github.com/Skotchmaster/food_api/internal/models"
	"github.com/Skotchmaster/food_api/internal/service"
	"github.com/Skotchmaster/food_api/internal/transport"
	"github.com/Skotchmaster/food_api/internal/util"
)

type FoodHTTP struct {
	Svc *service.FoodService
}

func (h *FoodHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return serviceError(l, "list_food_failed", err)
	}

	return c.JSON(http.StatusOK, transport.FoodPage{
		Data: res.Items,
		Meta: transport.PageMeta{Total: res.Total, Page: res.Page, Size: res.Size},
	})
}

func (h *FoodHTTP) ByZipcode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.by_zipcode")

	zipcode, err := strconv.ParseInt(c.Param("zipcode"), 10, 64)
	if err != nil {
		l.Warn("food_by_zipcode_failed", "status", 400, "reason", "zipcode is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "zipcode is not integer")
	}

	items, err := h.Svc.ByZipcode(ctx, zipcode)
	if err != nil {
		return serviceError(l, "food_by_zipcode_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *FoodHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return serviceError(l, "search_failed", err)
	}
	if items == nil {
		items = []models.Food{}
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Data: items})
}

func (h *FoodHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.create")

	var req transport.CreateFoodRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_food_failed", "status", 400, "error", err)
		return err
	}

	item := &models.Food{Name: req.Name, Location: req.Location, Zipcode: req.Zipcode}
	if err := h.Svc.Create(ctx, actor(c), item); err != nil {
		return serviceError(l, "create_food_failed", err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *FoodHTTP) Patch(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.patch")

	id, err := parseID(c)
	if err != nil {
		l.Warn("patch_food_failed", "status", 400, "reason", "id is not integer", "error", err)
		return err
	}

	var req transport.PatchFoodRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("patch_food_failed", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.Patch(ctx, actor(c), id, service.FoodPatch{
		Name:     req.Name,
		Location: req.Location,
		Zipcode:  req.Zipcode,
	})
	if err != nil {
		return serviceError(l, "patch_food_failed", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *FoodHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "food.delete")

	id, err := parseID(c)
	if err != nil {
		l.Warn("delete_food_failed", "status", 400, "reason", "id is not integer", "error", err)
		return err
	}

	if err := h.Svc.Delete(ctx, actor(c), id); err != nil {
		return serviceError(l, "delete_food_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}
	return uint(id), nil
}
