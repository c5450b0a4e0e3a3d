package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/cart"
)

type cartApi struct {
	svc      *cart.Service
	validate *validator.Validate
}

func registerCartAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *cart.Service, validate *validator.Validate) {
	api := cartApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/cart", jwt)
	cg.GET("", api.retrieve)
	cg.DELETE("", api.clear)
	cg.POST("/items", api.addItem)
	cg.DELETE("/items/:id", api.removeItem)
}

type CartResponse struct {
	Items []cart.Item `json:"items"`
	Total float64     `json:"total"`
}

func newCartResponse(items []cart.Item) CartResponse {
	if items == nil {
		items = []cart.Item{}
	}
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return CartResponse{Items: items, Total: total}
}

// Handlers

func (api *cartApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	items, err := api.svc.Items(ctx.Request().Context(), sess.UserID)
	if err != nil {
		return errors.Wrap(err, "getting cart items")
	}
	return ctx.JSON(http.StatusOK, newCartResponse(items))
}

func (api *cartApi) addItem(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data cart.NewItem
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	items, err := api.svc.Add(ctx.Request().Context(), sess.UserID, data)
	if err != nil {
		return errors.Wrap(err, "adding cart item")
	}
	return ctx.JSON(http.StatusOK, newCartResponse(items))
}

func (api *cartApi) removeItem(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	items, err := api.svc.Remove(ctx.Request().Context(), sess.UserID, id)
	if err != nil {
		return errors.Wrap(err, "removing cart item")
	}
	return ctx.JSON(http.StatusOK, newCartResponse(items))
}

func (api *cartApi) clear(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Clear(ctx.Request().Context(), sess.UserID); err != nil {
		return errors.Wrap(err, "clearing cart")
	}
	return ctx.NoContent(http.StatusNoContent)
}
