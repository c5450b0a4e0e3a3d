package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/checkout"
)

type checkoutApi struct {
	svc *checkout.Service
}

func registerCheckoutAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *checkout.Service) {
	api := checkoutApi{svc: svc}

	cg := g.Group("", jwt)
	cg.POST("/checkout", api.submit)
	cg.GET("/enrollments", api.listEnrollments)
}

// Handlers

func (api *checkoutApi) submit(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	var data checkout.Submission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}

	// validation and remote failures are translated by the error handler
	res, err := api.svc.Submit(ctx.Request().Context(), sess, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *checkoutApi) listEnrollments(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	enrollments, err := api.svc.Enrollments(ctx.Request().Context(), sess)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	if enrollments == nil {
		enrollments = []checkout.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}
