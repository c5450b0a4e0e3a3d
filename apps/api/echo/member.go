package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/member"
)

type memberApi struct {
	svc *member.Service
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *member.Service) {
	api := memberApi{svc: svc}

	// the directory backs the admin dashboard
	mg := g.Group("/members", jwt, adminMiddleware())
	mg.GET("", api.query)
}

// Handlers

func (api *memberApi) query(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	filter := new(member.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding QueryFilter")
	}
	filter.Clean()

	members, err := api.svc.Query(ctx.Request().Context(), sess.Token, filter)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []member.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}
