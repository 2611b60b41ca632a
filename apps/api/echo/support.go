package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/session"
	"github.com/skiddy/skiddy/core/support"
)

type supportApi struct {
	svc      *support.Service
	sessions *session.Store
	validate *validator.Validate
}

func registerSupportAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := supportApi{svc: deps.Support, sessions: deps.Sessions, validate: deps.Validate}

	sg := g.Group("/support/tickets", guard)
	sg.POST("", api.create)
	sg.GET("", api.list)
	sg.PATCH("/:id/status", api.setStatus, adminMiddleware(deps.Sessions))
}

// Handlers

func (api *supportApi) create(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}

	var data support.NewTicket
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTicket")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ticket, err := api.svc.CreateTicket(ctx.Request().Context(), *usr, data)
	if err != nil {
		return errors.Wrap(err, "creating ticket")
	}
	return ctx.JSON(http.StatusCreated, ticket)
}

func (api *supportApi) list(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}

	tickets, err := api.svc.ListUserTickets(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing tickets")
	}
	return ctx.JSON(http.StatusOK, tickets)
}

func (api *supportApi) setStatus(ctx echo.Context) error {
	var data support.UpdateStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ticket, err := api.svc.SetStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "updating ticket status")
	}
	return ctx.JSON(http.StatusOK, ticket)
}
