package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/settings"
)

type settingsApi struct {
	svc *settings.Service
}

func registerSettingsAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := settingsApi{svc: deps.Settings}

	sg := g.Group("/settings", guard)
	sg.GET("", api.retrieve)
	sg.PATCH("/:id", api.update, adminMiddleware(deps.Sessions))
}

// Handlers

func (api *settingsApi) retrieve(ctx echo.Context) error {
	st := api.svc.Get(ctx.Request().Context())
	if st == nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *settingsApi) update(ctx echo.Context) error {
	var body map[string]interface{}
	if err := ctx.Bind(&body); err != nil {
		return errors.Wrap(err, "binding settings body")
	}

	st, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), body)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, st)
}
