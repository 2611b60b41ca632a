package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/profile"
	"github.com/skiddy/skiddy/core/session"
)

type profileApi struct {
	svc      *profile.Service
	sessions *session.Store
	validate *validator.Validate
}

func registerProfileAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := profileApi{svc: deps.Profiles, sessions: deps.Sessions, validate: deps.Validate}

	pg := g.Group("/profile", guard)
	pg.GET("", api.retrieve)
	pg.PATCH("", api.update)
}

// Handlers

func (api *profileApi) retrieve(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		User:      *usr,
		AvatarURL: api.svc.AvatarURL(usr),
	})
}

func (api *profileApi) update(ctx echo.Context) error {
	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		User:      usr,
		AvatarURL: api.svc.AvatarURL(&usr),
	})
}
