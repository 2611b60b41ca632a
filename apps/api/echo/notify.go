package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/notify"
	"github.com/skiddy/skiddy/core/session"
)

type notificationApi struct {
	bridge   *notify.Bridge
	sessions *session.Store
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{bridge: deps.Notify, sessions: deps.Sessions, validate: deps.Validate}

	ng := g.Group("/notifications/device", guard)
	ng.POST("", api.register)
	ng.DELETE("", api.unregister)
}

// DeviceTokenRequest carries the push token issued to this device.
type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (dr *DeviceTokenRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(dr)
}

// Handlers

func (api *notificationApi) register(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}

	var data DeviceTokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeviceTokenRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reg, err := api.bridge.RegisterDeviceToken(ctx.Request().Context(), usr.ID, data.Token)
	if err != nil {
		return errors.Wrap(err, "registering device token")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"id": reg.ID})
}

func (api *notificationApi) unregister(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}

	if err := api.bridge.UnregisterDeviceToken(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "unregistering device token")
	}
	return ctx.NoContent(http.StatusNoContent)
}
