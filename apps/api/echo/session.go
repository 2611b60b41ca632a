package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/profile"
	"github.com/skiddy/skiddy/core/record"
	"github.com/skiddy/skiddy/core/session"
)

type sessionApi struct {
	sessions *session.Store
	profiles *profile.Service
	validate *validator.Validate
}

func registerSessionAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps, stop <-chan struct{}) {
	api := sessionApi{
		sessions: deps.Sessions,
		profiles: deps.Profiles,
		validate: deps.Validate,
	}

	sg := g.Group("/session")

	// un-authed endpoint; brute-force protection via per-IP rate limit
	sg.POST("/login", api.login, rateLimitMiddleware(
		deps.Conf.Server.LoginRateBurst,
		deps.Conf.Server.LoginRatePerSec,
		stop,
	))

	sg.GET("", api.current, guard)
	sg.DELETE("", api.logout, guard)
}

// LoginRequest carries login credentials; the identifier is an email address
// or a username.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Identifier = core.CleanLowerString(lr.Identifier)
	return validate.Struct(lr)
}

type SessionResponse struct {
	User      record.User `json:"user"`
	AvatarURL string      `json:"avatarUrl,omitempty"`
}

// Handlers

func (api *sessionApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.sessions.Login(ctx.Request().Context(), data.Identifier, data.Password)
	if err != nil {
		if record.IsAuthenticationFailed(err) {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}

	return ctx.JSON(http.StatusOK, SessionResponse{
		User:      usr,
		AvatarURL: api.profiles.AvatarURL(&usr),
	})
}

func (api *sessionApi) current(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, SessionResponse{
		User:      *usr,
		AvatarURL: api.profiles.AvatarURL(usr),
	})
}

func (api *sessionApi) logout(ctx echo.Context) error {
	api.sessions.Logout(ctx.Request().Context())
	return ctx.NoContent(http.StatusNoContent)
}
