package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/enrollment"
	"github.com/skiddy/skiddy/core/session"
)

type enrollmentApi struct {
	svc      *enrollment.Service
	sessions *session.Store
	validate *validator.Validate
}

func registerEnrollmentAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := enrollmentApi{svc: deps.Enrollments, sessions: deps.Sessions, validate: deps.Validate}

	eg := g.Group("/enrollments", guard)
	eg.GET("", api.list)
	eg.POST("", api.create, adminMiddleware(deps.Sessions))
	eg.PATCH("/:id/progress", api.updateProgress)
	eg.DELETE("/:id", api.destroy, adminMiddleware(deps.Sessions))
}

// Handlers

// list returns the caller's own enrollments; admins may narrow to any user
// with ?user=<id> or pass none to list all.
func (api *enrollmentApi) list(ctx echo.Context) error {
	usr := api.sessions.CurrentUser()
	if usr == nil {
		return errUnauthorized
	}

	userID := usr.ID
	if usr.IsAdmin() {
		userID = ctx.QueryParam("user")
	}

	enrollments, err := api.svc.List(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) updateProgress(ctx echo.Context) error {
	var data enrollment.Progress
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Progress")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.UpdateProgress(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating enrollment progress")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
