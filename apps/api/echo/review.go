package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/review"
)

type reviewApi struct {
	svc      *review.Service
	validate *validator.Validate
}

func registerReviewAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := reviewApi{svc: deps.Reviews, validate: deps.Validate}

	cg := g.Group("/courses/:id/reviews", guard)
	cg.GET("", api.listByCourse)
	cg.POST("", api.create)

	rg := g.Group("/reviews/:id", guard)
	rg.PUT("", api.update)
	rg.DELETE("", api.destroy)
}

// Handlers

func (api *reviewApi) listByCourse(ctx echo.Context) error {
	reviews, err := api.svc.ListByCourse(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing reviews")
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *reviewApi) create(ctx echo.Context) error {
	var data review.NewReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	data.Course = ctx.Param("id")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rev, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, rev)
}

func (api *reviewApi) update(ctx echo.Context) error {
	var data review.UpdateReview
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateReview")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rev, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating review")
	}
	return ctx.JSON(http.StatusOK, rev)
}

func (api *reviewApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	return ctx.NoContent(http.StatusNoContent)
}
