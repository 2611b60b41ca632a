package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core/access"
	"github.com/skiddy/skiddy/core/record"
	"github.com/skiddy/skiddy/core/session"
)

// coursesPath is where a client lands after a denied course view.
const coursesPath = "/v1/courses"

type courseApi struct {
	access   *access.Resolver
	sessions *session.Store
}

func registerCourseAPI(g *echo.Group, guard echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{access: deps.Access, sessions: deps.Sessions}

	cg := g.Group("/courses", guard)
	cg.GET("", api.list)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/lessons", api.listLessons)

	lg := g.Group("/lessons", guard)
	lg.GET("/:id/resources", api.listResources)
}

// ResourceResponse is a lesson resource with its file resolved to an
// absolute download URL.
type ResourceResponse struct {
	record.LessonResource
	URL string `json:"url"`
}

// Handlers

func (api *courseApi) list(ctx echo.Context) error {
	courses, err := api.access.ListVisibleCourses(ctx.Request().Context(), api.sessions.CurrentUser())
	if err != nil {
		return errors.Wrap(err, "listing visible courses")
	}
	if courses == nil {
		courses = []record.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	course, err := api.access.GetCourse(ctx.Request().Context(), api.sessions.CurrentUser(), ctx.Param("id"))
	if err != nil {
		// denied views are never rendered; send the client back to the list
		if record.IsAccessDenied(err) {
			return ctx.Redirect(http.StatusFound, coursesPath)
		}
		return errors.Wrap(err, "fetching course")
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *courseApi) listLessons(ctx echo.Context) error {
	lessons, err := api.access.ListLessons(ctx.Request().Context(), api.sessions.CurrentUser(), ctx.Param("id"))
	if err != nil {
		if record.IsAccessDenied(err) {
			return ctx.Redirect(http.StatusFound, coursesPath)
		}
		return errors.Wrap(err, "listing lessons")
	}
	if lessons == nil {
		lessons = []record.Lesson{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *courseApi) listResources(ctx echo.Context) error {
	resources, err := api.access.ListLessonResources(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing lesson resources")
	}

	resp := make([]ResourceResponse, 0, len(resources))
	for _, res := range resources {
		resp = append(resp, ResourceResponse{LessonResource: res, URL: api.access.ResourceFileURL(res)})
	}
	return ctx.JSON(http.StatusOK, resp)
}
