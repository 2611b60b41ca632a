package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skiddy/skiddy/core/record"
	testutil "github.com/skiddy/skiddy/tests"
)

func seedCatalog(app *testApp) {
	c1 := record.Course{Title: "Algebra", Enabled: true}
	c1.ID = "c1"
	c2 := record.Course{Title: "Drafts", Enabled: false}
	c2.ID = "c2"
	c3 := record.Course{Title: "Geometry", Enabled: true}
	c3.ID = "c3"
	app.client.Seed(record.CollectionCourses, c1)
	app.client.Seed(record.CollectionCourses, c2)
	app.client.Seed(record.CollectionCourses, c3)

	l1 := record.Lesson{Title: "Lesson two", Course: "c1", Order: 2}
	l1.ID = "l1"
	l2 := record.Lesson{Title: "Lesson one", Course: "c1", Order: 1}
	l2.ID = "l2"
	app.client.Seed(record.CollectionLessons, l1)
	app.client.Seed(record.CollectionLessons, l2)

	res := record.LessonResource{Lesson: "l1", Title: "Slides", File: "slides.pdf", Type: "document"}
	res.ID = "r1"
	app.client.Seed(record.CollectionLessonResources, res)
}

func TestCourseAPI_list(t *testing.T) {
	app := setup(t)
	seedCatalog(app)

	titles := func(courses []record.Course) []string {
		out := make([]string, 0, len(courses))
		for _, c := range courses {
			out = append(out, c.Title)
		}
		return out
	}

	t.Run("student sees only enabled accessible courses", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent, "c1", "c2"))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/courses", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var courses []record.Course
		decode(t, rec, &courses)
		assert.Equal(t, []string{"Algebra"}, titles(courses))
	})

	t.Run("student without access sees an empty catalog", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u2", "joe", record.RoleStudent))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/courses", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("admin sees everything, disabled included", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u3", "root", record.RoleAdmin))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/courses", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var courses []record.Course
		decode(t, rec, &courses)
		assert.ElementsMatch(t, []string{"Algebra", "Drafts", "Geometry"}, titles(courses))
	})
}

func TestCourseAPI_retrieve(t *testing.T) {
	app := setup(t)
	seedCatalog(app)

	tests := []struct {
		name     string
		usr      record.User
		courseID string
		wantCode int
	}{
		{name: "accessible course renders", usr: testutil.NewUser("u1", "jane", record.RoleStudent, "c1"), courseID: "c1", wantCode: http.StatusOK},
		{name: "outside access set redirects", usr: testutil.NewUser("u2", "joe", record.RoleStudent, "c1"), courseID: "c3", wantCode: http.StatusFound},
		{name: "disabled course redirects for student", usr: testutil.NewUser("u3", "jade", record.RoleStudent, "c2"), courseID: "c2", wantCode: http.StatusFound},
		{name: "admin opens disabled course", usr: testutil.NewUser("u4", "root", record.RoleAdmin), courseID: "c2", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.loginAs(t, tt.usr)
			defer app.sessions.Logout(context.Background())

			rec := app.do(http.MethodGet, "/v1/courses/"+tt.courseID, nil)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusFound {
				assert.Equal(t, "/v1/courses", rec.Header().Get("Location"))
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}

func TestCourseAPI_lessonsAndResources(t *testing.T) {
	app := setup(t)
	seedCatalog(app)

	t.Run("lessons come back in lesson order", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u1", "jane", record.RoleStudent, "c1"))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/courses/c1/lessons", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var lessons []record.Lesson
		decode(t, rec, &lessons)
		if assert.Len(t, lessons, 2) {
			assert.Equal(t, "Lesson one", lessons[0].Title)
			assert.Equal(t, "Lesson two", lessons[1].Title)
		}
	})

	t.Run("lessons of a denied course redirect before any fetch", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u2", "joe", record.RoleStudent, "c3"))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/courses/c1/lessons", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/v1/courses", rec.Header().Get("Location"))
	})

	t.Run("resources resolve download URLs", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u3", "jade", record.RoleStudent, "c1"))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/lessons/l1/resources", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resources []struct {
			Title string `json:"resource_title"`
			URL   string `json:"url"`
		}
		decode(t, rec, &resources)
		if assert.Len(t, resources, 1) {
			assert.Equal(t, "Slides", resources[0].Title)
			assert.Contains(t, resources[0].URL, "/api/files/lesson_resources/r1/slides.pdf")
		}
	})

	t.Run("unknown lesson is a 404", func(t *testing.T) {
		app.loginAs(t, testutil.NewUser("u4", "jim", record.RoleStudent, "c1"))
		defer app.sessions.Logout(context.Background())

		rec := app.do(http.MethodGet, "/v1/lessons/nope/resources", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
