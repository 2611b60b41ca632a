package access

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

const thumbSpec = "100x100"

// Resolver computes the course set a given user is entitled to see.
// Admins bypass both the course_access membership and the enabled flag; a
// regular user never sees a course outside their course_access set or with
// enabled = false. Decisions are recomputed on every call, never cached.
type Resolver struct {
	client record.Client
	logger core.Logger
}

func NewResolver(client record.Client, logger core.Logger) *Resolver {
	return &Resolver{client: client, logger: logger}
}

// ListVisibleCourses returns the courses usr may see, newest first, with the
// instructor relation expanded and thumbnails resolved to absolute URLs.
// A nil user or an empty course_access set yields an empty result without a
// course query; backend failures yield an empty result plus the error so
// callers can surface a retryable state instead of crashing.
func (r *Resolver) ListVisibleCourses(ctx context.Context, usr *record.User) ([]record.Course, error) {
	if usr == nil {
		return nil, nil
	}

	q := record.Query{Sort: "-created", Expand: "instructor"}
	if !usr.IsAdmin() {
		if len(usr.CourseAccess) == 0 {
			return nil, nil
		}
		q.Filter = record.And(
			record.AnyOf("id", usr.CourseAccess),
			"enabled = true",
		)
	}

	var courses []record.Course
	if err := r.client.ListRecords(ctx, record.CollectionCourses, q, &courses); err != nil {
		r.logger.Error("access: listing courses", err, *usr)
		return nil, errors.Wrap(err, "listing courses")
	}
	for i := range courses {
		r.resolveThumbnail(&courses[i])
	}
	return courses, nil
}

// CanAccessCourse reports whether usr may open courseID: admins always may,
// everyone else needs courseID in their course_access set. Callers must
// check this before fetching a course's lessons.
func (r *Resolver) CanAccessCourse(usr *record.User, courseID string) bool {
	if usr == nil {
		return false
	}
	return usr.IsAdmin() || usr.CourseAccess.Contains(courseID)
}

// GetCourse fetches a single course after an access check. Denied access is
// reported as record.ErrAccessDenied so the caller can redirect instead of
// rendering a partial view; non-admins additionally require enabled = true.
func (r *Resolver) GetCourse(ctx context.Context, usr *record.User, courseID string) (record.Course, error) {
	if !r.CanAccessCourse(usr, courseID) {
		return record.Course{}, errors.WithMessage(record.ErrAccessDenied, "course not in access set")
	}

	var course record.Course
	err := r.client.GetRecord(ctx, record.CollectionCourses, courseID, record.Query{Expand: "instructor"}, &course)
	if err != nil {
		return record.Course{}, errors.Wrap(err, "fetching course")
	}
	if !usr.IsAdmin() && !course.Enabled {
		return record.Course{}, errors.WithMessage(record.ErrAccessDenied, "course disabled")
	}
	r.resolveThumbnail(&course)
	return course, nil
}

// ListLessons returns courseID's lessons in lesson order. The access check
// runs before any fetch.
func (r *Resolver) ListLessons(ctx context.Context, usr *record.User, courseID string) ([]record.Lesson, error) {
	if !r.CanAccessCourse(usr, courseID) {
		return nil, errors.WithMessage(record.ErrAccessDenied, "course not in access set")
	}

	var lessons []record.Lesson
	q := record.Query{
		Filter:  record.Equal("course", courseID),
		Sort:    "order",
		Expand:  "course",
		PerPage: 100,
	}
	if err := r.client.ListRecords(ctx, record.CollectionLessons, q, &lessons); err != nil {
		r.logger.Error("access: listing lessons", err, *usr)
		return nil, errors.Wrap(err, "listing lessons")
	}
	return lessons, nil
}

// ListLessonResources returns a lesson's attached resources, oldest first.
// The lesson's existence is confirmed before the resource query.
func (r *Resolver) ListLessonResources(ctx context.Context, lessonID string) ([]record.LessonResource, error) {
	var lesson record.Lesson
	if err := r.client.GetRecord(ctx, record.CollectionLessons, lessonID, record.Query{}, &lesson); err != nil {
		return nil, errors.Wrap(err, "fetching lesson")
	}

	var resources []record.LessonResource
	q := record.Query{
		Filter: record.Equal("lesson", lessonID),
		Sort:   "created",
	}
	if err := r.client.ListRecords(ctx, record.CollectionLessonResources, q, &resources); err != nil {
		return nil, errors.Wrap(err, "listing lesson resources")
	}
	return resources, nil
}

// ResourceFileURL builds the absolute download URL of a lesson resource file.
func (r *Resolver) ResourceFileURL(res record.LessonResource) string {
	if res.ID == "" || res.File == "" {
		return ""
	}
	return r.client.FileURL(record.CollectionLessonResources, res.ID, res.File, "")
}

func (r *Resolver) resolveThumbnail(course *record.Course) {
	if course.Thumbnail == "" {
		return
	}
	coll := course.CollectionID
	if coll == "" {
		coll = record.CollectionCourses
	}
	course.Thumbnail = r.client.FileURL(coll, course.ID, course.Thumbnail, thumbSpec)
}
