package enrollment

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

// Service tracks which users are enrolled in which courses and how far
// along they are.
type Service struct {
	client record.Client
	logger core.Logger
}

func NewService(client record.Client, logger core.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// List returns enrollments, narrowed to one user when userID is non-empty.
func (s *Service) List(ctx context.Context, userID string) ([]record.Enrollment, error) {
	var q record.Query
	if userID != "" {
		q.Filter = record.Equal("user", userID)
	}
	var enrollments []record.Enrollment
	if err := s.client.ListRecords(ctx, record.CollectionEnrollments, q, &enrollments); err != nil {
		s.logger.Error("enrollment: listing enrollments", err)
		return nil, errors.Wrap(err, "listing enrollments")
	}
	return enrollments, nil
}

func (s *Service) Get(ctx context.Context, id string) (record.Enrollment, error) {
	var enr record.Enrollment
	err := s.client.GetRecord(ctx, record.CollectionEnrollments, id, record.Query{}, &enr)
	return enr, errors.Wrap(err, "fetching enrollment")
}

// NewEnrollment contains information needed to enroll a user in a course.
type NewEnrollment struct {
	User   string `json:"user" validate:"required"`
	Course string `json:"course" validate:"required"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

func (s *Service) Create(ctx context.Context, data NewEnrollment) (record.Enrollment, error) {
	body := map[string]interface{}{
		"user":     data.User,
		"course":   data.Course,
		"progress": 0,
	}
	var enr record.Enrollment
	if err := s.client.CreateRecord(ctx, record.CollectionEnrollments, body, &enr); err != nil {
		return record.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

// Progress is a progress update; Percent is clamped to [0, 100] by validation.
type Progress struct {
	Percent          int      `json:"progress" validate:"min=0,max=100"`
	CompletedLessons []string `json:"completedLessons"`
}

func (p *Progress) Validate(validate *validator.Validate) error {
	return validate.Struct(p)
}

func (s *Service) UpdateProgress(ctx context.Context, id string, data Progress) (record.Enrollment, error) {
	body := map[string]interface{}{"progress": data.Percent}
	if data.CompletedLessons != nil {
		body["completedLessons"] = data.CompletedLessons
	}
	var enr record.Enrollment
	if err := s.client.UpdateRecord(ctx, record.CollectionEnrollments, id, body, &enr); err != nil {
		return record.Enrollment{}, errors.Wrap(err, "updating enrollment progress")
	}
	return enr, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return errors.Wrap(s.client.DeleteRecord(ctx, record.CollectionEnrollments, id), "deleting enrollment")
}
