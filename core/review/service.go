package review

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
	"github.com/skiddy/skiddy/core/session"
)

// Service manages course reviews. Every write requires a valid session; the
// acting user is always taken from the session, never from the payload.
type Service struct {
	client   record.Client
	sessions *session.Store
	logger   core.Logger
}

func NewService(client record.Client, sessions *session.Store, logger core.Logger) *Service {
	return &Service{client: client, sessions: sessions, logger: logger}
}

// NewReview contains information needed to create a new review.
type NewReview struct {
	Course  string `json:"course" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

// UpdateReview defines what may be modified on an existing review.
type UpdateReview struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

func (ur *UpdateReview) Validate(validate *validator.Validate) error {
	ur.Comment = core.CleanString(ur.Comment)
	return validate.Struct(ur)
}

// ListByCourse returns a course's reviews, newest first, with the reviewer
// expanded.
func (s *Service) ListByCourse(ctx context.Context, courseID string) ([]record.Review, error) {
	var reviews []record.Review
	q := record.Query{
		Filter:  record.Equal("course", courseID),
		Sort:    "-created",
		Expand:  "user",
		PerPage: 50,
	}
	if err := s.client.ListRecords(ctx, record.CollectionReviews, q, &reviews); err != nil {
		s.logger.Error("review: listing reviews", err)
		return nil, errors.Wrap(err, "listing reviews")
	}
	return reviews, nil
}

func (s *Service) Create(ctx context.Context, data NewReview) (record.Review, error) {
	usr := s.sessions.CurrentUser()
	if usr == nil {
		return record.Review{}, errors.WithMessage(record.ErrAuthenticationFailed, "login required to review")
	}

	body := map[string]interface{}{
		"course":  data.Course,
		"rating":  data.Rating,
		"comment": data.Comment,
		"user":    usr.ID,
	}
	var rev record.Review
	if err := s.client.CreateRecord(ctx, record.CollectionReviews, body, &rev); err != nil {
		return record.Review{}, errors.Wrap(err, "creating review")
	}
	return rev, nil
}

func (s *Service) Update(ctx context.Context, id string, data UpdateReview) (record.Review, error) {
	if _, err := s.ownedReview(ctx, id); err != nil {
		return record.Review{}, err
	}

	body := map[string]interface{}{
		"rating":  data.Rating,
		"comment": data.Comment,
	}
	var rev record.Review
	if err := s.client.UpdateRecord(ctx, record.CollectionReviews, id, body, &rev); err != nil {
		return record.Review{}, errors.Wrap(err, "updating review")
	}
	return rev, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.ownedReview(ctx, id); err != nil {
		return err
	}
	return errors.Wrap(s.client.DeleteRecord(ctx, record.CollectionReviews, id), "deleting review")
}

// ownedReview fetches the review and checks the acting user may modify it:
// the author themselves, or an admin moderating.
func (s *Service) ownedReview(ctx context.Context, id string) (record.Review, error) {
	usr := s.sessions.CurrentUser()
	if usr == nil {
		return record.Review{}, errors.WithMessage(record.ErrAuthenticationFailed, "login required to review")
	}

	var rev record.Review
	if err := s.client.GetRecord(ctx, record.CollectionReviews, id, record.Query{}, &rev); err != nil {
		return record.Review{}, errors.Wrap(err, "fetching review")
	}
	if rev.User != usr.ID && !usr.IsAdmin() {
		return record.Review{}, errors.WithMessage(record.ErrAccessDenied, "not the review author")
	}
	return rev, nil
}
