package profile

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
	"github.com/skiddy/skiddy/core/session"
)

// Service patches the logged-in user's own record. Identity (id, role) is
// immutable from here; only presentation fields may change.
type Service struct {
	client   record.Client
	sessions *session.Store
	logger   core.Logger
}

func NewService(client record.Client, sessions *session.Store, logger core.Logger) *Service {
	return &Service{client: client, sessions: sessions, logger: logger}
}

// UpdateProfile defines what a user may change about themselves.
type UpdateProfile struct {
	Name     string `json:"name"`
	Username string `json:"username" validate:"omitempty,min=6,alphanum_"`
	Avatar   string `json:"avatar"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Username = core.CleanLowerString(up.Username)
	return validate.Struct(up)
}

// Update patches the current user and refreshes the session's copy of the
// model so dependent readers see the change without a re-login.
func (s *Service) Update(ctx context.Context, data UpdateProfile) (record.User, error) {
	usr := s.sessions.CurrentUser()
	if usr == nil {
		return record.User{}, errors.WithMessage(record.ErrAuthenticationFailed, "login required")
	}

	body := make(map[string]interface{}, 3)
	if data.Name != "" {
		body["name"] = data.Name
	}
	if data.Username != "" {
		body["username"] = data.Username
	}
	if data.Avatar != "" {
		body["avatar"] = data.Avatar
	}
	if len(body) == 0 {
		return *usr, nil
	}

	var updated record.User
	if err := s.client.UpdateRecord(ctx, record.CollectionUsers, usr.ID, body, &updated); err != nil {
		return record.User{}, errors.Wrap(err, "updating profile")
	}

	auth := s.client.AuthStore()
	auth.Save(auth.Token(), &updated)
	return updated, nil
}

// AvatarURL resolves usr's avatar file to an absolute URL, or "" when unset.
func (s *Service) AvatarURL(usr *record.User) string {
	if usr == nil || usr.Avatar == "" {
		return ""
	}
	coll := usr.CollectionID
	if coll == "" {
		coll = record.CollectionUsers
	}
	return s.client.FileURL(coll, usr.ID, usr.Avatar, "100x100")
}
