package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

const persistTimeout = 5 * time.Second

// persistedAuth is the serialized {token, model} pair kept in durable storage.
type persistedAuth struct {
	Token string       `json:"token"`
	Model *record.User `json:"model"`
}

// Store is the single authoritative representation of "who is logged in".
// It wraps the backend client's auth store and mirrors every auth transition
// into durable storage; mutations happen only through Login/Logout/Restore.
type Store struct {
	client      record.Client
	storage     Storage
	logger      core.Logger
	key         string
	settleDelay time.Duration
	unsub       func()
}

func NewStore(client record.Client, storage Storage, logger core.Logger, conf *core.Config) *Store {
	s := &Store{
		client:      client,
		storage:     storage,
		logger:      logger,
		key:         conf.Session.StorageKey,
		settleDelay: conf.Session.SettleDelay,
	}
	if s.key == "" {
		s.key = "pb_auth"
	}
	if s.settleDelay <= 0 {
		s.settleDelay = 100 * time.Millisecond
	}
	// the store's own subscription drives persistence; other listeners must
	// not assume they run before or after it
	s.unsub = client.AuthStore().OnChange(s.persist)
	return s
}

// Close detaches the persistence subscription.
func (s *Store) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

// Restore re-hydrates the auth state from durable storage without any
// network call. Missing, unreadable or malformed data leaves the session
// unauthenticated; failures are logged, never returned.
func (s *Store) Restore(ctx context.Context) {
	raw, err := s.storage.GetItem(ctx, s.key)
	if err != nil {
		s.logger.Warn("session: reading persisted auth", err)
		return
	}
	if raw == "" {
		return
	}
	var data persistedAuth
	if err = json.Unmarshal([]byte(raw), &data); err != nil {
		s.logger.Warn("session: parsing persisted auth", err)
		return
	}
	if data.Token == "" || data.Model == nil {
		s.logger.Warn("session: persisted auth incomplete, ignoring")
		return
	}
	s.client.AuthStore().Save(data.Token, data.Model)
}

// Login authenticates against the backend and confirms the resulting auth
// state is valid before reporting success. The settle delay covers local
// state propagation after a nominally successful call; a state that never
// settles is an authentication failure, not a false-success.
func (s *Store) Login(ctx context.Context, identifier, secret string) (record.User, error) {
	identifier = core.CleanLowerString(identifier)

	if _, err := s.client.AuthWithPassword(ctx, identifier, secret); err != nil {
		if record.IsNotFound(err) {
			return record.User{}, errors.WithMessage(record.ErrAuthenticationFailed, "unknown identifier")
		}
		return record.User{}, err
	}

	auth := s.client.AuthStore()
	if !auth.IsValid() {
		select {
		case <-time.After(s.settleDelay):
		case <-ctx.Done():
			return record.User{}, ctx.Err()
		}
		if !auth.IsValid() {
			auth.Clear()
			return record.User{}, errors.WithMessage(record.ErrAuthenticationFailed, "auth state did not settle")
		}
	}
	return *auth.Model(), nil
}

// Logout clears the in-memory session immediately; deletion of the persisted
// copy rides on the change notification and is best-effort.
func (s *Store) Logout(ctx context.Context) {
	s.client.AuthStore().Clear()
}

// CurrentUser returns the logged-in user, or nil for an invalid session.
// Pure in-memory read, never triggers I/O.
func (s *Store) CurrentUser() *record.User {
	auth := s.client.AuthStore()
	if !auth.IsValid() {
		return nil
	}
	return auth.Model()
}

// IsValid reports whether a non-expired token and a user model are present.
func (s *Store) IsValid() bool {
	return s.client.AuthStore().IsValid()
}

// OnChange registers a listener for auth state transitions (login, logout,
// restore and external token refresh alike).
func (s *Store) OnChange(fn func(token string, model *record.User)) func() {
	return s.client.AuthStore().OnChange(fn)
}

func (s *Store) persist(token string, model *record.User) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if token == "" || model == nil {
		if err := s.storage.RemoveItem(ctx, s.key); err != nil {
			s.logger.Warn("session: removing persisted auth", err)
		}
		return
	}
	raw, err := json.Marshal(persistedAuth{Token: token, Model: model})
	if err != nil {
		s.logger.Warn("session: serializing auth", err)
		return
	}
	if err = s.storage.SetItem(ctx, s.key, string(raw)); err != nil {
		s.logger.Warn("session: persisting auth", err)
	}
}
