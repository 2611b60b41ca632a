package record

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthStore holds the client-side auth state: the backend-issued token and
// the authenticated user model. Mutations go through Save/Clear only; every
// transition notifies subscribers. No ordering is guaranteed across them.
type AuthStore struct {
	mu        sync.RWMutex
	token     string
	model     *User
	nextSubID int
	listeners map[int]func(token string, model *User)
}

func NewAuthStore() *AuthStore {
	return &AuthStore{listeners: make(map[int]func(string, *User))}
}

func (s *AuthStore) Save(token string, model *User) {
	s.mu.Lock()
	s.token = token
	if model != nil {
		cp := *model
		s.model = &cp
	} else {
		s.model = nil
	}
	s.mu.Unlock()
	s.notify()
}

func (s *AuthStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.model = nil
	s.mu.Unlock()
	s.notify()
}

func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Model returns a copy of the stored user model, or nil.
func (s *AuthStore) Model() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.model == nil {
		return nil
	}
	cp := *s.model
	return &cp
}

// IsValid reports whether a user model and a non-expired token are both
// present. The token's exp claim is decoded without signature verification;
// the backend owns the signing key and re-verifies on every request.
func (s *AuthStore) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil && s.token != "" && !isTokenExpired(s.token)
}

// OnChange subscribes to auth state transitions and returns an unsubscribe func.
func (s *AuthStore) OnChange(fn func(token string, model *User)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthStore) notify() {
	s.mu.RLock()
	token, model := s.token, s.model
	if model != nil {
		cp := *model
		model = &cp
	}
	fns := make([]func(string, *User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(token, model)
	}
}

// isTokenExpired decodes the token payload and checks its exp claim.
// Undecodable tokens and tokens without exp count as expired.
func isTokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}
