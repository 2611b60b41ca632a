package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/record"
)

// Token mints a parseable JWT expiring at exp. The signing key is irrelevant:
// the client only decodes the exp claim, the backend owns verification.
func Token(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": exp.Unix(),
	})
	ss, err := token.SignedString([]byte("test"))
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return ss
}

// NewUser builds a user record for tests.
func NewUser(id, name, role string, courseAccess ...string) record.User {
	usr := record.User{
		Name:     name,
		Username: name,
		Email:    name + "@test.com",
		Role:     role,
	}
	usr.ID = id
	usr.CollectionID = "_pb_users_auth_"
	usr.CollectionName = record.CollectionUsers
	usr.CourseAccess = courseAccess
	return usr
}

// Logger is a core.Logger that records to the test log.
type Logger struct {
	T *testing.T
}

var _ core.Logger = (*Logger)(nil)

func (l Logger) log(level, msg string, args []interface{}) {
	l.T.Helper()
	l.T.Logf("%s: %s %v", level, msg, args)
}

func (l Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) {
	l.T.Fatal(fmt.Sprintf("FATAL: %s %v", msg, args))
}
