package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/skiddy/skiddy/apps/api/echo"
	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/access"
	"github.com/skiddy/skiddy/core/enrollment"
	"github.com/skiddy/skiddy/core/notify"
	"github.com/skiddy/skiddy/core/profile"
	"github.com/skiddy/skiddy/core/record"
	"github.com/skiddy/skiddy/core/review"
	"github.com/skiddy/skiddy/core/session"
	"github.com/skiddy/skiddy/core/settings"
	"github.com/skiddy/skiddy/core/support"
	emailsvc "github.com/skiddy/skiddy/services/email"
	inmemkv "github.com/skiddy/skiddy/storage/kv/inmem"
	dummyclient "github.com/skiddy/skiddy/storage/records/dummy"
	testutil "github.com/skiddy/skiddy/tests"
)

type testApp struct {
	server   echoapi.Server
	client   *dummyclient.Client
	sessions *session.Store
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := &core.Config{TestMode: true, Env: "TEST", AppName: "Skiddy"}
	conf.DefaultFromEmail.Address = "noreply@test.com"
	conf.Session.SettleDelay = time.Millisecond
	conf.Server.LoginRateBurst = 100
	conf.Server.LoginRatePerSec = 100

	logger := testutil.Logger{T: t}
	client := dummyclient.Open()
	storage := inmemkv.Open()

	sessions := session.NewStore(client, storage, logger, conf)
	t.Cleanup(sessions.Close)

	mailSvc := emailsvc.NewConsoleService(conf)
	emailsvc.ClearSentMessages()

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Sessions:    sessions,
		Access:      access.NewResolver(client, logger),
		Reviews:     review.NewService(client, sessions, logger),
		Support:     support.NewService(client, mailSvc, conf, logger),
		Enrollments: enrollment.NewService(client, logger),
		Settings:    settings.NewService(client, logger),
		Profiles:    profile.NewService(client, sessions, logger),
		Notify:      notify.NewBridge(client, logger),
		Validate:    newValidate(),
		Translator:  newTranslator(),
	})
	t.Cleanup(func() { _ = server.Close() })
	return &testApp{server: server, client: client, sessions: sessions}
}

func newValidate() *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, newTranslator())
	return validate
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// loginAs seeds usr with a password and logs them in through the session
// store, as a client would have done before hitting protected routes.
func (app *testApp) loginAs(t *testing.T, usr record.User) record.User {
	t.Helper()
	usr = app.client.AddUser(usr, "s3cretPwd!")
	if _, err := app.sessions.Login(context.Background(), usr.Email, "s3cretPwd!"); err != nil {
		t.Fatalf("loginAs(%s) failed: %v", usr.Email, err)
	}
	return usr
}

func (app *testApp) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
