package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/access"
	"github.com/skiddy/skiddy/core/enrollment"
	"github.com/skiddy/skiddy/core/notify"
	"github.com/skiddy/skiddy/core/profile"
	"github.com/skiddy/skiddy/core/review"
	"github.com/skiddy/skiddy/core/session"
	"github.com/skiddy/skiddy/core/settings"
	"github.com/skiddy/skiddy/core/support"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		Sessions    *session.Store
		Access      *access.Resolver
		Reviews     *review.Service
		Support     *support.Service
		Enrollments *enrollment.Service
		Settings    *settings.Service
		Profiles    *profile.Service
		Notify      *notify.Bridge
		Validate    *validator.Validate
		Translator  ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps         ServerDeps
		app          *echo.Echo
		errChan      chan error
		shutdownChan chan os.Signal
		stop         chan struct{} // closed on shutdown; ends background sweeps
		stopOnce     sync.Once
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:         deps,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
		stop:         make(chan struct{}),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	registerMetrics()
	s.app.Use(metricsMiddleware())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)
	s.app.GET(loginPath, loginPrompt)
	s.app.GET("/metrics", echo.WrapHandler(metricsHandler()))

	v1 := s.app.Group("/v1")
	guard := sessionGuardMiddleware(s.deps.Sessions)

	registerSessionAPI(v1, guard, s.deps, s.stop)
	registerCourseAPI(v1, guard, s.deps)
	registerReviewAPI(v1, guard, s.deps)
	registerSupportAPI(v1, guard, s.deps)
	registerEnrollmentAPI(v1, guard, s.deps)
	registerSettingsAPI(v1, guard, s.deps)
	registerProfileAPI(v1, guard, s.deps)
	registerNotificationAPI(v1, guard, s.deps)
}

func (s *server) Start() {
	s.errChan <- s.app.Start(s.deps.Conf.Server.Host)
}

func (s *server) Shutdown(ctx context.Context) error {
	s.stopBackground()
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	s.stopBackground()
	return s.app.Close()
}

func (s *server) stopBackground() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *server) Errors() <-chan error {
	return s.errChan
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownChan
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Skiddy API!")
}

func loginPrompt(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"message": "login required"})
}
