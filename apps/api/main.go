package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/skiddy/skiddy/apps/api/echo"
	"github.com/skiddy/skiddy/core"
	"github.com/skiddy/skiddy/core/access"
	"github.com/skiddy/skiddy/core/enrollment"
	"github.com/skiddy/skiddy/core/notify"
	"github.com/skiddy/skiddy/core/profile"
	"github.com/skiddy/skiddy/core/review"
	"github.com/skiddy/skiddy/core/session"
	"github.com/skiddy/skiddy/core/settings"
	"github.com/skiddy/skiddy/core/support"
	emailsvc "github.com/skiddy/skiddy/services/email"
	logsvc "github.com/skiddy/skiddy/services/logger"
	filekv "github.com/skiddy/skiddy/storage/kv/file"
	rediskv "github.com/skiddy/skiddy/storage/kv/redis"
	pbclient "github.com/skiddy/skiddy/storage/records/pocketbase"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// durable session storage: redis when configured, files otherwise
	storage, closeStorage, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up session storage: %v", err), err)
	}
	defer func() {
		if err = closeStorage(); err != nil {
			logger.Error("closing session storage", err)
		}
	}()

	client := pbclient.New(conf)

	sessions := session.NewStore(client, storage, logger, conf)
	defer sessions.Close()
	sessions.Restore(context.Background())

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	resolver := access.NewResolver(client, logger)
	reviewSvc := review.NewService(client, sessions, logger)
	supportSvc := support.NewService(client, mailSvc, conf, logger)
	enrollmentSvc := enrollment.NewService(client, logger)
	settingsSvc := settings.NewService(client, logger)
	profileSvc := profile.NewService(client, sessions, logger)
	notifyBridge := notify.NewBridge(client, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			Sessions:    sessions,
			Access:      resolver,
			Reviews:     reviewSvc,
			Support:     supportSvc,
			Enrollments: enrollmentSvc,
			Settings:    settingsSvc,
			Profiles:    profileSvc,
			Notify:      notifyBridge,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStorage(conf *core.Config) (session.Storage, func() error, error) {
	if conf.Redis.Addr != "" {
		storage, err := rediskv.Open(context.Background(), conf)
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Close, nil
	}

	storage, err := filekv.Open(conf.Session.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	return storage, func() error { return nil }, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
