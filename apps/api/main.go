package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/mikobi/darasa/apps/api/echo"
	"github.com/mikobi/darasa/core"
	"github.com/mikobi/darasa/core/student"
	"github.com/mikobi/darasa/core/teacher"
	"github.com/mikobi/darasa/core/upload"
	emailsvc "github.com/mikobi/darasa/services/email"
	logsvc "github.com/mikobi/darasa/services/logger"
	"github.com/mikobi/darasa/storage/database"
	sqlxrepos "github.com/mikobi/darasa/storage/database/sqlx"
	"github.com/mikobi/darasa/storage/database/unconfigured"
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

	// credentials saved via `admin configure` override the env settings
	store := core.NewConfigStore(filepath.Join(core.Getwd(), "config", "backend.yaml"))
	settings, err := store.Load()
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading config store: %v", err), err)
	}
	if settings.URL != "" {
		conf.Database.URL = settings.URL
		conf.Database.Key = settings.Key
	}

	// set up repositories; the API still serves without a backend, every
	// data operation then reports it as not configured
	var (
		stdRepo student.Repository = unconfigured.StudentRepository{}
		tchRepo teacher.Repository = unconfigured.TeacherRepository{}
		upRepo  upload.Repository  = unconfigured.UploadRepository{}
	)
	db, err := database.Open(conf)
	switch {
	case err == nil:
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("closing database", cerr)
			}
		}()
		stdRepo = sqlxrepos.NewStudentRepository(db)
		tchRepo = sqlxrepos.NewTeacherRepository(db)
		upRepo = sqlxrepos.NewUploadRepository(db)
	case errors.Cause(err) == core.ErrNotConfigured:
		logger.Warn("no backend configured; starting with stub repositories")
	default:
		if _, ok := errors.Cause(err).(*core.ConfigError); ok {
			logger.Warn(fmt.Sprintf("%v; starting with stub repositories", err))
			break
		}
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	stdSvc := student.NewService(stdRepo)
	tchSvc := teacher.NewService(tchRepo)
	upSvc := upload.NewService(upRepo, stdRepo, mailSvc, logger)

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
		if derr := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); derr != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", derr), derr)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		net.JoinHostPort(conf.Server.Host, conf.Server.Port),
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			StudentSvc: stdSvc,
			TeacherSvc: tchSvc,
			UploadSvc:  upSvc,
			Validate:   validate,
			Translator: translator,
		},
	)
	server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
