package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	echoapi "github.com/schoolorganizer/organizer/apps/api/echo"
	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/gradebook"
	"github.com/schoolorganizer/organizer/core/lms"
	"github.com/schoolorganizer/organizer/core/task"
	"github.com/schoolorganizer/organizer/services/canvas"
	emailsvc "github.com/schoolorganizer/organizer/services/email"
	logsvc "github.com/schoolorganizer/organizer/services/logger"
	"github.com/schoolorganizer/organizer/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage
	stores, err := setUpStores(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = stores.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(log.New(os.Stdout, "EMAIL : ", log.LstdFlags), conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	validate, translator := core.NewValidator()
	books := gradebook.NewService(stores.Gradebook, validate)
	tasks := task.NewService(stores.Tasks, books, validate, mailSvc, task.Options{
		Student: conf.Email.StudentEmail,
		Lead:    conf.Reminder.Lead,
	})

	var source lms.Source
	if client := canvas.NewClient(conf.Canvas); client != nil {
		source = client
	}
	lmsSvc := lms.NewService(source, books, tasks, logger, lms.Options{
		DefaultCredits: conf.Canvas.DefaultCredits,
		Concurrency:    conf.Canvas.Concurrency,
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	if !lmsSvc.Configured() {
		logger.Warn("canvas is not configured; LMS routes will fail")
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("dbEngine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Reminders

	ctx, stopReminders := context.WithCancel(context.Background())
	defer stopReminders()
	go runReminders(ctx, tasks, conf.Reminder.Window, logger)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.Deps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Gradebook:  books,
		Tasks:      tasks,
		LMS:        lmsSvc,
	})

	go func() {
		server.Start()
	}()

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

func setUpStores(conf *core.Config) (database.Stores, error) {
	if conf.Database.Engine == database.EnginePostgres {
		if err := database.CreateIfNotExist(conf); err != nil {
			return database.Stores{}, err
		}
	}
	return database.NewStores(conf)
}

// runReminders sends due reminders right away, then once per window until ctx is done.
func runReminders(ctx context.Context, tasks *task.Service, window time.Duration, logger core.Logger) {
	if window <= 0 {
		return
	}
	sendReminders(ctx, tasks, time.Now(), window, logger)

	ticker := time.NewTicker(window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sendReminders(ctx, tasks, now, window, logger)
		}
	}
}

func sendReminders(ctx context.Context, tasks *task.Service, now time.Time, window time.Duration, logger core.Logger) {
	sent, err := tasks.SendReminders(ctx, now, window)
	if err != nil {
		logger.Error(fmt.Sprintf("sending reminders: %v", err), err)
		return
	}
	if len(sent) > 0 {
		logger.Info(fmt.Sprintf("sent %d reminder(s)", len(sent)))
	}
}
