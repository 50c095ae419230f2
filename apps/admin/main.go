package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

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
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	// set up storage; migrations are left to the migrate command
	var (
		db     *sqlx.DB
		stores database.Stores
		err    error
	)
	if conf.Database.Engine == database.EnginePostgres {
		errAndDie(logger, database.CreateIfNotExist(conf))
		db, err = database.Open(conf)
		errAndDie(logger, err)
		stores = database.NewPostgresStores(db)
	} else {
		stores, err = database.NewStores(conf)
		errAndDie(logger, err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleServiceMock(log.New(os.Stdout, "EMAIL : ", log.LstdFlags), conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}
	validate, _ := core.NewValidator()
	books := gradebook.NewService(stores.Gradebook, validate)
	tasks := task.NewService(stores.Tasks, books, validate, mailSvc, task.Options{
		Student: conf.Email.StudentEmail,
		Lead:    conf.Reminder.Lead,
	})
	var source lms.Source
	if client := canvas.NewClient(conf.Canvas); client != nil {
		source = client
	}

	// start CLI
	cli := commandLine{
		conf:  conf,
		db:    db,
		books: books,
		tasks: tasks,
		lms: lms.NewService(source, books, tasks, logger, lms.Options{
			DefaultCredits: conf.Canvas.DefaultCredits,
			Concurrency:    conf.Canvas.Concurrency,
		}),
		out: os.Stdout,
	}
	err = cli.run(os.Args)
	if cerr := stores.Close(); cerr != nil {
		logger.Error(fmt.Sprintf("closing database: %v", cerr), cerr)
	}
	logger.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
