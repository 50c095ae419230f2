// Package testutil builds services over in-memory storage for tests.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/grade"
	"github.com/schoolorganizer/organizer/core/gradebook"
	"github.com/schoolorganizer/organizer/core/lms"
	"github.com/schoolorganizer/organizer/core/task"
	emailsvc "github.com/schoolorganizer/organizer/services/email"
	logsvc "github.com/schoolorganizer/organizer/services/logger"
	inmemdb "github.com/schoolorganizer/organizer/storage/database/inmem"
)

type Services struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       *emailsvc.ConsoleServiceMock
	Gradebook  *gradebook.Service
	Tasks      *task.Service
}

// NewConfig returns a TEST configuration on the memory engine.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:  "School Organizer",
		Env:      "TEST",
		Debug:    true,
		TestMode: true,
		Server:   core.ServerConfig{CORSOrigins: []string{"*"}, ShutdownTimeout: time.Second},
		Database: core.DatabaseConfig{Engine: "memory"},
		Canvas:   core.CanvasConfig{DefaultCredits: 3, Concurrency: 2},
		Email:    core.EmailConfig{DefaultFromEmail: "noreply@example.com", StudentEmail: "student@example.com"},
		Reminder: core.ReminderConfig{Lead: time.Hour, Window: 15 * time.Minute},
	}
}

// NewServices wires fresh services on an empty in-memory database.
// Logs and mails are discarded; sent mails are recorded by Mail.
func NewServices(t *testing.T, conf *core.Config) Services {
	t.Helper()
	if conf == nil {
		conf = NewConfig()
	}

	validate, translator := core.NewValidator()
	db := inmemdb.New()
	mailSvc := emailsvc.NewConsoleServiceMock(log.New(io.Discard, "", 0), conf)
	books := gradebook.NewService(inmemdb.NewGradebookRepository(db), validate)

	return Services{
		Conf:       conf,
		Logger:     logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), conf),
		Validate:   validate,
		Translator: translator,
		Mail:       mailSvc,
		Gradebook:  books,
		Tasks: task.NewService(inmemdb.NewTaskRepository(db), books, validate, mailSvc, task.Options{
			Student: conf.Email.StudentEmail,
			Lead:    conf.Reminder.Lead,
		}),
	}
}

// LMS returns an import service over source, which may be nil.
func (s Services) LMS(source lms.Source) *lms.Service {
	return lms.NewService(source, s.Gradebook, s.Tasks, s.Logger, lms.Options{
		DefaultCredits: s.Conf.Canvas.DefaultCredits,
		Concurrency:    s.Conf.Canvas.Concurrency,
	})
}

// CreateCourse stores a course; a percent adds a full-weight "Final" grade item.
func CreateCourse(t *testing.T, books *gradebook.Service, name string, credits float64, percent ...float64) grade.Course {
	t.Helper()
	ctx := context.Background()

	c, err := books.CreateCourse(ctx, gradebook.CourseInput{Name: name, Credits: null.Float64From(credits)})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	if len(percent) > 0 {
		_, err = books.CreateItem(ctx, gradebook.ItemInput{
			CourseID: null.StringFrom(c.ID),
			Name:     "Final",
			Weight:   null.Float64From(100),
			Percent:  null.Float64From(percent[0]),
		})
		if err != nil {
			t.Fatalf("CreateItem() failed: %v", err)
		}
	}
	return c
}

// CreateTask stores a task of the given type due at due.
func CreateTask(t *testing.T, tasks *task.Service, title string, typ task.Type, due time.Time) task.Task {
	t.Helper()
	tk, err := tasks.Create(context.Background(), task.Input{Title: title, Type: typ, Due: due})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tk
}
