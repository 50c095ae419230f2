// Package task plans assignments: tasks with steps, the upcoming
// dashboard and e-mail reminders.
package task

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/grade"
)

var (
	// errors
	ErrNotFound     = &core.NotFoundError{Kind: "task"}
	ErrStepNotFound = &core.NotFoundError{Kind: "step"}
)

const reminderTemplate = "task_reminder"

// nowFunc is swapped in tests.
var nowFunc = func() time.Time { return time.Now().UTC() }

type (
	Repository interface {
		// Query returns the tasks matching filter in creation order.
		Query(ctx context.Context, filter Filter) ([]Task, error)
		Get(ctx context.Context, id string) (Task, error)
		// Save inserts or replaces a task.
		Save(ctx context.Context, t Task) error
		Delete(ctx context.Context, id string) error
		Clear(ctx context.Context) error
	}

	// CourseFinder resolves course references.
	CourseFinder interface {
		Course(ctx context.Context, id string) (grade.Course, error)
	}

	Options struct {
		// Student receives reminders; none are sent when it is empty.
		Student string
		// Lead is how long before the deadline a reminder goes out.
		Lead time.Duration
	}

	Service struct {
		repo     Repository
		courses  CourseFinder
		validate *validator.Validate
		mailSvc  core.EmailService
		opts     Options
	}

	ReminderData struct {
		Title        string
		CourseName   string
		Due          string
		PendingSteps []string
	}
)

func NewService(repo Repository, courses CourseFinder, validate *validator.Validate, mailSvc core.EmailService, opts Options) *Service {
	if opts.Lead <= 0 {
		opts.Lead = time.Hour
	}
	return &Service{repo: repo, courses: courses, validate: validate, mailSvc: mailSvc, opts: opts}
}

// List returns tasks matching filter, ordered by filter.Ordering then due date.
func (svc *Service) List(ctx context.Context, filter Filter) ([]Task, error) {
	tasks, err := svc.repo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	Sort(tasks, filter.Ordering)
	return tasks, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Task, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Create(ctx context.Context, in Input) (Task, error) {
	if err := svc.validateInput(ctx, &in); err != nil {
		return Task{}, err
	}
	t := Task{ID: core.NewID("task"), Steps: Steps{}}
	return svc.save(ctx, t, in)
}

func (svc *Service) Update(ctx context.Context, id string, in Input) (Task, error) {
	t, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if err = svc.validateInput(ctx, &in); err != nil {
		return Task{}, err
	}
	return svc.save(ctx, t, in)
}

func (svc *Service) save(ctx context.Context, t Task, in Input) (Task, error) {
	in.apply(&t)
	if in.wantsSteps(t) {
		t.Steps = GenerateSteps(nowFunc(), t.Due)
	}
	if err := svc.repo.Save(ctx, t); err != nil {
		return Task{}, errors.Wrap(err, "saving task")
	}
	return t, nil
}

func (svc *Service) validateInput(ctx context.Context, in *Input) error {
	if err := in.Validate(svc.validate); err != nil {
		return err
	}
	if in.CourseID.Valid && svc.courses != nil {
		if _, err := svc.courses.Course(ctx, in.CourseID.String); err != nil {
			if core.IsNotFound(err) {
				return core.NewFieldError("course_id", "course not found")
			}
			return errors.Wrap(err, "finding course")
		}
	}
	return nil
}

// Import stores t as is, keeping its ID.
func (svc *Service) Import(ctx context.Context, t Task) error {
	if t.Steps == nil {
		t.Steps = Steps{}
	}
	return svc.repo.Save(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.Delete(ctx, id)
}

func (svc *Service) SetCompleted(ctx context.Context, id string, completed bool) (Task, error) {
	t, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Completed = completed
	if err = svc.repo.Save(ctx, t); err != nil {
		return Task{}, errors.Wrap(err, "saving task")
	}
	return t, nil
}

func (svc *Service) AddStep(ctx context.Context, taskID string, in StepInput) (Step, error) {
	t, err := svc.repo.Get(ctx, taskID)
	if err != nil {
		return Step{}, err
	}
	if err = in.Validate(svc.validate); err != nil {
		return Step{}, err
	}
	s := Step{ID: core.NewID("step"), Title: in.Title, Done: in.Done, SubDue: in.SubDue}
	t.Steps = append(t.Steps, s)
	if err = svc.repo.Save(ctx, t); err != nil {
		return Step{}, errors.Wrap(err, "saving task")
	}
	return s, nil
}

func (svc *Service) UpdateStep(ctx context.Context, taskID, stepID string, in StepInput) (Step, error) {
	t, err := svc.repo.Get(ctx, taskID)
	if err != nil {
		return Step{}, err
	}
	i := t.step(stepID)
	if i < 0 {
		return Step{}, ErrStepNotFound
	}
	if err = in.Validate(svc.validate); err != nil {
		return Step{}, err
	}
	t.Steps[i].Title = in.Title
	t.Steps[i].Done = in.Done
	t.Steps[i].SubDue = in.SubDue
	if err = svc.repo.Save(ctx, t); err != nil {
		return Step{}, errors.Wrap(err, "saving task")
	}
	return t.Steps[i], nil
}

func (svc *Service) DeleteStep(ctx context.Context, taskID, stepID string) error {
	t, err := svc.repo.Get(ctx, taskID)
	if err != nil {
		return err
	}
	i := t.step(stepID)
	if i < 0 {
		return ErrStepNotFound
	}
	t.Steps = append(t.Steps[:i], t.Steps[i+1:]...)
	return errors.Wrap(svc.repo.Save(ctx, t), "saving task")
}

// Upcoming returns unfinished tasks due in the next days (3 when days <= 0).
func (svc *Service) Upcoming(ctx context.Context, days int) ([]Task, error) {
	tasks, err := svc.repo.Query(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	return Upcoming(tasks, nowFunc(), days), nil
}

// SendReminders e-mails the student about every pending task whose reminder
// time falls in [now, now+window). It returns the reminded tasks.
func (svc *Service) SendReminders(ctx context.Context, now time.Time, window time.Duration) ([]Task, error) {
	if svc.opts.Student == "" || svc.mailSvc == nil {
		return nil, nil
	}
	tasks, err := svc.repo.Query(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	Sort(tasks, nil)

	var (
		due  []Task
		msgs []*core.EmailMessage
	)
	to := []mail.Address{{Address: svc.opts.Student}}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		at := t.Due.Add(-svc.opts.Lead)
		if at.Before(now) || !at.Before(now.Add(window)) {
			continue
		}
		due = append(due, t)
		msgs = append(msgs, &core.EmailMessage{
			To:           to,
			Subject:      t.Title + " is due soon",
			TemplateName: reminderTemplate,
			TemplateData: ReminderData{
				Title:        t.Title,
				CourseName:   svc.courseName(ctx, t),
				Due:          t.Due.Format(time.RFC1123),
				PendingSteps: t.PendingSteps(),
			},
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	return due, nil
}

func (svc *Service) courseName(ctx context.Context, t Task) string {
	if t.CourseID.Valid && svc.courses != nil {
		if c, err := svc.courses.Course(ctx, t.CourseID.String); err == nil {
			return c.Name
		}
	}
	return "No course"
}

func (svc *Service) Clear(ctx context.Context) error {
	return svc.repo.Clear(ctx)
}
