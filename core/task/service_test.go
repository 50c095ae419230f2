package task_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/schoolorganizer/organizer/core"
	"github.com/schoolorganizer/organizer/core/gradebook"
	"github.com/schoolorganizer/organizer/core/task"
	emailsvc "github.com/schoolorganizer/organizer/services/email"
	inmemdb "github.com/schoolorganizer/organizer/storage/database/inmem"
)

type mailRecorder struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

type fixture struct {
	books *gradebook.Service
	tasks *task.Service
	mail  *mailRecorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Cleanup(task.SetNow(now))

	db := inmemdb.New()
	validate, _ := core.NewValidator()
	books := gradebook.NewService(inmemdb.NewGradebookRepository(db), validate)
	mail := new(mailRecorder)
	tasks := task.NewService(inmemdb.NewTaskRepository(db), books, validate, mail, task.Options{
		Student: "student@example.com",
		Lead:    time.Hour,
	})
	return fixture{books: books, tasks: tasks, mail: mail}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	course, err := fx.books.CreateCourse(ctx, gradebook.CourseInput{Name: "Biology"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		in        task.Input
		wantErr   bool
		wantSteps int
		wantType  task.Type
	}{
		{
			name:     "defaults to homework",
			in:       task.Input{Title: "Reading", Due: now.Add(24 * time.Hour)},
			wantType: task.Homework,
		},
		{
			name:      "auto steps for long tasks",
			in:        task.Input{Title: "Lab report", Type: task.Project, Due: now.Add(48 * time.Hour), EstimateHours: null.Float64From(2), AutoSteps: true},
			wantSteps: 4,
			wantType:  task.Project,
		},
		{
			name:     "no auto steps under two hours",
			in:       task.Input{Title: "Worksheet", Due: now.Add(48 * time.Hour), EstimateHours: null.Float64From(1.5), AutoSteps: true},
			wantType: task.Homework,
		},
		{
			name:     "no auto steps without estimate",
			in:       task.Input{Title: "Worksheet", Due: now.Add(48 * time.Hour), AutoSteps: true},
			wantType: task.Homework,
		},
		{
			name:     "course reference",
			in:       task.Input{Title: "Midterm", Type: "EXAM", CourseID: null.StringFrom(course.ID), Due: now.Add(time.Hour)},
			wantType: task.Exam,
		},
		{name: "blank title", in: task.Input{Title: " ", Due: now}, wantErr: true},
		{name: "missing due", in: task.Input{Title: "x"}, wantErr: true},
		{name: "bad type", in: task.Input{Title: "x", Type: "chore", Due: now}, wantErr: true},
		{name: "unknown course", in: task.Input{Title: "x", CourseID: null.StringFrom("nope"), Due: now}, wantErr: true},
		{name: "negative estimate", in: task.Input{Title: "x", Due: now, EstimateHours: null.Float64From(-1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fx.tasks.Create(ctx, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got.Steps, tt.wantSteps)
			assert.Equal(t, tt.wantType, got.Type)
			assert.False(t, got.Completed)

			stored, err := fx.tasks.Get(ctx, got.ID)
			require.NoError(t, err)
			assert.Equal(t, got, stored)
		})
	}
}

func TestService_UpdateKeepsStepsAndCompletion(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	in := task.Input{Title: "Essay", Due: now.Add(72 * time.Hour), EstimateHours: null.Float64From(4), AutoSteps: true}
	created, err := fx.tasks.Create(ctx, in)
	require.NoError(t, err)
	_, err = fx.tasks.SetCompleted(ctx, created.ID, true)
	require.NoError(t, err)

	in.Title = "Long essay"
	in.Due = now.Add(96 * time.Hour)
	updated, err := fx.tasks.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Long essay", updated.Title)
	assert.True(t, updated.Completed)
	assert.Equal(t, created.Steps, updated.Steps, "existing steps are not regenerated")

	_, err = fx.tasks.Update(ctx, "missing", in)
	assert.True(t, errors.Is(err, task.ErrNotFound))
}

func TestService_Steps(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	tk, err := fx.tasks.Create(ctx, task.Input{Title: "Project", Due: now.Add(24 * time.Hour)})
	require.NoError(t, err)

	s, err := fx.tasks.AddStep(ctx, tk.ID, task.StepInput{Title: " Gather sources "})
	require.NoError(t, err)
	assert.Equal(t, "Gather sources", s.Title)

	_, err = fx.tasks.AddStep(ctx, tk.ID, task.StepInput{Title: ""})
	assert.Error(t, err)

	s, err = fx.tasks.UpdateStep(ctx, tk.ID, s.ID, task.StepInput{Title: "Gather sources", Done: true})
	require.NoError(t, err)
	assert.True(t, s.Done)

	_, err = fx.tasks.UpdateStep(ctx, tk.ID, "missing", task.StepInput{Title: "x"})
	assert.True(t, errors.Is(err, task.ErrStepNotFound))

	require.NoError(t, fx.tasks.DeleteStep(ctx, tk.ID, s.ID))
	got, err := fx.tasks.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Steps)
	assert.True(t, errors.Is(fx.tasks.DeleteStep(ctx, tk.ID, s.ID), task.ErrStepNotFound))
}

func TestService_ListAndUpcoming(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	course, _ := fx.books.CreateCourse(ctx, gradebook.CourseInput{Name: "Physics"})

	mk := func(title string, typ task.Type, in time.Duration, courseID string) task.Task {
		tk, err := fx.tasks.Create(ctx, task.Input{Title: title, Type: typ, Due: now.Add(in), CourseID: null.NewString(courseID, courseID != "")})
		require.NoError(t, err)
		return tk
	}
	exam := mk("Exam", task.Exam, 48*time.Hour, course.ID)
	hw := mk("Homework", task.Homework, 24*time.Hour, course.ID)
	other := mk("Other", task.Homework, 5*24*time.Hour, "")

	all, err := fx.tasks.List(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{hw.ID, exam.ID, other.ID}, ids(all))

	byCourse, err := fx.tasks.List(ctx, task.Filter{CourseID: course.ID, Ordering: core.ParseOrdering("-due", task.OrderingFields...)})
	require.NoError(t, err)
	assert.Equal(t, []string{exam.ID, hw.ID}, ids(byCourse))

	exams, err := fx.tasks.List(ctx, task.Filter{Type: task.Exam})
	require.NoError(t, err)
	assert.Equal(t, []string{exam.ID}, ids(exams))

	_, err = fx.tasks.SetCompleted(ctx, hw.ID, true)
	require.NoError(t, err)
	upcoming, err := fx.tasks.Upcoming(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{exam.ID}, ids(upcoming))

	require.NoError(t, fx.tasks.Delete(ctx, exam.ID))
	assert.True(t, errors.Is(fx.tasks.Delete(ctx, exam.ID), task.ErrNotFound))
}

func TestService_SendReminders(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	course, _ := fx.books.CreateCourse(ctx, gradebook.CourseInput{Name: "Chemistry"})

	soon, err := fx.tasks.Create(ctx, task.Input{
		Title:         "Titration lab",
		CourseID:      null.StringFrom(course.ID),
		Due:           now.Add(70 * time.Minute),
		EstimateHours: null.Float64From(3),
		AutoSteps:     true,
	})
	require.NoError(t, err)
	_, err = fx.tasks.Create(ctx, task.Input{Title: "Later", Due: now.Add(5 * time.Hour)})
	require.NoError(t, err)
	_, err = fx.tasks.Create(ctx, task.Input{Title: "Passed", Due: now.Add(30 * time.Minute)})
	require.NoError(t, err)
	done, err := fx.tasks.Create(ctx, task.Input{Title: "Done", Due: now.Add(65 * time.Minute)})
	require.NoError(t, err)
	_, err = fx.tasks.SetCompleted(ctx, done.ID, true)
	require.NoError(t, err)

	reminded, err := fx.tasks.SendReminders(ctx, now, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{soon.ID}, ids(reminded))

	require.Len(t, fx.mail.sent, 1)
	msg := fx.mail.sent[0]
	assert.Equal(t, "student@example.com", msg.To[0].Address)
	assert.Equal(t, "task_reminder", msg.TemplateName)
	data := msg.TemplateData.(task.ReminderData)
	assert.Equal(t, "Chemistry", data.CourseName)
	assert.Len(t, data.PendingSteps, 4)

	require.NoError(t, msg.Render("School Organizer"))
	assert.Contains(t, msg.TextContent, "Titration lab (Chemistry)")
	assert.Contains(t, msg.HTMLContent, "Titration lab")
}

func TestService_SendReminders_delivered(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(task.SetNow(now))

	conf := &core.Config{AppName: "School Organizer", Email: core.EmailConfig{DefaultFromEmail: "noreply@example.com"}}
	var out bytes.Buffer
	mailSvc := emailsvc.NewConsoleServiceMock(log.New(&out, "", 0), conf)

	db := inmemdb.New()
	validate, _ := core.NewValidator()
	books := gradebook.NewService(inmemdb.NewGradebookRepository(db), validate)
	tasks := task.NewService(inmemdb.NewTaskRepository(db), books, validate, mailSvc, task.Options{
		Student: "student@example.com",
		Lead:    time.Hour,
	})

	course, err := books.CreateCourse(ctx, gradebook.CourseInput{Name: "Chemistry"})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, task.Input{
		Title:         "Titration lab",
		CourseID:      null.StringFrom(course.ID),
		Due:           now.Add(70 * time.Minute),
		EstimateHours: null.Float64From(3),
		AutoSteps:     true,
	})
	require.NoError(t, err)

	reminded, err := tasks.SendReminders(ctx, now, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, reminded, 1)

	sent := mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].TextContent, "Titration lab (Chemistry) is due at")
	assert.Contains(t, sent[0].TextContent, "[ ] Research / Read instructions")
	assert.Contains(t, sent[0].TextContent, "-- School Organizer")
	assert.Contains(t, sent[0].HTMLContent, "<strong>Titration lab</strong> (Chemistry)")
	assert.Contains(t, sent[0].HTMLContent, "<li>Edit / finalize &amp; submit</li>")
	assert.Contains(t, out.String(), "Subject: [School Organizer] Titration lab is due soon")
}

func ids(tasks []task.Task) []string {
	s := make([]string, 0, len(tasks))
	for _, t := range tasks {
		s = append(s, t.ID)
	}
	return s
}
